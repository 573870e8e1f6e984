package milexer

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
)

// GinLexer tokenizes request bodies inside a gin application. Zero fields
// fall back to the scanner defaults.
type GinLexer struct {
	Lexer     *Lexer
	Flags     Flag
	TokenSize int
	ChunkSize int
}

// TokenJSON is one emission of the engine in the handler response.
type TokenJSON struct {
	Type   string `json:"type"`
	ID     int    `json:"id"`
	Text   string `json:"text"`
	Status string `json:"status"`
}

func (gl GinLexer) scanner(req *http.Request) *Scanner {
	sc := NewScanner(gl.Lexer, req.Body, gl.Flags)
	if gl.TokenSize > 0 || gl.ChunkSize > 0 {
		tokSize, chunkSize := gl.TokenSize, gl.ChunkSize
		if tokSize <= 0 {
			tokSize = DefaultTokenSize
		}
		if chunkSize <= 0 {
			chunkSize = DefaultChunkSize
		}
		sc.Buffer(make([]byte, tokSize), make([]byte, chunkSize))
	}
	return sc
}

// Handler returns a gin handler that tokenizes the request body and
// responds with the emission list as JSON.
func (gl GinLexer) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		sc := gl.scanner(c.Request)
		tokens := []TokenJSON{}
		for sc.Scan() {
			tok := sc.Token()
			tokens = append(tokens, TokenJSON{
				Type:   tok.Type.String(),
				ID:     tok.ID,
				Text:   tok.String(),
				Status: sc.Status().String(),
			})
		}
		if err := sc.Err(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"tokens": tokens})
	}
}

// TextHandler returns a gin handler that renders the emissions as plain
// text through TokenRender.
func (gl GinLexer) TextHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Render(http.StatusOK, TokenRender{Scanner: gl.scanner(c.Request)})
	}
}

var textContentType = []string{"text/plain; charset=utf-8"}

// TokenRender streams scanner emissions as one tab separated line each,
// implementing gin's render.Render.
type TokenRender struct {
	Scanner *Scanner
}

var _ render.Render = TokenRender{}

func (tr TokenRender) Render(w http.ResponseWriter) error {
	tr.WriteContentType(w)
	for tr.Scanner.Scan() {
		tok := tr.Scanner.Token()
		_, err := fmt.Fprintf(w, "%s\t%d\t%q\t%s\n",
			tok.Type, tok.ID, tok.String(), tr.Scanner.Status())
		if err != nil {
			return err
		}
	}
	return tr.Scanner.Err()
}

func (tr TokenRender) WriteContentType(w http.ResponseWriter) {
	header := w.Header()
	if val := header["Content-Type"]; len(val) == 0 {
		header["Content-Type"] = textContentType
	}
}
