// Command milex tokenizes files, lines typed into a prompt, or HTTP
// request bodies.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tdewolff/minify"
	"github.com/tdewolff/minify/html"

	"github.com/jrolingdev/go-milexer"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("milex: ")
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch cmd := os.Args[1]; cmd {
	case "scan":
		err = runScan(os.Args[2:])
	case "repl":
		err = runRepl(os.Args[2:])
	case "serve":
		err = runServe(os.Args[2:])
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "milex: unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `usage: milex <command> [flags] [file]

Commands:
  scan    tokenize a file, or stdin when no file is given
  repl    tokenize lines typed into a prompt
  serve   tokenize HTTP request bodies

Common flags:
  -puncs     comma separated punctuation table, e.g. '=,!=,<,>'
  -keywords  comma separated keyword table, e.g. 'if,else,fi'
  -exprs     comma separated begin:end marker pairs, e.g. '(:),{:}'
  -delims    delimiter ranges of one or two bytes each
  -buf N     token buffer capacity
  -inexp -igspace -alldelims

Run 'milex <command> -h' for the full flag list.
`)
}

// tableFlags builds a lexer configuration from command line lists.
type tableFlags struct {
	puncs    string
	keywords string
	exprs    string
	delims   string
}

func (tf *tableFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&tf.puncs, "puncs", "", "comma separated punctuation table")
	fs.StringVar(&tf.keywords, "keywords", "", "comma separated keyword table")
	fs.StringVar(&tf.exprs, "exprs", "", "comma separated begin:end marker pairs")
	fs.StringVar(&tf.delims, "delims", "", "comma separated delimiter ranges")
}

func (tf *tableFlags) build() (*milexer.Lexer, error) {
	cfg := milexer.Config{
		Puncs:       splitList(tf.puncs),
		Keywords:    splitList(tf.keywords),
		DelimRanges: splitList(tf.delims),
	}
	for _, pair := range splitList(tf.exprs) {
		begin, end, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("marker pair %q is not in begin:end form", pair)
		}
		cfg.Expressions = append(cfg.Expressions, milexer.Expression{Begin: begin, End: end})
	}
	return milexer.New(cfg)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

type modeFlags struct {
	inexp    bool
	igspace  bool
	alldelim bool
}

func (mf *modeFlags) register(fs *flag.FlagSet) {
	fs.BoolVar(&mf.inexp, "inexp", false, "strip markers from expression tokens")
	fs.BoolVar(&mf.igspace, "igspace", false, "treat 0x20 as an ordinary byte")
	fs.BoolVar(&mf.alldelim, "alldelims", false, "apply default delimiters on top of ranges")
}

func (mf *modeFlags) flags() milexer.Flag {
	var f milexer.Flag
	if mf.inexp {
		f |= milexer.Inexp
	}
	if mf.igspace {
		f |= milexer.IgSpace
	}
	if mf.alldelim {
		f |= milexer.AllDelims
	}
	return f
}

func printToken(w io.Writer, tok *milexer.Token, st milexer.Status) {
	mark := "*"
	if tok.Known() {
		mark = fmt.Sprintf("%d", tok.ID)
	}
	suffix := ""
	switch st {
	case milexer.Chunk:
		suffix = "  <-- chunk"
	case milexer.ZeroTerm:
		suffix = "  <-- zero terminated"
	}
	fmt.Fprintf(w, "%-11s[%s]  `%s`%s\n", tok.Type, mark, tok, suffix)
}

func runScan(args []string) error {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	var tables tableFlags
	var modes modeFlags
	tables.register(fs)
	modes.register(fs)
	bufSize := fs.Int("buf", milexer.DefaultTokenSize, "token buffer capacity")
	if err := fs.Parse(args); err != nil {
		return err
	}
	lx, err := tables.build()
	if err != nil {
		return err
	}

	in := os.Stdin
	if fs.NArg() > 0 {
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	sc := milexer.NewScanner(lx, in, modes.flags())
	sc.Buffer(make([]byte, *bufSize), make([]byte, milexer.DefaultChunkSize))
	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	for sc.Scan() {
		printToken(w, sc.Token(), sc.Status())
	}
	return sc.Err()
}

// runRepl drives the engine by hand: one line per attached chunk, so the
// prompt returns exactly when the engine asks for more input.
func runRepl(args []string) error {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)
	var tables tableFlags
	var modes modeFlags
	tables.register(fs)
	modes.register(fs)
	bufSize := fs.Int("buf", milexer.DefaultTokenSize, "token buffer capacity")
	if err := fs.Parse(args); err != nil {
		return err
	}
	lx, err := tables.build()
	if err != nil {
		return err
	}

	in := bufio.NewReader(os.Stdin)
	flags := modes.flags()
	var src milexer.Slice
	tok := milexer.NewToken(*bufSize)
	for {
		switch st := lx.Next(&src, &tok, flags); st {
		case milexer.NeedMore:
			fmt.Print(">>> ")
			line, err := in.ReadBytes('\n')
			if len(line) > 0 {
				src.Attach(line)
			}
			if err != nil {
				fmt.Println()
				src.MarkEnd()
			}
		case milexer.End:
			return nil
		case milexer.Error:
			return milexer.ErrSetup
		default:
			printToken(os.Stdout, &tok, st)
		}
	}
}

const indexHTML = `<!DOCTYPE html>
<html>
  <head>
    <title>milex</title>
  </head>
  <body>
    <h1>milex</h1>
    <p>POST a body to <code>/tokenize</code> for the emissions as JSON, or
    to <code>/tokenize.txt</code> for a plain text dump.</p>
    <p>Try: <code>curl -d 'set x (1 + 2)' localhost:8080/tokenize</code></p>
  </body>
</html>
`

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	var tables tableFlags
	var modes modeFlags
	tables.register(fs)
	modes.register(fs)
	addr := fs.String("addr", ":8080", "listen address")
	bufSize := fs.Int("buf", milexer.DefaultTokenSize, "token buffer capacity")
	if err := fs.Parse(args); err != nil {
		return err
	}
	lx, err := tables.build()
	if err != nil {
		return err
	}

	m := minify.New()
	m.AddFunc("text/html", html.Minify)
	index, err := m.String("text/html", indexHTML)
	if err != nil {
		return err
	}

	gl := milexer.GinLexer{Lexer: lx, Flags: modes.flags(), TokenSize: *bufSize}
	r := gin.Default()
	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(index))
	})
	r.POST("/tokenize", gl.Handler())
	r.POST("/tokenize.txt", gl.TextHandler())
	log.Printf("listening on %s", *addr)
	return r.Run(*addr)
}
