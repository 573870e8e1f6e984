package milexer

import "io"

// Default buffer capacities for Scanner sessions.
const (
	DefaultTokenSize = 128
	DefaultChunkSize = 4096
)

// maxEmptyReads bounds consecutive (0, nil) reads before the Scanner gives
// up, matching bufio.Scanner.
const maxEmptyReads = 100

// Scanner drives a session over an io.Reader, hiding the chunk feeding
// protocol behind a bufio.Scanner style interface:
//
//	sc := milexer.NewScanner(lx, r, 0)
//	for sc.Scan() {
//		fmt.Println(sc.Token())
//	}
//	if err := sc.Err(); err != nil { ... }
//
// Scan reports true for every Match, Chunk and ZeroTerm the engine emits;
// Status tells them apart. Callers reassembling chunked tokens use
// Continues to tell a closing fragment from the next token.
type Scanner struct {
	lx    *Lexer
	r     io.Reader
	flags Flag

	src  Slice
	tok  Token
	read []byte
	st   Status
	err  error
}

// NewScanner returns a Scanner over r with default buffer sizes.
func NewScanner(lx *Lexer, r io.Reader, flags Flag) *Scanner {
	return &Scanner{
		lx:    lx,
		r:     r,
		flags: flags,
		tok:   NewToken(DefaultTokenSize),
		read:  make([]byte, DefaultChunkSize),
	}
}

// Buffer replaces the token and chunk buffers. It must be called before the
// first Scan. Tokens longer than the token buffer arrive as Chunk parts.
func (s *Scanner) Buffer(tok, chunk []byte) {
	s.tok = WrapToken(tok)
	s.read = chunk
}

// Scan advances to the next token emission. It returns false at the end of
// the input or on the first error; Err separates the two.
func (s *Scanner) Scan() bool {
	if s.err != nil || s.st == End {
		return false
	}
	for {
		st := s.lx.Next(&s.src, &s.tok, s.flags)
		s.st = st
		switch st {
		case Match, Chunk, ZeroTerm:
			return true
		case NeedMore:
			if !s.fill() {
				return false
			}
		case End:
			return false
		default:
			s.err = ErrSetup
			return false
		}
	}
}

// fill attaches the next chunk from the reader, marking the end of input on
// io.EOF. It returns false on a read error or when the reader keeps
// returning no data.
func (s *Scanner) fill() bool {
	empty := 0
	for {
		n, err := s.r.Read(s.read)
		if n > 0 {
			s.src.Attach(s.read[:n])
			return true
		}
		switch err {
		case nil:
			empty++
			if empty >= maxEmptyReads {
				s.err = io.ErrNoProgress
				return false
			}
		case io.EOF:
			s.src.MarkEnd()
			return true
		default:
			s.err = err
			return false
		}
	}
}

// Token returns the current token. Its bytes are valid until the next Scan.
func (s *Scanner) Token() *Token { return &s.tok }

// Text returns the current token text as a copy.
func (s *Scanner) Text() string { return s.tok.String() }

// Status reports the engine status behind the last Scan.
func (s *Scanner) Status() Status { return s.st }

// Continues reports whether the last scanned token carries further bytes of
// the token cut by the preceding Chunk emission. A token whose length is an
// exact multiple of the buffer ends on its final Chunk, so an emission with
// Continues false starts the next token instead of closing the cut one. The
// result is valid after Scan returned true.
func (s *Scanner) Continues() bool { return s.src.resumed }

// Err returns the first error encountered, never io.EOF.
func (s *Scanner) Err() error { return s.err }
