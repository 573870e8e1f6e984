package milexer

// synState tracks where the scanner stands between two bytes. It lives in
// the Slice so a session survives both chunk refills and token buffer
// overflows without the engine holding any state of its own.
type synState uint8

const (
	// synIdle sits on a token boundary.
	synIdle synState = iota
	// synEscape consumes the next byte literally.
	synEscape
	// synMiddle accumulates an ordinary token.
	synMiddle
	// synPuncHold re-emits a recognized punctuation on the next call
	// after the token glued in front of it was flushed.
	synPuncHold
	// synExpr accumulates an expression body up to its end marker.
	synExpr
	// synExprHold re-enters an expression on the next call after the
	// token glued in front of its begin marker was flushed.
	synExprHold
	// synChunk resumes an interrupted token after a buffer overflow.
	synChunk
	// synDone sits right behind a closed expression.
	synDone
)

// Slice is the input cursor of a session. The zero value is ready to use;
// attach chunks as Next asks for them and mark the end when the source is
// exhausted. One Slice must not be shared between concurrent sessions.
type Slice struct {
	chunk []byte
	idx   int
	eof   bool

	state synState
	prev  synState

	// resumed marks an accumulation that carries on the token cut by the
	// last buffer overflow. It stays set through the emission that closes
	// the cut token and drops as soon as a new token starts, so after each
	// emission it tells a closing fragment from the next token.
	resumed bool

	// Table indices backing the hold states.
	lastExp  int
	lastPunc int
}

// Attach hands the next input chunk to the session and rewinds the read
// position. The engine only reads the slice, but it must stay untouched by
// the caller until the next NeedMore.
func (s *Slice) Attach(chunk []byte) {
	s.chunk = chunk
	s.idx = 0
}

// MarkEnd declares that no further chunk follows the current one. Next then
// flushes whatever is still accumulated and reports End.
func (s *Slice) MarkEnd() { s.eof = true }

// Reset returns the slice to its zero state for a new session.
func (s *Slice) Reset() { *s = Slice{} }

// Ended reports whether the end of input has been marked.
func (s *Slice) Ended() bool { return s.eof }

// shift enters a new state, remembering the current one so hold and chunk
// states can restore it.
func (s *Slice) shift(st synState) {
	s.prev = s.state
	s.state = st
}
