package milexer

import "errors"

// ErrSetup reports an invalid call setup: a Next call with a nil or
// zero-capacity token buffer, or a token buffer aliasing the attached chunk.
var ErrSetup = errors.New("milexer: nil token buffer or token aliases input")

// TokenType classifies a completed token.
type TokenType uint8

const (
	TypeNone TokenType = iota
	TypePunct
	TypeKeyword
	TypeExpression

	// Comment kinds are reserved for configurations that will strip them.
	// The engine never produces them yet.
	TypeLineComment
	TypeBlockComment
)

var typeNames = [...]string{
	TypeNone:         "none",
	TypePunct:        "punctuation",
	TypeKeyword:      "keyword",
	TypeExpression:   "expression",
	TypeLineComment:  "line-comment",
	TypeBlockComment: "block-comment",
}

func (t TokenType) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

// Status is the outcome of a single Next call. Exactly one is returned per
// call and only Match, Chunk and ZeroTerm carry token contents.
type Status uint8

const (
	// Match reports a complete token.
	Match Status = iota
	// Chunk reports a partial token that filled the whole token buffer.
	// The remainder follows in later calls; concatenating the fragments
	// restores the token text.
	Chunk
	// ZeroTerm reports a token that was terminated by a 0x00 input byte.
	ZeroTerm
	// NeedMore asks the caller to attach the next input chunk, or to mark
	// the end of input.
	NeedMore
	// End reports that the input is exhausted and fully tokenized.
	End
	// Error reports an invalid call setup, described by ErrSetup.
	Error
)

var statusNames = [...]string{
	Match:    "match",
	Chunk:    "chunk",
	ZeroTerm: "zero-term",
	NeedMore: "need-more",
	End:      "end",
	Error:    "error",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// Token receives token bytes from Next. The backing buffer is caller owned
// and fixed for the session: its capacity is the longest text a single Match
// can carry, and longer tokens are delivered as Chunk fragments.
//
// Type and ID describe the most recent emission. ID is the index of the
// matched entry in the configured punctuation, keyword or expression table,
// or -1 when the text matches no table entry.
type Token struct {
	Type TokenType
	ID   int

	buf []byte
	n   int // bytes of the last emission
	idx int // accumulation cursor, owned by Next
}

// NewToken returns a Token backed by a fresh buffer of the given capacity.
func NewToken(size int) Token {
	return Token{buf: make([]byte, size), ID: -1}
}

// WrapToken returns a Token writing into a caller provided buffer.
func WrapToken(buf []byte) Token {
	return Token{buf: buf, ID: -1}
}

// Bytes returns the text of the last emission. The slice is only valid until
// the next call to Next with this token.
func (t *Token) Bytes() []byte { return t.buf[:t.n] }

// String returns the text of the last emission as a copy.
func (t *Token) String() string { return string(t.buf[:t.n]) }

// Len reports the length of the last emission.
func (t *Token) Len() int { return t.n }

// Cap reports the capacity of the backing buffer.
func (t *Token) Cap() int { return len(t.buf) }

// Known reports whether the last emission matched a configured table entry.
func (t *Token) Known() bool { return t.ID >= 0 }

// Reset clears the token for a new session, keeping the backing buffer.
func (t *Token) Reset() {
	t.Type = TypeNone
	t.ID = -1
	t.n = 0
	t.idx = 0
}

// emit finalizes the first n accumulated bytes as the call's result and
// rewinds the accumulation cursor.
func (t *Token) emit(n int, typ TokenType, id int) {
	t.n = n
	t.idx = 0
	t.Type = typ
	t.ID = id
}

// Flag adjusts Next behavior for one call. Callers normally keep flags
// stable for a whole session.
type Flag uint8

const (
	// Inexp strips the begin and end markers from expression tokens,
	// leaving only the enclosed content.
	Inexp Flag = 1 << iota
	// IgSpace makes 0x20 an ordinary token byte instead of a delimiter.
	IgSpace
	// AllDelims applies the default delimiter rule in addition to the
	// configured delimiter ranges.
	AllDelims
)
