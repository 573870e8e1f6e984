package milexer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// emission records one token carrying status of a session.
type emission struct {
	st   Status
	typ  TokenType
	id   int
	text string
}

func tk(st Status, typ TokenType, id int, text string) emission {
	return emission{st: st, typ: typ, id: id, text: text}
}

// collect runs a whole session, feeding input in chunkSize byte pieces and
// gathering every emission until End.
func collect(t *testing.T, lx *Lexer, input string, chunkSize, bufSize int, flags Flag) []emission {
	t.Helper()
	var src Slice
	tok := NewToken(bufSize)
	rest := []byte(input)
	var out []emission
	for steps := 0; ; steps++ {
		if steps > 10000 {
			t.Fatal("session did not reach End")
		}
		switch st := lx.Next(&src, &tok, flags); st {
		case Match, Chunk, ZeroTerm:
			out = append(out, emission{st, tok.Type, tok.ID, tok.String()})
		case NeedMore:
			if len(rest) == 0 {
				src.MarkEnd()
				continue
			}
			n := chunkSize
			if n > len(rest) {
				n = len(rest)
			}
			src.Attach(rest[:n])
			rest = rest[n:]
		case End:
			return out
		default:
			t.Fatalf("unexpected status %v", st)
		}
	}
}

func mustNew(t *testing.T, cfg Config) *Lexer {
	t.Helper()
	lx, err := New(cfg)
	require.NoError(t, err)
	return lx
}

func TestNextSplitsOnWhitespace(t *testing.T) {
	t.Parallel()
	lx := Default()

	tests := []struct {
		name  string
		input string
		want  []emission
	}{
		{"simple", "hello world\n", []emission{
			tk(Match, TypeKeyword, -1, "hello"),
			tk(Match, TypeKeyword, -1, "world"),
		}},
		{"collapsed delimiters", "\t a \n\n b\r\n", []emission{
			tk(Match, TypeKeyword, -1, "a"),
			tk(Match, TypeKeyword, -1, "b"),
		}},
		{"empty", "", nil},
		{"only delimiters", " \t\r\n", nil},
		{"no trailing delimiter", "xyz", []emission{
			tk(Match, TypeKeyword, -1, "xyz"),
		}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := collect(t, lx, tc.input, 64, 32, 0)
			assert.Equal(t, tc.want, got)
		})
	}
}

// Tokens separated by a single delimiter must tokenize back to the same
// sequence.
func TestNextRoundTrip(t *testing.T) {
	t.Parallel()
	lx := Default()

	first := collect(t, lx, "alpha  beta\tgamma\ndelta", 7, 16, 0)
	var texts []string
	for _, e := range first {
		texts = append(texts, e.text)
	}
	again := collect(t, lx, strings.Join(texts, " "), 5, 16, 0)
	assert.Equal(t, first, again)
}

func TestNextKeywordIDs(t *testing.T) {
	t.Parallel()
	lx := mustNew(t, Config{Keywords: []string{"if", "else", "fi"}})

	got := collect(t, lx, "if x else fi\n", 64, 32, 0)
	want := []emission{
		tk(Match, TypeKeyword, 0, "if"),
		tk(Match, TypeKeyword, -1, "x"),
		tk(Match, TypeKeyword, 1, "else"),
		tk(Match, TypeKeyword, 2, "fi"),
	}
	assert.Equal(t, want, got)
}

func TestNextPunctuation(t *testing.T) {
	t.Parallel()
	lx := mustNew(t, Config{Puncs: []string{"!", "!="}})

	tests := []struct {
		name  string
		input string
		want  []emission
	}{
		{"longest wins", "!=", []emission{
			tk(Match, TypePunct, 1, "!="),
		}},
		{"short alone", "! ", []emission{
			tk(Match, TypePunct, 0, "!"),
		}},
		{"glued behind keyword", "a!=b", []emission{
			tk(Match, TypeKeyword, -1, "a"),
			tk(Match, TypePunct, 1, "!="),
			tk(Match, TypeKeyword, -1, "b"),
		}},
		{"resolved at delimiter", "x! y", []emission{
			tk(Match, TypeKeyword, -1, "x"),
			tk(Match, TypePunct, 0, "!"),
			tk(Match, TypeKeyword, -1, "y"),
		}},
		{"double bang", "!! ", []emission{
			tk(Match, TypePunct, 0, "!"),
			tk(Match, TypePunct, 0, "!"),
		}},
		{"pending match absorbed by ordinary byte", "!a ", []emission{
			tk(Match, TypeKeyword, -1, "!a"),
		}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := collect(t, lx, tc.input, 64, 32, 0)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNextPunctuationNoPrefixChain(t *testing.T) {
	t.Parallel()
	// without a longer candidate the short form is emitted immediately
	lx := mustNew(t, Config{Puncs: []string{"!"}})

	got := collect(t, lx, "x!y", 64, 32, 0)
	want := []emission{
		tk(Match, TypeKeyword, -1, "x"),
		tk(Match, TypePunct, 0, "!"),
		tk(Match, TypeKeyword, -1, "y"),
	}
	assert.Equal(t, want, got)
}

func TestNextPunctuationTieTakesEarliest(t *testing.T) {
	t.Parallel()
	lx := mustNew(t, Config{Puncs: []string{"=", "="}})

	got := collect(t, lx, "= ", 64, 32, 0)
	assert.Equal(t, []emission{tk(Match, TypePunct, 0, "=")}, got)
}

func TestNextExpressions(t *testing.T) {
	t.Parallel()
	lx := mustNew(t, Config{
		Expressions: []Expression{{"(", ")"}, {"\"", "\""}},
	})

	tests := []struct {
		name  string
		input string
		flags Flag
		want  []emission
	}{
		{"glued to keyword", "foo(bar)", 0, []emission{
			tk(Match, TypeKeyword, -1, "foo"),
			tk(Match, TypeExpression, 0, "(bar)"),
		}},
		{"stripped markers", "foo(bar)", Inexp, []emission{
			tk(Match, TypeKeyword, -1, "foo"),
			tk(Match, TypeExpression, 0, "bar"),
		}},
		{"delimiters inside are content", "(a b\nc)", 0, []emission{
			tk(Match, TypeExpression, 0, "(a b\nc)"),
		}},
		{"same begin and end marker", `say "hi there" now`, 0, []emission{
			tk(Match, TypeKeyword, -1, "say"),
			tk(Match, TypeExpression, 1, `"hi there"`),
			tk(Match, TypeKeyword, -1, "now"),
		}},
		{"back to back", "(a)(b)", 0, []emission{
			tk(Match, TypeExpression, 0, "(a)"),
			tk(Match, TypeExpression, 0, "(b)"),
		}},
		{"unterminated flushes as keyword", "(abc", 0, []emission{
			tk(Match, TypeKeyword, -1, "(abc"),
		}},
		{"unterminated stripped", "(abc", Inexp, []emission{
			tk(Match, TypeKeyword, -1, "abc"),
		}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := collect(t, lx, tc.input, 64, 32, tc.flags)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNextExpressionMultiByteMarkers(t *testing.T) {
	t.Parallel()
	lx := mustNew(t, Config{Expressions: []Expression{{"{{", "}}"}}})

	got := collect(t, lx, "x{{y}}z", 64, 32, 0)
	want := []emission{
		tk(Match, TypeKeyword, -1, "x"),
		tk(Match, TypeExpression, 0, "{{y}}"),
		tk(Match, TypeKeyword, -1, "z"),
	}
	assert.Equal(t, want, got)
}

func TestNextExpressionLongestBeginWins(t *testing.T) {
	t.Parallel()
	lx := mustNew(t, Config{
		Expressions: []Expression{{"<", ">"}, {"a<", ">"}},
	})

	got := collect(t, lx, "xa<b>", 64, 32, 0)
	want := []emission{
		tk(Match, TypeKeyword, -1, "x"),
		tk(Match, TypeExpression, 1, "a<b>"),
	}
	assert.Equal(t, want, got)
}

func TestNextPunctuationBeforeExpression(t *testing.T) {
	t.Parallel()
	lx := mustNew(t, Config{
		Puncs:       []string{"!", "!="},
		Expressions: []Expression{{"(", ")"}},
	})

	// the pending "!" is classified as punctuation when the marker
	// flushes it
	got := collect(t, lx, "!(a)", 64, 32, 0)
	want := []emission{
		tk(Match, TypePunct, 0, "!"),
		tk(Match, TypeExpression, 0, "(a)"),
	}
	assert.Equal(t, want, got)
}

func TestNextEscape(t *testing.T) {
	t.Parallel()
	lx := mustNew(t, Config{
		Puncs:       []string{"!"},
		Expressions: []Expression{{"(", ")"}},
	})

	tests := []struct {
		name  string
		input string
		want  []emission
	}{
		{"escaped space joins tokens", `a\ b`, []emission{
			tk(Match, TypeKeyword, -1, "a b"),
		}},
		{"escaped backslash stays", `a\\b `, []emission{
			tk(Match, TypeKeyword, -1, `a\b`),
		}},
		{"escaped punctuation is literal", `a\!b `, []emission{
			tk(Match, TypeKeyword, -1, "a!b"),
		}},
		{"escaped begin marker is literal", `a\(b `, []emission{
			tk(Match, TypeKeyword, -1, "a(b"),
		}},
		{"escaped end marker inside expression", `(a\)b)`, []emission{
			tk(Match, TypeExpression, 0, "(a)b)"),
		}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := collect(t, lx, tc.input, 64, 32, 0)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNextChunkOverflow(t *testing.T) {
	t.Parallel()
	lx := Default()

	got := collect(t, lx, "abcdefg ", 64, 4, 0)
	want := []emission{
		tk(Chunk, TypeKeyword, -1, "abcd"),
		tk(Match, TypeKeyword, -1, "efg"),
	}
	assert.Equal(t, want, got)

	// concatenating the fragments restores the token
	var rebuilt strings.Builder
	for _, e := range got {
		rebuilt.WriteString(e.text)
	}
	assert.Equal(t, "abcdefg", rebuilt.String())
}

func TestNextChunkKeepsExpressionType(t *testing.T) {
	t.Parallel()
	lx := mustNew(t, Config{Expressions: []Expression{{"(", ")"}}})

	got := collect(t, lx, "(abcdef)", 64, 4, 0)
	want := []emission{
		tk(Chunk, TypeExpression, 0, "(abc"),
		tk(Match, TypeExpression, 0, "def)"),
	}
	assert.Equal(t, want, got)
}

func TestNextZeroTerminator(t *testing.T) {
	t.Parallel()
	lx := mustNew(t, Config{Expressions: []Expression{{"(", ")"}}})

	tests := []struct {
		name  string
		input string
		want  []emission
	}{
		{"terminates tokens", "ab\x00cd\x00", []emission{
			tk(ZeroTerm, TypeKeyword, -1, "ab"),
			tk(ZeroTerm, TypeKeyword, -1, "cd"),
		}},
		{"dropped when nothing accumulated", "\x00\x00ab\x00", []emission{
			tk(ZeroTerm, TypeKeyword, -1, "ab"),
		}},
		{"content inside expression", "(a\x00b)", []emission{
			tk(Match, TypeExpression, 0, "(a\x00b)"),
		}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := collect(t, lx, tc.input, 64, 32, 0)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNextEndOfInput(t *testing.T) {
	t.Parallel()

	t.Run("residual flushes before End", func(t *testing.T) {
		t.Parallel()
		lx := mustNew(t, Config{Keywords: []string{"xyz"}})
		var src Slice
		tok := NewToken(16)
		src.Attach([]byte("xyz"))
		src.MarkEnd()

		require.Equal(t, Match, lx.Next(&src, &tok, 0))
		assert.Equal(t, TypeKeyword, tok.Type)
		assert.Equal(t, 0, tok.ID)
		assert.Equal(t, "xyz", tok.String())

		require.Equal(t, End, lx.Next(&src, &tok, 0))
		assert.Equal(t, 0, tok.Len())
		// End repeats
		require.Equal(t, End, lx.Next(&src, &tok, 0))
	})

	t.Run("single byte skips the lookup", func(t *testing.T) {
		t.Parallel()
		lx := mustNew(t, Config{Keywords: []string{"x"}})
		got := collect(t, lx, "x", 64, 16, 0)
		assert.Equal(t, []emission{tk(Match, TypeKeyword, -1, "x")}, got)
	})

	t.Run("single punctuation byte keeps its type", func(t *testing.T) {
		t.Parallel()
		lx := mustNew(t, Config{Puncs: []string{"!", "!="}})
		got := collect(t, lx, "!", 64, 16, 0)
		assert.Equal(t, []emission{tk(Match, TypePunct, 0, "!")}, got)
	})

	t.Run("single space residual is dropped", func(t *testing.T) {
		t.Parallel()
		got := collect(t, Default(), " ", 64, 16, IgSpace)
		assert.Empty(t, got)
	})

	t.Run("pending punctuation resolves", func(t *testing.T) {
		t.Parallel()
		lx := mustNew(t, Config{Puncs: []string{"!", "!="}})
		got := collect(t, lx, "foo!", 64, 16, 0)
		want := []emission{
			tk(Match, TypeKeyword, -1, "foo"),
			tk(Match, TypePunct, 0, "!"),
		}
		assert.Equal(t, want, got)
	})
}

func TestNextFlagIgSpace(t *testing.T) {
	t.Parallel()
	lx := Default()

	got := collect(t, lx, "a b\nc d", 64, 32, IgSpace)
	want := []emission{
		tk(Match, TypeKeyword, -1, "a b"),
		tk(Match, TypeKeyword, -1, "c d"),
	}
	assert.Equal(t, want, got)
}

func TestNextDelimRanges(t *testing.T) {
	t.Parallel()
	lx := mustNew(t, Config{DelimRanges: []string{";"}})

	tests := []struct {
		name  string
		flags Flag
		want  []emission
	}{
		{"ranges replace defaults", 0, []emission{
			tk(Match, TypeKeyword, -1, "a b"),
			tk(Match, TypeKeyword, -1, "c d"),
		}},
		{"alldelims adds defaults back", AllDelims, []emission{
			tk(Match, TypeKeyword, -1, "a"),
			tk(Match, TypeKeyword, -1, "b"),
			tk(Match, TypeKeyword, -1, "c"),
			tk(Match, TypeKeyword, -1, "d"),
		}},
		{"alldelims still honors igspace", AllDelims | IgSpace, []emission{
			tk(Match, TypeKeyword, -1, "a b"),
			tk(Match, TypeKeyword, -1, "c d"),
		}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := collect(t, lx, "a b;c d", 64, 32, tc.flags)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNextDelimRangePairs(t *testing.T) {
	t.Parallel()
	lx := mustNew(t, Config{DelimRanges: []string{"09"}})

	got := collect(t, lx, "ab1cd23ef", 64, 32, 0)
	want := []emission{
		tk(Match, TypeKeyword, -1, "ab"),
		tk(Match, TypeKeyword, -1, "cd"),
		tk(Match, TypeKeyword, -1, "ef"),
	}
	assert.Equal(t, want, got)
}

// Feeding the same input in any chunking must produce the same emissions.
func TestNextChunkingTransparency(t *testing.T) {
	t.Parallel()
	lx := mustNew(t, Config{
		Puncs:       []string{"=", "!=", "<", ">"},
		Keywords:    []string{"if", "set"},
		Expressions: []Expression{{"(", ")"}, {"{{", "}}"}},
	})
	input := "if (x != 10) set{{a < b}} done\n"

	want := collect(t, lx, input, len(input), 64, 0)
	require.NotEmpty(t, want)
	for _, size := range []int{1, 2, 3, 5, 8, 13} {
		size := size
		t.Run(fmt.Sprintf("chunk%d", size), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, want, collect(t, lx, input, size, 64, 0))
		})
	}
}

func TestNextErrorSetup(t *testing.T) {
	t.Parallel()
	lx := Default()

	t.Run("nil token buffer", func(t *testing.T) {
		t.Parallel()
		var src Slice
		tok := WrapToken(nil)
		src.Attach([]byte("abc"))
		assert.Equal(t, Error, lx.Next(&src, &tok, 0))
	})

	t.Run("token aliases the chunk", func(t *testing.T) {
		t.Parallel()
		buf := make([]byte, 16)
		var src Slice
		tok := WrapToken(buf)
		src.Attach(buf)
		assert.Equal(t, Error, lx.Next(&src, &tok, 0))
		// the status is sticky as long as the setup stays broken
		assert.Equal(t, Error, lx.Next(&src, &tok, 0))
	})
}

func TestNextSessionReset(t *testing.T) {
	t.Parallel()
	lx := Default()

	var src Slice
	tok := NewToken(16)
	src.Attach([]byte("one"))
	src.MarkEnd()
	require.Equal(t, Match, lx.Next(&src, &tok, 0))
	require.Equal(t, End, lx.Next(&src, &tok, 0))

	src.Reset()
	tok.Reset()
	require.False(t, src.Ended())
	src.Attach([]byte("two"))
	src.MarkEnd()
	require.Equal(t, Match, lx.Next(&src, &tok, 0))
	assert.Equal(t, "two", tok.String())
}
