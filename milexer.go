// Package milexer tokenizes byte streams that arrive in arbitrary sized
// chunks, without reading from any source itself. The caller drives a
// session: it attaches chunks to a Slice as the engine asks for them, and
// each Next call writes at most one token into a fixed caller owned buffer.
// Tokens longer than that buffer are delivered as Chunk fragments whose
// concatenation restores the full text.
//
// A Lexer is immutable after New and safe for concurrent use; all mutable
// session state lives in the Slice and Token the caller passes in.
package milexer

import "fmt"

// Expression is a begin/end marker pair. Everything between the markers is
// captured verbatim as a single expression token in which delimiters and
// punctuation are not recognized.
type Expression struct {
	Begin string
	End   string
}

// Config declares the token tables of a Lexer. All fields are optional; the
// zero Config describes a plain whitespace splitter.
//
// DelimRanges replaces the default delimiter rule (bytes below 0x21) with
// explicit ranges, each given as one byte or as a two byte "lo hi" pair.
// The AllDelims flag applies the default rule on top of the ranges again.
type Config struct {
	Puncs       []string
	Keywords    []string
	Expressions []Expression
	DelimRanges []string
}

// Lexer holds compiled token tables. Emitted token ids index into these
// tables in their configured order.
type Lexer struct {
	puncs    []string
	keywords []string
	exprs    []Expression

	ranges    byteSet
	hasRanges bool
}

// New compiles a configuration. The tables are copied, so the caller may
// reuse or modify the Config afterwards.
func New(config Config) (*Lexer, error) {
	for i, p := range config.Puncs {
		if p == "" {
			return nil, fmt.Errorf("milexer: punctuation %d is empty", i)
		}
	}
	for i, k := range config.Keywords {
		if k == "" {
			return nil, fmt.Errorf("milexer: keyword %d is empty", i)
		}
	}
	for i, e := range config.Expressions {
		if e.Begin == "" || e.End == "" {
			return nil, fmt.Errorf("milexer: expression %d needs both markers", i)
		}
	}
	ranges, err := newByteSet(config.DelimRanges)
	if err != nil {
		return nil, err
	}
	return &Lexer{
		puncs:     append([]string(nil), config.Puncs...),
		keywords:  append([]string(nil), config.Keywords...),
		exprs:     append([]Expression(nil), config.Expressions...),
		ranges:    ranges,
		hasRanges: len(config.DelimRanges) > 0,
	}, nil
}

// Default returns a Lexer with empty tables: a whitespace splitter that
// reports every token as an unknown keyword.
func Default() *Lexer {
	lx, _ := New(Config{})
	return lx
}
