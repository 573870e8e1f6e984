package milexer

import (
	"fmt"
	"io"
	"strings"

	"github.com/maja42/goval"
)

// Evaluator extracts expression tokens from a stream and evaluates their
// content. Functions is optional and exposes callables to the expressions.
type Evaluator struct {
	lx        *Lexer
	eval      *goval.Evaluator
	Functions map[string]goval.ExpressionFunction
}

// NewEvaluator returns an Evaluator extracting expressions with lx.
func NewEvaluator(lx *Lexer) *Evaluator {
	return &Evaluator{
		lx:        lx,
		eval:      goval.NewEvaluator(),
		Functions: map[string]goval.ExpressionFunction{},
	}
}

// Eval scans r and evaluates every expression token against vars, returning
// the results in stream order. Tokens outside expressions are skipped.
// Expression bodies larger than the token buffer are reassembled from their
// chunk fragments before evaluation.
//
// An expression closes at the first occurrence of its end marker, so the
// markers must not collide with expression syntax: bodies that contain
// parenthesized calls need markers like {{ and }} rather than ( and ).
func (e *Evaluator) Eval(r io.Reader, vars map[string]any) ([]any, error) {
	sc := NewScanner(e.lx, r, Inexp)
	var results []any
	var partial []byte
	for sc.Scan() {
		tok := sc.Token()
		if tok.Type != TypeExpression {
			continue
		}
		if sc.Status() == Chunk {
			partial = append(partial, tok.Bytes()...)
			continue
		}
		body := tok.String()
		if len(partial) > 0 {
			body = string(append(partial, tok.Bytes()...))
			partial = partial[:0]
		}
		v, err := e.eval.Evaluate(body, vars, e.Functions)
		if err != nil {
			return results, fmt.Errorf("milexer: evaluate %q: %w", body, err)
		}
		results = append(results, v)
	}
	return results, sc.Err()
}

// EvalString is Eval over an in-memory input.
func (e *Evaluator) EvalString(input string, vars map[string]any) ([]any, error) {
	return e.Eval(strings.NewReader(input), vars)
}
