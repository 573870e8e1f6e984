package milexer

// Next writes the next token of the session into tok and reports what
// happened. src carries the read position and the resume state across
// calls; the same src and tok must be passed for the whole session.
//
// Match, Chunk and ZeroTerm deliver token bytes. NeedMore asks for the next
// chunk via src.Attach, or for src.MarkEnd when the source is exhausted.
// End reports a fully tokenized input and repeats on further calls. Error
// reports an invalid call setup, described by ErrSetup. At most one token
// is delivered per call.
func (l *Lexer) Next(src *Slice, tok *Token, flags Flag) Status {
	if len(tok.buf) == 0 || aliased(src.chunk, tok.buf) {
		return Error
	}

	if src.state == synChunk {
		// resume the interrupted token where it stopped
		src.state = src.prev
		src.resumed = true
	}
	if src.state == synPuncHold {
		tok.n = copy(tok.buf, l.puncs[src.lastPunc])
		tok.idx = 0
		tok.Type = TypePunct
		tok.ID = src.lastPunc
		src.state = src.prev
		src.resumed = false
		return Match
	}
	tok.Type = TypeNone
	tok.ID = -1
	if src.state == synExprHold {
		if flags&Inexp == 0 {
			tok.idx = copy(tok.buf, l.exprs[src.lastExp].Begin)
		}
		src.state = synExpr
		src.resumed = false
	}
	if src.state == synExpr {
		tok.Type = TypeExpression
		tok.ID = src.lastExp
	}

	for src.idx < len(src.chunk) {
		p := src.chunk[src.idx]
		src.idx++

		if src.state == synEscape {
			// the escaped byte is literal, only the overflow check
			// applies to it
			tok.buf[tok.idx] = p
			tok.idx++
			src.state = src.prev
			if tok.idx == len(tok.buf) {
				return l.chunkOut(src, tok)
			}
			continue
		}

		if src.state != synExpr && l.isDelim(p, flags) {
			if tok.idx == 0 {
				// nothing to flush; a token cut exactly at the buffer
				// boundary is already complete at this point
				src.resumed = false
				continue
			}
			st := l.flush(src, tok)
			if p == 0 {
				st = ZeroTerm
			}
			return st
		}

		tok.buf[tok.idx] = p
		tok.idx++
		if src.state == synIdle || src.state == synDone {
			src.state = synMiddle
			src.resumed = false
		}

		if src.state == synExpr {
			end := l.exprs[src.lastExp].End
			if n := len(end); tok.idx >= n && string(tok.buf[tok.idx-n:tok.idx]) == end {
				src.shift(synDone)
				keep := tok.idx
				if flags&Inexp != 0 {
					keep -= n
				}
				tok.emit(keep, TypeExpression, src.lastExp)
				return Match
			}
			if p == '\\' {
				// an escape inside the body can hide the end marker
				tok.idx--
				src.shift(synEscape)
			}
		} else if i, at := l.beginSuffix(tok.buf[:tok.idx]); i >= 0 {
			if at == 0 {
				src.shift(synExpr)
				src.lastExp = i
				src.resumed = false
				tok.Type = TypeExpression
				tok.ID = i
				if flags&Inexp != 0 {
					tok.idx = 0
				}
			} else {
				// the marker was glued to a preceding token: flush
				// that token now, re-enter the expression next call
				src.shift(synExprHold)
				src.lastExp = i
				typ, id := l.classify(tok.buf[:at])
				tok.emit(at, typ, id)
				return Match
			}
		} else if p == '\\' {
			// the escape byte itself is dropped
			tok.idx--
			src.shift(synEscape)
		} else if i, at := l.puncSuffix(tok.buf[:tok.idx]); i >= 0 {
			// while a longer punctuation can still complete, hold the
			// match and decide on a later byte
			if !l.puncViable(tok.buf[:tok.idx], tok.idx-at) {
				if at == 0 {
					src.shift(synIdle)
					src.resumed = false
					tok.emit(tok.idx, TypePunct, i)
					return Match
				}
				src.shift(synPuncHold)
				src.lastPunc = i
				typ, id := l.classify(tok.buf[:at])
				tok.emit(at, typ, id)
				return Match
			}
		}

		if tok.idx == len(tok.buf) {
			return l.chunkOut(src, tok)
		}
	}

	if !src.eof {
		return NeedMore
	}

	switch {
	case tok.idx >= 2:
		// flush the residual now, End follows on the next call
		return l.flush(src, tok)
	case tok.idx == 1 && tok.buf[0] > ' ':
		typ, id := TypeKeyword, -1
		if i := l.puncIndex(tok.buf[:1]); i >= 0 {
			typ, id = TypePunct, i
		}
		src.shift(synIdle)
		tok.emit(1, typ, id)
		return Match
	default:
		tok.emit(0, TypeNone, -1)
		return End
	}
}

// chunkOut hands out the full buffer as a token fragment. In-progress
// expressions keep their type and id, anything else counts as an unknown
// keyword until the final fragment can be classified.
func (l *Lexer) chunkOut(src *Slice, tok *Token) Status {
	typ, id := tok.Type, tok.ID
	if typ == TypeNone {
		typ, id = TypeKeyword, -1
	}
	src.shift(synChunk)
	tok.emit(tok.idx, typ, id)
	return Chunk
}

// flush classifies and emits the accumulation when a delimiter or the end
// of input terminates it. A punctuation suffix splits off into a hold that
// the next call re-emits, like the glue recovery does for markers.
func (l *Lexer) flush(src *Slice, tok *Token) Status {
	text := tok.buf[:tok.idx]
	if src.state == synExpr {
		// unterminated expression body, punctuation is not recognized
		src.shift(synIdle)
		tok.emit(tok.idx, TypeKeyword, l.keywordID(text))
		return Match
	}
	if i := l.puncIndex(text); i >= 0 {
		src.shift(synIdle)
		tok.emit(tok.idx, TypePunct, i)
		return Match
	}
	if i, at := l.puncSuffix(text); i >= 0 && at > 0 {
		src.shift(synPuncHold)
		src.lastPunc = i
		typ, id := l.classify(text[:at])
		tok.emit(at, typ, id)
		return Match
	}
	src.shift(synIdle)
	tok.emit(tok.idx, TypeKeyword, l.keywordID(text))
	return Match
}

// isDelim applies the delimiter rule: configured ranges when present, bytes
// below 0x21 otherwise, both under AllDelims. IgSpace exempts 0x20 from the
// default rule only.
func (l *Lexer) isDelim(p byte, flags Flag) bool {
	if l.hasRanges {
		if l.ranges.contains(p) {
			return true
		}
		if flags&AllDelims == 0 {
			return false
		}
	}
	if p == ' ' {
		return flags&IgSpace == 0
	}
	return p < 0x21
}

// beginSuffix reports the expression whose begin marker ends the text,
// preferring the longest marker and the earliest table entry on equal
// length. at is the offset where the marker starts.
func (l *Lexer) beginSuffix(text []byte) (idx, at int) {
	best, n := -1, 0
	for i, e := range l.exprs {
		m := len(e.Begin)
		if m > len(text) || m <= n {
			continue
		}
		if string(text[len(text)-m:]) == e.Begin {
			best, n = i, m
		}
	}
	if best < 0 {
		return -1, 0
	}
	return best, len(text) - n
}

// puncSuffix is beginSuffix over the punctuation table.
func (l *Lexer) puncSuffix(text []byte) (idx, at int) {
	best, n := -1, 0
	for i, p := range l.puncs {
		m := len(p)
		if m > len(text) || m <= n {
			continue
		}
		if string(text[len(text)-m:]) == p {
			best, n = i, m
		}
	}
	if best < 0 {
		return -1, 0
	}
	return best, len(text) - n
}

// puncViable reports whether a punctuation longer than min bytes could
// still complete: some table entry longer than min has a prefix of at
// least min bytes ending the text.
func (l *Lexer) puncViable(text []byte, min int) bool {
	for _, q := range l.puncs {
		if len(q) <= min {
			continue
		}
		hi := len(q) - 1
		if hi > len(text) {
			hi = len(text)
		}
		for j := hi; j >= min; j-- {
			if string(text[len(text)-j:]) == q[:j] {
				return true
			}
		}
	}
	return false
}

func (l *Lexer) puncIndex(text []byte) int {
	for i, p := range l.puncs {
		if string(text) == p {
			return i
		}
	}
	return -1
}

func (l *Lexer) keywordID(text []byte) int {
	for i, k := range l.keywords {
		if string(text) == k {
			return i
		}
	}
	return -1
}

// classify types a flushed text: exact punctuation first, keyword lookup
// otherwise.
func (l *Lexer) classify(text []byte) (TokenType, int) {
	if i := l.puncIndex(text); i >= 0 {
		return TypePunct, i
	}
	return TypeKeyword, l.keywordID(text)
}

func aliased(a, b []byte) bool {
	return len(a) > 0 && len(b) > 0 && &a[0] == &b[0]
}
