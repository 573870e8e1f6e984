package milexer

import (
	"context"
	"io"
	"sync"
)

// Pool tokenizes independent inputs on a fixed set of workers. All sessions
// share the immutable Lexer and nothing else, so inputs are processed fully
// in parallel.
type Pool struct {
	lx      *Lexer
	flags   Flag
	workers int
	queue   chan job
	wg      sync.WaitGroup
}

type job struct {
	r    io.Reader
	done func(Result)
}

// Result carries the completed token texts of one input in stream order,
// with chunk fragments already reassembled. Types holds the matching token
// types index by index.
type Result struct {
	Tokens []string
	Types  []TokenType
	Err    error
}

// NewPool returns a Pool of the given size. Run starts it.
func NewPool(lx *Lexer, workers int, flags Flag) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{
		lx:      lx,
		flags:   flags,
		workers: workers,
		queue:   make(chan job, workers*2),
	}
}

// Run starts the workers and returns. Workers stop when ctx is canceled or
// when Close is called and the queue drains; Wait blocks until they are
// gone.
func (p *Pool) Run(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
}

// Submit enqueues one input. done runs on a worker goroutine once the input
// is fully tokenized. Submit blocks while the queue is full and must not be
// called after Close.
func (p *Pool) Submit(r io.Reader, done func(Result)) {
	p.queue <- job{r: r, done: done}
}

// Close stops accepting work. Queued jobs still run.
func (p *Pool) Close() { close(p.queue) }

// Wait blocks until all workers have exited.
func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-p.queue:
			if !ok {
				return
			}
			j.done(p.scan(j.r))
		}
	}
}

func (p *Pool) scan(r io.Reader) Result {
	sc := NewScanner(p.lx, r, p.flags)
	var res Result
	var pending []byte
	var pendingType TokenType
	settle := func() {
		res.Tokens = append(res.Tokens, string(pending))
		res.Types = append(res.Types, pendingType)
		pending = pending[:0]
	}
	for sc.Scan() {
		tok := sc.Token()
		if len(pending) > 0 && !sc.Continues() {
			// the chunked token ended exactly at the buffer boundary,
			// no closing fragment follows
			settle()
		}
		if sc.Status() == Chunk {
			pending = append(pending, tok.Bytes()...)
			pendingType = tok.Type
			continue
		}
		text := tok.String()
		if len(pending) > 0 {
			text = string(append(pending, tok.Bytes()...))
			pending = pending[:0]
		}
		res.Tokens = append(res.Tokens, text)
		res.Types = append(res.Types, tok.Type)
	}
	if len(pending) > 0 {
		// the input ended right behind a chunk fragment
		settle()
	}
	res.Err = sc.Err()
	return res
}
