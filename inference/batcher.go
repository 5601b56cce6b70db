package inference

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"goeval/game"
)

const defaultFlushTimeout = 1 * time.Millisecond

type request struct {
	pos   *game.Position
	reply chan response
}

type response struct {
	result Result
	err    error
}

// Batcher coalesces Evaluate calls from concurrent match workers into
// batched backend runs. Requests queue on a channel; a collector goroutine
// drains them until the batch fills or a flush timeout expires.
type Batcher struct {
	backend  Backend
	queue    chan request
	maxBatch int
	flush    time.Duration
	active   int64 // matches between StartMatch and EndMatch
}

func NewBatcher(backend Backend, maxBatch int) *Batcher {
	if maxBatch < 1 {
		maxBatch = 1
	}
	b := &Batcher{
		backend:  backend,
		queue:    make(chan request, maxBatch*4),
		maxBatch: maxBatch,
		flush:    defaultFlushTimeout,
	}
	go b.loop()
	return b
}

func (b *Batcher) Name() string {
	return b.backend.Name()
}

func (b *Batcher) StartMatch(blackName, whiteName string) {
	n := atomic.AddInt64(&b.active, 1)
	log.Debug().Msgf("inference %s: match started (%s vs %s), %d active", b.Name(), blackName, whiteName, n)
}

func (b *Batcher) EndMatch(blackName, whiteName string) {
	n := atomic.AddInt64(&b.active, -1)
	if n < 0 {
		panic("EndMatch without matching StartMatch")
	}
	log.Debug().Msgf("inference %s: match ended (%s vs %s), %d active", b.Name(), blackName, whiteName, n)
}

func (b *Batcher) Evaluate(pos *game.Position) (Result, error) {
	reply := make(chan response, 1)
	b.queue <- request{pos: pos, reply: reply}
	r := <-reply
	return r.result, r.err
}

// Close stops the collector and releases the backend. No Evaluate calls may
// be in flight.
func (b *Batcher) Close() error {
	close(b.queue)
	return b.backend.Close()
}

// target is the batch size worth waiting for: one slot per active match,
// capped by the backend maximum. With no matches registered, requests are
// served as they come.
func (b *Batcher) target() int {
	t := int(atomic.LoadInt64(&b.active))
	if t < 1 {
		t = 1
	}
	if t > b.maxBatch {
		t = b.maxBatch
	}
	return t
}

func (b *Batcher) loop() {
	pending := make([]request, 0, b.maxBatch)
	for {
		pending = pending[:0]
		first, ok := <-b.queue
		if !ok {
			return
		}
		pending = append(pending, first)

		timeout := time.After(b.flush)
	collect:
		for len(pending) < b.target() {
			select {
			case r, ok := <-b.queue:
				if !ok {
					break collect
				}
				pending = append(pending, r)
			case <-timeout:
				break collect
			}
		}
		b.run(pending)
	}
}

func (b *Batcher) run(pending []request) {
	batch := make([]*game.Position, len(pending))
	for i, r := range pending {
		batch[i] = r.pos
	}
	results, err := b.backend.Infer(batch)
	if err == nil && len(results) != len(pending) {
		err = fmt.Errorf("backend %s returned %d results for a batch of %d", b.Name(), len(results), len(pending))
	}
	for i, r := range pending {
		if err != nil {
			r.reply <- response{err: err}
			continue
		}
		r.reply <- response{result: results[i]}
	}
}
