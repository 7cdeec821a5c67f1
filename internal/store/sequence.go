package store

import (
	"context"
	"sync"
)

// sequence hands out slots whose completions run strictly in reservation order.
type sequence struct {
	mu   sync.Mutex
	tail chan struct{}
}

func newSequence() *sequence {
	done := make(chan struct{})
	close(done)
	return &sequence{tail: done}
}

func (q *sequence) reserve() *slot {
	q.mu.Lock()
	defer q.mu.Unlock()
	s := &slot{prev: q.tail, done: make(chan struct{})}
	q.tail = s.done
	return s
}

// slot is one reserved position in a sequence. Exactly one of run or release takes effect.
type slot struct {
	prev chan struct{}
	done chan struct{}
	once sync.Once
}

// run waits for every earlier slot, then applies fn. When ctx ends first the slot is
// released and fn never runs.
func (s *slot) run(ctx context.Context, fn func()) error {
	select {
	case <-s.prev:
	case <-ctx.Done():
		s.release()
		return ctx.Err()
	}
	ran := false
	s.once.Do(func() {
		fn()
		ran = true
		close(s.done)
	})
	if !ran {
		return errSlotUsed
	}
	return nil
}

// release gives up the slot; later slots still wait for earlier ones.
func (s *slot) release() {
	s.once.Do(func() {
		go func() {
			<-s.prev
			close(s.done)
		}()
	})
}
