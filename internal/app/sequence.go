package app

import (
	"sync"
	"sync/atomic"
)

// Epoch tags a load with the navigation that started it.
type Epoch uint64

// Sequencer hands out increasing epochs. A result is applied only while its
// epoch is still the latest one, so a slow response from an earlier
// navigation cannot overwrite a newer page.
type Sequencer struct {
	cur atomic.Uint64
}

// Next starts a new epoch, superseding every earlier one.
func (s *Sequencer) Next() Epoch {
	return Epoch(s.cur.Add(1))
}

// Latest returns the newest epoch handed out.
func (s *Sequencer) Latest() Epoch {
	return Epoch(s.cur.Load())
}

// Current reports whether e has not been superseded.
func (s *Sequencer) Current(e Epoch) bool {
	return Epoch(s.cur.Load()) == e
}

// Loading is a reference counted busy indicator. The callback fires when the
// count leaves or returns to zero.
type Loading struct {
	mu       sync.Mutex
	n        int
	onChange func(active bool)
}

// NewLoading returns an idle indicator. onChange may be nil.
func NewLoading(onChange func(active bool)) *Loading {
	return &Loading{onChange: onChange}
}

// Begin marks one operation as pending. The returned func ends it and is
// safe to call more than once.
func (l *Loading) Begin() (done func()) {
	l.mu.Lock()
	l.n++
	if l.n == 1 && l.onChange != nil {
		l.onChange(true)
	}
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			l.n--
			if l.n == 0 && l.onChange != nil {
				l.onChange(false)
			}
		})
	}
}

// Active reports whether any operation is pending.
func (l *Loading) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.n > 0
}
