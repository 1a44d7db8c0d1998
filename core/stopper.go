package core

import "sync"

// Stopper is an external "stop every task" signal a Scheduler can subscribe to.
type Stopper interface {
	Subscribe(fn func())
}

// StopSignal is a Stopper fired by hand.
//
// Fire runs the subscribers on the calling goroutine, so fire it from the
// goroutine that drives the subscribed schedulers (TickLoop.Post helps).
type StopSignal struct {
	mu       sync.Mutex
	handlers []func()
}

func NewStopSignal() *StopSignal {
	return &StopSignal{}
}

func (s *StopSignal) Subscribe(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, fn)
}

// Fire notifies every subscriber in subscription order.
func (s *StopSignal) Fire() {
	s.mu.Lock()
	handlers := make([]func(), len(s.handlers))
	copy(handlers, s.handlers)
	s.mu.Unlock()

	for _, fn := range handlers {
		fn()
	}
}
