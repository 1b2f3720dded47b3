package promidas

import "sync"

// Operation tags a notification with the caller intent that produced it.
type Operation string

const (
	OpSetup   Operation = "setup"
	OpRefresh Operation = "refresh"
)

// Listener receives operation notifications. Implementations MUST be cheap
// and non-blocking; the repository invokes them synchronously.
//
// Started fires once per caller invocation, including calls that end up
// attached to an in-flight fetch. Completed and Failed fire exactly once per
// physical fetch, so a coalesced group of N callers observes N Started and a
// single Completed or Failed.
type Listener interface {
	OperationStarted(op Operation)
	OperationCompleted(op Operation, stats Stats)
	OperationFailed(op Operation, err error)
}

type subscription struct {
	listener Listener
}

// listenerSet is an explicit ordered observer list. Registration order is
// invocation order.
type listenerSet struct {
	mu   sync.Mutex
	subs []*subscription
}

// add registers l and returns an idempotent cancel func.
func (s *listenerSet) add(l Listener) func() {
	sub := &subscription{listener: l}
	s.mu.Lock()
	s.subs = append(s.subs, sub)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, e := range s.subs {
			if e == sub {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// clear drops all subscriptions. Safe to call repeatedly.
func (s *listenerSet) clear() {
	s.mu.Lock()
	s.subs = nil
	s.mu.Unlock()
}

// snapshot returns the listeners to invoke, in registration order. Invoking
// outside the lock lets a listener subscribe/unsubscribe from its callback.
func (s *listenerSet) snapshot() []Listener {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.subs) == 0 {
		return nil
	}
	out := make([]Listener, len(s.subs))
	for i, e := range s.subs {
		out[i] = e.listener
	}
	return out
}

func (s *listenerSet) notifyStarted(op Operation) {
	for _, l := range s.snapshot() {
		l.OperationStarted(op)
	}
}

func (s *listenerSet) notifyCompleted(op Operation, stats Stats) {
	for _, l := range s.snapshot() {
		l.OperationCompleted(op, stats)
	}
}

func (s *listenerSet) notifyFailed(op Operation, err error) {
	for _, l := range s.snapshot() {
		l.OperationFailed(op, err)
	}
}
