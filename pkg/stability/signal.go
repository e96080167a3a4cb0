package stability

import (
	"context"
	"sync"
)

// Signal is an observable stream of boolean states.
type Signal struct {
	mu     sync.Mutex
	value  bool
	nextID uint64
	subs   map[uint64]*subscriber

	// replay keeps every observation for new subscribers.
	replay  bool
	history []bool
}

type subscriber struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []bool
	closed  bool
	out     chan bool
	stopped chan struct{}
}

// NewSignal creates a signal holding initial.
func NewSignal(initial bool) *Signal {
	return &Signal{
		value: initial,
		subs:  make(map[uint64]*subscriber),
	}
}

// Replay creates a signal whose subscribers receive every observation made
// so far, starting with values, before live updates. Tests use it to feed a
// deterministic sequence such as [false, false, true, false].
func Replay(values ...bool) *Signal {
	s := &Signal{
		subs:   make(map[uint64]*subscriber),
		replay: true,
	}
	if len(values) > 0 {
		s.value = values[len(values)-1]
		s.history = append(s.history, values...)
	}
	return s
}

// Value returns the most recent state.
func (s *Signal) Value() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Set records a new observation and delivers it to every subscriber.
// Set never blocks on slow subscribers.
func (s *Signal) Set(v bool) {
	s.mu.Lock()
	s.value = v
	if s.replay {
		s.history = append(s.history, v)
	}
	subs := make([]*subscriber, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub.push(v)
	}
}

// Subscribe returns a channel of observations, starting with the current
// value (or the full history for Replay signals), and a cancel func that
// stops delivery and closes the channel. Observations arrive in order.
func (s *Signal) Subscribe() (<-chan bool, func()) {
	sub := &subscriber{
		out:     make(chan bool),
		stopped: make(chan struct{}),
	}
	sub.cond = sync.NewCond(&sub.mu)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	if s.replay {
		sub.queue = append(sub.queue, s.history...)
	} else {
		sub.queue = append(sub.queue, s.value)
	}
	s.subs[id] = sub
	s.mu.Unlock()

	go sub.pump()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			sub.close()
		})
	}
	return sub.out, cancel
}

// Subscribers returns the number of active subscriptions.
func (s *Signal) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (sub *subscriber) push(v bool) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed {
		return
	}
	sub.queue = append(sub.queue, v)
	sub.cond.Signal()
}

func (sub *subscriber) close() {
	sub.mu.Lock()
	sub.closed = true
	sub.cond.Signal()
	sub.mu.Unlock()
	close(sub.stopped)
}

// pump moves queued observations to the unbuffered out channel.
func (sub *subscriber) pump() {
	defer close(sub.out)
	for {
		sub.mu.Lock()
		for len(sub.queue) == 0 && !sub.closed {
			sub.cond.Wait()
		}
		if sub.closed {
			sub.mu.Unlock()
			return
		}
		v := sub.queue[0]
		sub.queue = sub.queue[1:]
		sub.mu.Unlock()

		select {
		case sub.out <- v:
		case <-sub.stopped:
			return
		}
	}
}

// First waits for the first observation satisfying pred and unsubscribes.
// Without a matching observation it only returns when ctx is done.
func First(ctx context.Context, s *Signal, pred func(bool) bool) (bool, error) {
	ch, cancel := s.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case v, ok := <-ch:
			if !ok {
				return false, context.Canceled
			}
			if pred(v) {
				return v, nil
			}
		}
	}
}

// IsTrue is the predicate used to wait for stability.
func IsTrue(v bool) bool { return v }
