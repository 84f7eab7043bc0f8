package identity

import (
	"sync"

	"github.com/finwise/finwise-backend/internal/pkg/logger"
)

// Stream fans auth state changes out to subscribers. Listener callbacks run
// on the publishing goroutine; a panicking listener is logged and dropped
// from that publish, never allowed to kill the publisher.
type Stream struct {
	log *logger.Logger

	mu        sync.Mutex
	nextID    int
	listeners map[int]func(Event)
}

func NewStream(log *logger.Logger) *Stream {
	return &Stream{
		log:       log.With("service", "IdentityStream"),
		listeners: make(map[int]func(Event)),
	}
}

func (s *Stream) Subscribe(onChange func(Event)) Unsubscribe {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = onChange
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Stream) Publish(ev Event) {
	s.mu.Lock()
	snapshot := make([]func(Event), 0, len(s.listeners))
	for _, fn := range s.listeners {
		snapshot = append(snapshot, fn)
	}
	s.mu.Unlock()

	for _, fn := range snapshot {
		s.deliver(fn, ev)
	}
}

func (s *Stream) deliver(fn func(Event), ev Event) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("identity listener panicked", "panic", r)
		}
	}()
	fn(ev)
}
