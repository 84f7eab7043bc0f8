package identity

import (
	"testing"

	"github.com/finwise/finwise-backend/internal/pkg/logger"
)

func testLogger(t testing.TB) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func TestStreamFanOut(t *testing.T) {
	s := NewStream(testLogger(t))

	var a, b int
	s.Subscribe(func(Event) { a++ })
	unsubB := s.Subscribe(func(Event) { b++ })

	s.Publish(Event{})
	if a != 1 || b != 1 {
		t.Fatalf("both listeners must fire: a=%d b=%d", a, b)
	}

	unsubB()
	unsubB()
	s.Publish(Event{})
	if a != 2 || b != 1 {
		t.Fatalf("unsubscribed listener must not fire: a=%d b=%d", a, b)
	}
}

func TestStreamContainsListenerPanics(t *testing.T) {
	s := NewStream(testLogger(t))

	s.Subscribe(func(Event) { panic("listener bug") })
	fired := false
	s.Subscribe(func(Event) { fired = true })

	s.Publish(Event{})
	if !fired {
		t.Fatal("a panicking listener must not stop delivery to the rest")
	}
}

func TestStreamSubscribeDuringPublish(t *testing.T) {
	s := NewStream(testLogger(t))

	late := 0
	s.Subscribe(func(Event) {
		s.Subscribe(func(Event) { late++ })
	})

	s.Publish(Event{})
	if late != 0 {
		t.Fatal("a listener added during publish must not see that publish")
	}
	s.Publish(Event{})
	if late != 1 {
		t.Fatalf("late listener must see the next publish, got %d", late)
	}
}
