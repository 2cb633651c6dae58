package events

import (
	"sync"

	"github.com/kelindar/event"
)

// Bus wraps kelindar/event dispatcher for event broadcasting.
// Handlers run asynchronously; Flush waits for delivered events to be handled.
type Bus struct {
	dispatcher *event.Dispatcher

	mu          sync.Mutex
	subscribers map[uint32]int
	inflight    sync.WaitGroup
}

// New creates a new event bus
func New() *Bus {
	return &Bus{
		dispatcher:  event.NewDispatcher(),
		subscribers: make(map[uint32]int),
	}
}

// Publish publishes an event to all subscribers
// Usage: bus.Publish(FileStartedEvent{...})
func (b *Bus) Publish(ev Event) {
	switch e := ev.(type) {
	case FileStartedEvent:
		publish(b, e)
	case FrameRenderedEvent:
		publish(b, e)
	case FileCompletedEvent:
		publish(b, e)
	case RemuxCompletedEvent:
		publish(b, e)
	}
}

// Subscribe subscribes to events with a handler function
// The handler type determines which events it receives.
// Returns an unsubscribe function
// Usage: unsub := bus.Subscribe(func(e FileCompletedEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(FileStartedEvent):
		return subscribe(b, h)
	case func(FrameRenderedEvent):
		return subscribe(b, h)
	case func(FileCompletedEvent):
		return subscribe(b, h)
	case func(RemuxCompletedEvent):
		return subscribe(b, h)
	default:
		// Return a no-op function if handler type is not recognized
		return func() {}
	}
}

// Flush blocks until every event published so far has been handled.
// It must not race with unsubscribing handlers that still have events queued.
func (b *Bus) Flush() {
	b.inflight.Wait()
}

func publish[T Event](b *Bus, ev T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.inflight.Add(b.subscribers[ev.Type()])
	event.Publish(b.dispatcher, ev)
}

func subscribe[T Event](b *Bus, handler func(T)) func() {
	var zero T
	typ := zero.Type()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[typ]++
	unsub := event.Subscribe(b.dispatcher, func(ev T) {
		defer b.inflight.Done()
		handler(ev)
	})

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			b.subscribers[typ]--
			unsub()
		})
	}
}
