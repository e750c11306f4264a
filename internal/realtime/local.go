package realtime

import "sync"

const localFeedBuffer = 64

// LocalFeed is an in-process feed. The standalone sqlite backend publishes
// its own writes here so the cache invalidation path behaves the same with
// and without a server; tests use it to simulate remote changes.
type LocalFeed struct {
	mu     sync.Mutex
	events chan Event
	closed bool
}

func NewLocalFeed() *LocalFeed {
	return &LocalFeed{
		events: make(chan Event, localFeedBuffer),
	}
}

// Publish enqueues an event. If the consumer is too far behind the event is
// dropped; a dropped hint only delays a refetch until the next one.
func (f *LocalFeed) Publish(event Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	select {
	case f.events <- event:
	default:
	}
}

func (f *LocalFeed) Events() <-chan Event {
	return f.events
}

func (f *LocalFeed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	close(f.events)
}
