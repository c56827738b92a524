// Package eventbus provides the in-process pub/sub channel used to surface
// scheduling decisions to observers (loggers, reporting, tests).
package eventbus

import "sync"

// Event is an arbitrary domain event passed on the bus.
type Event any

// EventBus decouples the dispatch engine from its observers.
type EventBus interface {
	Publish(Event)
	Subscribe() <-chan Event
	Unsubscribe(<-chan Event)
	Close()
}

// subscriberBuffer bounds each subscriber channel. Slow subscribers lose
// events rather than blocking the engine.
const subscriberBuffer = 16

// Bus is the default EventBus implementation fanning events out to buffered
// subscriber channels.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]chan Event
	nextID int
	closed bool
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Publish delivers the event to every subscriber without blocking. Events to
// full subscriber channels are dropped.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe registers a new subscriber and returns its channel.
func (b *Bus) Subscribe() <-chan Event {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subs[b.nextID] = ch
	b.nextID++
	return ch
}

// Unsubscribe removes the subscriber and closes its channel.
func (b *Bus) Unsubscribe(sub <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		if ch == sub {
			delete(b.subs, id)
			if !b.closed {
				close(ch)
			}
			return
		}
	}
}

// Close closes all subscriber channels. Further publishes are ignored.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
