package store

import "sync"

type Topic string

const (
	TopicCart     Topic = "cart.changed"
	TopicLocation Topic = "location.changed"
	TopicSession  Topic = "session.changed"
)

// Bus is the in-process notification channel between stores and the
// components that render them. Handlers run synchronously on the
// publisher's goroutine, in subscription order.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[Topic][]subscription
}

type subscription struct {
	id int
	fn func(any)
}

func NewBus() *Bus {
	return &Bus{subs: make(map[Topic][]subscription)}
}

func (b *Bus) subscribe(topic Topic, fn func(any)) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscription{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subs[topic]
		for i, s := range subs {
			if s.id == id {
				b.subs[topic] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

func (b *Bus) Publish(topic Topic, payload any) {
	if b == nil {
		return
	}
	b.mu.RLock()
	subs := append([]subscription(nil), b.subs[topic]...)
	b.mu.RUnlock()

	for _, s := range subs {
		s.fn(payload)
	}
}

// Subscribe registers fn for payloads of type T on topic and returns a
// function that removes the subscription. Payloads of other types are
// ignored.
func Subscribe[T any](b *Bus, topic Topic, fn func(T)) func() {
	return b.subscribe(topic, func(payload any) {
		if v, ok := payload.(T); ok {
			fn(v)
		}
	})
}
