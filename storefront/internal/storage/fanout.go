package storage

import (
	"context"
	"sync"
)

// fanout delivers events to every live watcher without blocking the
// publisher. Each watcher has its own unbounded queue so no event is dropped.
type fanout struct {
	mu       sync.Mutex
	nextID   int
	watchers map[int]*watcher
}

type watcher struct {
	mu     sync.Mutex
	queue  []Event
	signal chan struct{}
	out    chan Event
}

func newFanout() *fanout {
	return &fanout{watchers: make(map[int]*watcher)}
}

func (f *fanout) subscribe(ctx context.Context) <-chan Event {
	w := &watcher{signal: make(chan struct{}, 1), out: make(chan Event)}

	f.mu.Lock()
	f.nextID++
	id := f.nextID
	f.watchers[id] = w
	f.mu.Unlock()

	go func() {
		defer close(w.out)
		defer func() {
			f.mu.Lock()
			delete(f.watchers, id)
			f.mu.Unlock()
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case <-w.signal:
			}
			for {
				w.mu.Lock()
				if len(w.queue) == 0 {
					w.mu.Unlock()
					break
				}
				ev := w.queue[0]
				w.queue = w.queue[1:]
				w.mu.Unlock()

				select {
				case w.out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return w.out
}

func (f *fanout) publish(ev Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range f.watchers {
		w.mu.Lock()
		w.queue = append(w.queue, ev)
		w.mu.Unlock()
		select {
		case w.signal <- struct{}{}:
		default:
		}
	}
}
