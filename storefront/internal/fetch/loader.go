// Package fetch loads page data keyed by its dependencies. A result is only
// applied if its key is still current and the loader is still mounted;
// anything else is dropped. Requests in flight are not cancelled.
package fetch

import (
	"context"
	"sync"
)

type Fetcher[T any] func(ctx context.Context, key string) (T, error)

type State[T any] struct {
	Loading bool
	Data    T
	// Err is kept when fallback data is substituted so the caller can still
	// show the alert.
	Err      error
	Fallback bool
}

type Option[T any] func(*Loader[T])

// WithFallback substitutes data when the fetch fails or returns empty.
func WithFallback[T any](data T) Option[T] {
	return func(l *Loader[T]) {
		l.fallback = data
		l.hasFallback = true
	}
}

func WithEmpty[T any](isEmpty func(T) bool) Option[T] {
	return func(l *Loader[T]) { l.isEmpty = isEmpty }
}

// OnChange is called after every state transition, outside the loader lock.
func OnChange[T any](fn func(State[T])) Option[T] {
	return func(l *Loader[T]) { l.onChange = fn }
}

type Loader[T any] struct {
	mu          sync.Mutex
	fetch       Fetcher[T]
	fallback    T
	hasFallback bool
	isEmpty     func(T) bool
	onChange    func(State[T])

	generation uint64
	key        string
	started    bool
	unmounted  bool
	state      State[T]
	done       chan struct{}
}

func NewLoader[T any](fetch Fetcher[T], opts ...Option[T]) *Loader[T] {
	l := &Loader[T]{fetch: fetch}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load starts a fetch for key unless one for the same key already ran. The
// returned channel closes when that fetch settles.
func (l *Loader[T]) Load(ctx context.Context, key string) <-chan struct{} {
	l.mu.Lock()
	if l.unmounted {
		l.mu.Unlock()
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	if l.started && l.key == key {
		done := l.done
		l.mu.Unlock()
		return done
	}
	l.generation++
	generation := l.generation
	l.key = key
	l.started = true
	l.state = State[T]{Loading: true}
	l.done = make(chan struct{})
	done := l.done
	state := l.state
	l.mu.Unlock()

	l.emit(state)

	go func() {
		data, err := l.fetch(ctx, key)
		l.settle(generation, done, data, err)
	}()
	return done
}

func (l *Loader[T]) settle(generation uint64, done chan struct{}, data T, err error) {
	l.mu.Lock()
	defer close(done)
	if generation != l.generation || l.unmounted {
		l.mu.Unlock()
		return
	}
	l.state = l.resolve(data, err)
	state := l.state
	l.mu.Unlock()

	l.emit(state)
}

func (l *Loader[T]) resolve(data T, err error) State[T] {
	empty := err == nil && l.isEmpty != nil && l.isEmpty(data)
	if (err != nil || empty) && l.hasFallback {
		return State[T]{Data: l.fallback, Err: err, Fallback: true}
	}
	if err != nil {
		return State[T]{Err: err}
	}
	return State[T]{Data: data}
}

func (l *Loader[T]) emit(state State[T]) {
	if l.onChange != nil {
		l.onChange(state)
	}
}

// Fetch loads key and waits for the result or ctx.
func (l *Loader[T]) Fetch(ctx context.Context, key string) (State[T], error) {
	done := l.Load(ctx, key)
	select {
	case <-done:
		return l.State(), nil
	case <-ctx.Done():
		return l.State(), ctx.Err()
	}
}

func (l *Loader[T]) State() State[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Unmount discards any result still to arrive.
func (l *Loader[T]) Unmount() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.unmounted = true
}

func EmptySlice[E any](v []E) bool { return len(v) == 0 }
