// Package event provides a minimal in-process publish/subscribe
// primitive. Each Bus instance is one typed topic; producers and
// consumers share nothing else.
package event

import (
	"sync"

	"go.uber.org/zap"
)

// Subscription identifies a registered handler so it can be removed.
type Subscription struct {
	id int
}

// Bus delivers payloads of type T to every registered handler.
type Bus[T any] struct {
	mu       sync.Mutex
	nextID   int
	handlers map[int]func(T)
	log      *zap.SugaredLogger
}

func New[T any](log *zap.SugaredLogger) *Bus[T] {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Bus[T]{
		handlers: make(map[int]func(T)),
		log:      log,
	}
}

func (b *Bus[T]) Subscribe(fn func(T)) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.handlers[b.nextID] = fn
	return &Subscription{id: b.nextID}
}

func (b *Bus[T]) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers, sub.id)
}

// Publish invokes every currently registered handler concurrently and
// returns once all of them have settled, so a publisher can rely on
// side effects having been attempted. A panicking handler is recovered
// and logged; it never reaches the publisher or a sibling handler.
// Handlers of the same publish run in no particular order.
func (b *Bus[T]) Publish(v T) {
	b.mu.Lock()
	fns := make([]func(T), 0, len(b.handlers))
	for _, fn := range b.handlers {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	var wg sync.WaitGroup
	for _, fn := range fns {
		wg.Add(1)
		go func(fn func(T)) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					b.log.Errorw("event handler panicked", "panic", r)
				}
			}()
			fn(v)
		}(fn)
	}
	wg.Wait()
}

// Clear removes every registration. Used at teardown.
func (b *Bus[T]) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = make(map[int]func(T))
}

func (b *Bus[T]) HandlerCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers)
}
