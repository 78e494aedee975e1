package event

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesAllHandlers(t *testing.T) {
	bus := New[int](nil)

	var sum atomic.Int64
	bus.Subscribe(func(v int) { sum.Add(int64(v)) })
	bus.Subscribe(func(v int) { sum.Add(int64(v * 10)) })

	bus.Publish(7)

	// Publish returns only after every handler has settled
	assert.Equal(t, int64(77), sum.Load())
}

func TestPublishWaitsForSlowHandler(t *testing.T) {
	bus := New[string](nil)

	done := false
	var mu sync.Mutex
	bus.Subscribe(func(string) {
		mu.Lock()
		done = true
		mu.Unlock()
	})

	bus.Publish("x")

	mu.Lock()
	defer mu.Unlock()
	require.True(t, done, "Publish returned before handler completed")
}

func TestPanickingHandlerIsIsolated(t *testing.T) {
	bus := New[int](nil)

	var called atomic.Bool
	bus.Subscribe(func(int) { panic("boom") })
	bus.Subscribe(func(int) { called.Store(true) })

	require.NotPanics(t, func() { bus.Publish(1) })
	assert.True(t, called.Load(), "sibling handler should still run")
}

func TestUnsubscribe(t *testing.T) {
	bus := New[int](nil)

	var calls atomic.Int32
	sub := bus.Subscribe(func(int) { calls.Add(1) })
	bus.Publish(1)
	require.Equal(t, int32(1), calls.Load())

	bus.Unsubscribe(sub)
	bus.Publish(2)
	assert.Equal(t, int32(1), calls.Load())

	// nil and repeated unsubscribes are harmless
	bus.Unsubscribe(nil)
	bus.Unsubscribe(sub)
}

func TestClear(t *testing.T) {
	bus := New[int](nil)
	bus.Subscribe(func(int) {})
	bus.Subscribe(func(int) {})
	require.Equal(t, 2, bus.HandlerCount())

	bus.Clear()
	assert.Equal(t, 0, bus.HandlerCount())
}

func TestPublishWithNoHandlers(t *testing.T) {
	bus := New[int](nil)
	require.NotPanics(t, func() { bus.Publish(42) })
}
