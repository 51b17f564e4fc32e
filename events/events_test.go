package events

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	Value int
}

type otherEvent struct {
	Name string
}

func TestSubscribeEmit(t *testing.T) {
	got := make(chan testEvent, 1)
	sub := Subscribe(func(evt testEvent) { got <- evt })
	defer sub.Unsubscribe()

	Emit(testEvent{Value: 42})

	select {
	case evt := <-got:
		assert.Equal(t, 42, evt.Value)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestEmit_OnlyMatchingType(t *testing.T) {
	var count atomic.Int32
	sub := Subscribe(func(evt testEvent) { count.Add(1) })
	defer sub.Unsubscribe()

	Emit(otherEvent{Name: "ignored"})

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, count.Load())
}

func TestUnsubscribe(t *testing.T) {
	var count atomic.Int32
	sub := Subscribe(func(evt testEvent) { count.Add(1) })
	sub.Unsubscribe()
	sub.Unsubscribe() // safe to call twice

	Emit(testEvent{Value: 1})
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, count.Load())
}

func TestSubscribeOnce(t *testing.T) {
	var count atomic.Int32
	SubscribeOnce(func(evt testEvent) { count.Add(1) })

	Emit(testEvent{Value: 1})
	Emit(testEvent{Value: 2})

	require.Eventually(t, func() bool { return count.Load() == 1 }, time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), count.Load())
}
