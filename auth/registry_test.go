package auth

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, ttl time.Duration) (*Registry, *Channel) {
	t.Helper()
	ch := NewChannel(time.Second)
	return NewRegistry(ttl, ch), ch
}

func collectMessage(t *testing.T, ch *Channel, correlationID string) <-chan Message {
	t.Helper()
	out := make(chan Message, 1)
	ch.Subscribe(correlationID, func(msg Message) { out <- msg })
	return out
}

func receive(t *testing.T, out <-chan Message) Message {
	t.Helper()
	select {
	case msg := <-out:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for terminal event")
		return Message{}
	}
}

func TestRegistryCreate(t *testing.T) {
	r, _ := newTestRegistry(t, time.Minute)
	req, err := r.Create(ProviderGoogle)
	require.NoError(t, err)
	assert.NotEmpty(t, req.CorrelationID)
	assert.Equal(t, StatusPending, req.Status)
	assert.Equal(t, ProviderGoogle, req.Provider)
	assert.Equal(t, req.CreatedAt.Add(time.Minute), req.ExpiresAt)

	got, ok := r.Lookup(req.CorrelationID)
	require.True(t, ok)
	assert.Equal(t, req.CorrelationID, got.CorrelationID)
}

func TestRegistryCorrelationIDsUnique(t *testing.T) {
	r, _ := newTestRegistry(t, time.Minute)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		req, err := r.Create(ProviderGitHub)
		require.NoError(t, err)
		assert.False(t, seen[req.CorrelationID], "correlation id reused")
		seen[req.CorrelationID] = true
	}
}

func TestRegistrySupersedesPending(t *testing.T) {
	r, ch := newTestRegistry(t, time.Minute)
	first, err := r.Create(ProviderGoogle)
	require.NoError(t, err)
	out := collectMessage(t, ch, first.CorrelationID)

	second, err := r.Create(ProviderGitHub)
	require.NoError(t, err)

	msg := receive(t, out)
	assert.Equal(t, KindCancelled, msg.Kind)

	_, ok := r.Lookup(first.CorrelationID)
	assert.False(t, ok, "superseded attempt must be gone")
	_, ok = r.Lookup(second.CorrelationID)
	assert.True(t, ok)
}

func TestRegistryLookupUnknown(t *testing.T) {
	r, _ := newTestRegistry(t, time.Minute)
	_, ok := r.Lookup("no-such-id")
	assert.False(t, ok)
}

func TestRegistryExpiresByClock(t *testing.T) {
	r, _ := newTestRegistry(t, time.Minute)
	current := time.Now()
	r.now = func() time.Time { return current }

	req, err := r.Create(ProviderGoogle)
	require.NoError(t, err)
	_, ok := r.Lookup(req.CorrelationID)
	require.True(t, ok)

	current = current.Add(time.Minute + time.Second)
	_, ok = r.Lookup(req.CorrelationID)
	assert.False(t, ok, "expired attempt must be indistinguishable from unknown")
}

func TestRegistryExpiryTimerPublishes(t *testing.T) {
	r, ch := newTestRegistry(t, 20*time.Millisecond)
	req, err := r.Create(ProviderGoogle)
	require.NoError(t, err)
	out := collectMessage(t, ch, req.CorrelationID)

	msg := receive(t, out)
	assert.Equal(t, KindExpired, msg.Kind)
	assert.ErrorIs(t, msg.Err, ErrExpiredRequest)

	_, ok := r.Lookup(req.CorrelationID)
	assert.False(t, ok)
}

func TestRegistryTransitionStateMachine(t *testing.T) {
	r, _ := newTestRegistry(t, time.Minute)
	req, err := r.Create(ProviderGoogle)
	require.NoError(t, err)
	id := req.CorrelationID

	require.NoError(t, r.Transition(id, StatusExchanging, nil))
	assert.Error(t, r.Transition(id, StatusPending, nil), "no way back to pending")
	require.NoError(t, r.Transition(id, StatusCompleted, nil))

	// terminal means evicted: any further transition is an expired request
	assert.ErrorIs(t, r.Transition(id, StatusFailed, nil), ErrExpiredRequest)
}

func TestRegistrySingleTerminalTransition(t *testing.T) {
	r, ch := newTestRegistry(t, time.Minute)
	req, err := r.Create(ProviderGoogle)
	require.NoError(t, err)
	out := make(chan Message, 10)
	ch.Subscribe(req.CorrelationID, func(msg Message) { out <- msg })

	var wg sync.WaitGroup
	var okCount sync.Map
	terminals := []Status{StatusCancelled, StatusExpired, StatusFailed, StatusCancelled}
	for i, status := range terminals {
		i, status := i, status
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.Transition(req.CorrelationID, status, ErrCancelled); err == nil {
				okCount.Store(i, true)
			}
		}()
	}
	wg.Wait()

	wins := 0
	okCount.Range(func(_, _ any) bool { wins++; return true })
	assert.Equal(t, 1, wins, "exactly one terminal transition must win")
	receive(t, out)
	select {
	case <-out:
		t.Fatal("more than one terminal event published")
	case <-time.After(100 * time.Millisecond):
	}
}
