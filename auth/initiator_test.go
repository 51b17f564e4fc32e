package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInitiator(t *testing.T, f *bridgeFixture, timeout time.Duration) *Initiator {
	t.Helper()
	return NewInitiator(f.launcher, f.registry, f.channel, timeout)
}

func TestInitiatorSignInSuccess(t *testing.T) {
	f := newBridgeFixture(t)
	i := newTestInitiator(t, f, time.Minute)

	attempt, err := i.Start(ProviderGoogle)
	require.NoError(t, err)

	go func() {
		_ = f.listener.HandleURL(context.Background(), callbackURL(attempt.CorrelationID, "good-code"))
	}()
	require.NoError(t, attempt.Wait(context.Background()))
	assert.Len(t, f.applier.applied(), 1)
}

func TestInitiatorUnsupportedProvider(t *testing.T) {
	f := newBridgeFixture(t)
	i := newTestInitiator(t, f, time.Minute)

	_, err := i.Start(Provider("myspace"))
	assert.ErrorIs(t, err, ErrUnsupportedProvider)
}

func TestInitiatorClientSideTimeout(t *testing.T) {
	f := newBridgeFixture(t)
	i := newTestInitiator(t, f, 30*time.Millisecond)

	attempt, err := i.Start(ProviderGoogle)
	require.NoError(t, err)
	assert.ErrorIs(t, attempt.Wait(context.Background()), ErrExpiredRequest)

	// the timeout drove the registry terminal: a late callback cannot revive
	// the attempt
	err = f.listener.HandleURL(context.Background(), callbackURL(attempt.CorrelationID, "late-code"))
	assert.ErrorIs(t, err, ErrExpiredRequest)
	assert.Empty(t, f.identity.redeemed)
}

func TestInitiatorCancelPreventsLateSuccess(t *testing.T) {
	f := newBridgeFixture(t)
	i := newTestInitiator(t, f, time.Minute)

	attempt, err := i.Start(ProviderGoogle)
	require.NoError(t, err)
	attempt.Cancel()

	err = f.listener.HandleURL(context.Background(), callbackURL(attempt.CorrelationID, "good-code"))
	assert.ErrorIs(t, err, ErrExpiredRequest)
	assert.Empty(t, f.identity.redeemed, "cancelled attempt must never exchange")
	assert.Empty(t, f.applier.applied())
}

func TestInitiatorContextCancellation(t *testing.T) {
	f := newBridgeFixture(t)
	i := newTestInitiator(t, f, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	attempt, err := i.Start(ProviderGoogle)
	require.NoError(t, err)

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	assert.ErrorIs(t, attempt.Wait(ctx), ErrCancelled)
	_, ok := f.registry.Pending()
	assert.False(t, ok)
}

func TestInitiatorSettlesOnce(t *testing.T) {
	f := newBridgeFixture(t)
	i := newTestInitiator(t, f, time.Minute)

	attempt, err := i.Start(ProviderGoogle)
	require.NoError(t, err)
	require.NoError(t, f.listener.HandleURL(context.Background(), callbackURL(attempt.CorrelationID, "good-code")))
	require.NoError(t, attempt.Wait(context.Background()))

	// a later cancel is a no-op on an already settled attempt
	attempt.Cancel()
	assert.Len(t, f.applier.applied(), 1)
}

func TestBridgeStartAndCancel(t *testing.T) {
	cfg := testConfig()
	cfg.Handoff = HandoffSignInToken
	b, err := NewBridge(cfg, &fakeIdentity{}, &fakeApplier{})
	require.NoError(t, err)
	b.launcher.open = func(string) error { return nil }

	cid, err := b.StartOAuth(ProviderGitHub)
	require.NoError(t, err)
	pending, ok := b.Pending()
	require.True(t, ok)
	assert.Equal(t, cid, pending.CorrelationID)

	require.NoError(t, b.Cancel(cid))
	_, ok = b.Pending()
	assert.False(t, ok)

	// the attempt is reaped once its waiter observes the cancellation
	assert.Eventually(t, func() bool {
		return errors.Is(b.Cancel(cid), ErrExpiredRequest)
	}, time.Second, 10*time.Millisecond)
}

func TestBridgeConfigurationError(t *testing.T) {
	_, err := NewBridge(Config{}, &fakeIdentity{}, &fakeApplier{})
	assert.ErrorIs(t, err, ErrConfiguration)
}
