package intent_test

import (
	"context"
	"testing"
	"time"

	"github.com/kashguard/go-payment-intents/internal/intent"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweeperExpiresLapsedIntents(t *testing.T) {
	f := newFixture(t, false)

	pi := mustCreate(t, f)
	f.clock.Advance(31 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	sweeper := intent.NewSweeper(f.service, 10*time.Millisecond)
	require.True(t, sweeper.Enabled())

	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		stored, err := f.store.Get(context.Background(), pi.ID)
		return err == nil && stored.Status == intent.StatusExpired
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}

func TestSweeperDisabled(t *testing.T) {
	f := newFixture(t, false)

	sweeper := intent.NewSweeper(f.service, 0)
	assert.False(t, sweeper.Enabled())

	// returns immediately
	sweeper.Run(context.Background())

	var nilSweeper *intent.Sweeper
	assert.False(t, nilSweeper.Enabled())
}

// failingStore fails every compare-and-swap on one intent.
type failingStore struct {
	intent.Store
	failID string
}

var errStoreUnavailable = errors.New("store unavailable")

func (s *failingStore) CompareAndSwap(ctx context.Context, id string, expected intent.Status, mutate intent.MutateFunc) (*intent.PaymentIntent, bool, error) {
	if id == s.failID {
		return nil, false, errStoreUnavailable
	}
	return s.Store.CompareAndSwap(ctx, id, expected, mutate)
}

func TestExpireStaleContinuesPastFailures(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)

	broken := mustCreate(t, f)
	first := mustCreate(t, f)
	second := mustCreate(t, f)
	f.clock.Advance(31 * time.Minute)

	service := f.newServiceWithStore(&failingStore{Store: f.store, failID: broken.ID})

	n, err := service.ExpireStale(ctx)
	assert.ErrorIs(t, err, errStoreUnavailable)
	assert.Equal(t, 2, n)

	for _, id := range []string{first.ID, second.ID} {
		stored, err := f.store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, intent.StatusExpired, stored.Status)
	}

	stored, err := f.store.Get(ctx, broken.ID)
	require.NoError(t, err)
	assert.Equal(t, intent.StatusPending, stored.Status)
}
