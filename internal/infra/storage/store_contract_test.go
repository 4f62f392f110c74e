package storage_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kashguard/go-payment-intents/internal/intent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIntent(id string, vendor string, createdAt time.Time) *intent.PaymentIntent {
	return &intent.PaymentIntent{
		ID:          id,
		CartID:      "cart-" + id,
		Amount:      intent.Amount{Value: "10000", AssetCode: "USD", AssetScale: 2},
		Description: "3 items",
		VendorLabel: vendor,
		Status:      intent.StatusPending,
		Payload:     `{"intentId":"` + id + `"}`,
		CreatedAt:   createdAt,
		ExpiresAt:   createdAt.Add(30 * time.Minute),
		UpdatedAt:   createdAt,
		CartSnapshot: []intent.CartLine{{
			ProductID:    "sku-1",
			UnitPrice:    intent.Amount{Value: "5000", AssetCode: "USD", AssetScale: 2},
			Quantity:     2,
			LineSubtotal: intent.Amount{Value: "10000", AssetCode: "USD", AssetScale: 2},
		}},
	}
}

func authorize(at time.Time) intent.MutateFunc {
	return func(pi *intent.PaymentIntent) error {
		pi.Status = intent.StatusAuthorized
		pi.AuthorizedAt = &at
		pi.UpdatedAt = at
		return nil
	}
}

// testStoreContract runs the behaviour every Store implementation shares.
func testStoreContract(t *testing.T, store intent.Store, prefix string) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("CreateAndGet", func(t *testing.T) {
		pi := newIntent(prefix+"a", "Vendor X", base)
		require.NoError(t, store.Create(ctx, pi))

		got, err := store.Get(ctx, pi.ID)
		require.NoError(t, err)
		assert.Equal(t, pi.ID, got.ID)
		assert.Equal(t, pi.Amount, got.Amount)
		assert.Equal(t, pi.CartSnapshot, got.CartSnapshot)
		assert.True(t, pi.CreatedAt.Equal(got.CreatedAt))

		err = store.Create(ctx, pi)
		assert.ErrorIs(t, err, intent.ErrAlreadyExists)
	})

	t.Run("GetUnknown", func(t *testing.T) {
		_, err := store.Get(ctx, prefix+"missing")
		assert.ErrorIs(t, err, intent.ErrNotFound)
	})

	t.Run("CompareAndSwap", func(t *testing.T) {
		pi := newIntent(prefix+"b", "Vendor X", base.Add(time.Second))
		require.NoError(t, store.Create(ctx, pi))

		updated, swapped, err := store.CompareAndSwap(ctx, pi.ID, intent.StatusPending, authorize(base.Add(time.Minute)))
		require.NoError(t, err)
		assert.True(t, swapped)
		assert.Equal(t, intent.StatusAuthorized, updated.Status)

		// stale expectation is a no-op returning the current record
		current, swapped, err := store.CompareAndSwap(ctx, pi.ID, intent.StatusPending, authorize(base.Add(2*time.Minute)))
		require.NoError(t, err)
		assert.False(t, swapped)
		assert.Equal(t, intent.StatusAuthorized, current.Status)
		require.NotNil(t, current.AuthorizedAt)
		assert.True(t, base.Add(time.Minute).Equal(*current.AuthorizedAt))

		_, _, err = store.CompareAndSwap(ctx, prefix+"missing", intent.StatusPending, authorize(base))
		assert.ErrorIs(t, err, intent.ErrNotFound)
	})

	t.Run("CompareAndSwapMutateError", func(t *testing.T) {
		pi := newIntent(prefix+"c", "Vendor Y", base.Add(2*time.Second))
		require.NoError(t, store.Create(ctx, pi))

		boom := fmt.Errorf("boom")
		_, swapped, err := store.CompareAndSwap(ctx, pi.ID, intent.StatusPending, func(pi *intent.PaymentIntent) error {
			pi.Status = intent.StatusCompleted
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.False(t, swapped)

		got, err := store.Get(ctx, pi.ID)
		require.NoError(t, err)
		assert.Equal(t, intent.StatusPending, got.Status)
	})

	t.Run("List", func(t *testing.T) {
		all, err := store.List(ctx, intent.Filter{})
		require.NoError(t, err)
		var ids []string
		for _, pi := range all {
			ids = append(ids, pi.ID)
		}
		assert.Subset(t, ids, []string{prefix + "a", prefix + "b", prefix + "c"})

		byVendor, err := store.List(ctx, intent.Filter{Vendor: "Vendor Y"})
		require.NoError(t, err)
		require.Len(t, byVendor, 1)
		assert.Equal(t, prefix+"c", byVendor[0].ID)

		authorized, err := store.List(ctx, intent.Filter{Vendor: "Vendor X", Statuses: []intent.Status{intent.StatusAuthorized}})
		require.NoError(t, err)
		require.Len(t, authorized, 1)
		assert.Equal(t, prefix+"b", authorized[0].ID)

		limited, err := store.List(ctx, intent.Filter{Vendor: "Vendor X", Limit: 1})
		require.NoError(t, err)
		require.Len(t, limited, 1)
		assert.Equal(t, prefix+"a", limited[0].ID)
	})

	t.Run("ConcurrentCompareAndSwap", func(t *testing.T) {
		pi := newIntent(prefix+"race", "Vendor Z", base.Add(3*time.Second))
		require.NoError(t, store.Create(ctx, pi))

		const workers = 16
		var (
			wg   sync.WaitGroup
			wins atomic.Int32
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, swapped, err := store.CompareAndSwap(ctx, pi.ID, intent.StatusPending, authorize(base.Add(time.Duration(i)*time.Second)))
				assert.NoError(t, err)
				if swapped {
					wins.Add(1)
				}
			}(i)
		}
		wg.Wait()

		assert.Equal(t, int32(1), wins.Load())
	})
}
