package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/kashguard/go-payment-intents/internal/infra/storage"
	"github.com/kashguard/go-payment-intents/internal/intent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	testStoreContract(t, storage.NewMemoryStore(), "")
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	pi := newIntent("copy", "Vendor X", time.Now())
	require.NoError(t, store.Create(ctx, pi))

	pi.Status = intent.StatusCompleted

	got, err := store.Get(ctx, "copy")
	require.NoError(t, err)
	assert.Equal(t, intent.StatusPending, got.Status)

	got.Description = "changed"
	again, err := store.Get(ctx, "copy")
	require.NoError(t, err)
	assert.Equal(t, "3 items", again.Description)
	assert.Equal(t, 1, store.Len())
}
