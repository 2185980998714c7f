package snapshot

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/bankledger/internal/usecase"
)

func TestIdempotencyStore_ClaimUpdateReplay(t *testing.T) {
	ctx := context.Background()
	store := NewIdempotencyStore()

	exists, _, err := store.CheckAndSet(ctx, "alice:/accounts/deposit:k1", nil, time.Hour)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, value, err := store.CheckAndSet(ctx, "alice:/accounts/deposit:k1", nil, time.Hour)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, usecase.IdempotencyPending, string(value))

	require.NoError(t, store.Update(ctx, "alice:/accounts/deposit:k1", []byte(`{"success":true}`), time.Hour))

	exists, value, err = store.CheckAndSet(ctx, "alice:/accounts/deposit:k1", nil, time.Hour)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, `{"success":true}`, string(value))
}

func TestIdempotencyStore_ReleaseAndExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewIdempotencyStore()
	store.now = func() time.Time { return now }

	_, _, err := store.CheckAndSet(ctx, "released", nil, time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, "released"))

	exists, _, err := store.CheckAndSet(ctx, "released", nil, time.Hour)
	require.NoError(t, err)
	assert.False(t, exists, "released key can be claimed again")

	_, _, err = store.CheckAndSet(ctx, "expiring", []byte("done"), time.Minute)
	require.NoError(t, err)

	now = now.Add(time.Minute)
	exists, _, err = store.CheckAndSet(ctx, "expiring", nil, time.Minute)
	require.NoError(t, err)
	assert.False(t, exists, "expired key can be claimed again")
}

func TestIdempotencyStore_ConcurrentClaims(t *testing.T) {
	ctx := context.Background()
	store := NewIdempotencyStore()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		claimed int
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			exists, _, err := store.CheckAndSet(ctx, "same-key", nil, time.Hour)
			if err == nil && !exists {
				mu.Lock()
				claimed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, claimed)
}
