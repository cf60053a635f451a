package shared

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-bff/internal/platform/httpx"
)

func newStore(t *testing.T) (*IdempotencyStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewIdempotencyStore(client, time.Hour), mr
}

func TestIdempotencyStoreRejectsDuplicates(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()
	key := "6f1c1a8e-1f3b-4f5e-9d61-3b1f0c2a9e77"

	require.NoError(t, store.CheckAndInsert(ctx, key, "payments"))
	err := store.CheckAndInsert(ctx, key, "payments")
	require.ErrorIs(t, err, ErrIdempotencyConflict)
	require.ErrorIs(t, err, httpx.ErrDuplicate)

	require.NoError(t, store.CheckAndInsert(ctx, key, "other"))
	require.Equal(t, time.Hour, mr.TTL("idempotency:payments:"+key))

	require.NoError(t, store.Delete(ctx, key, "payments"))
	require.NoError(t, store.CheckAndInsert(ctx, key, "payments"))
}

func TestIdempotencyKeyExpires(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.CheckAndInsert(ctx, "k", "payments"))
	mr.FastForward(2 * time.Hour)
	require.NoError(t, store.CheckAndInsert(ctx, "k", "payments"))
}

func TestIdempotencyStoreValidatesInput(t *testing.T) {
	store, _ := newStore(t)
	require.Error(t, store.CheckAndInsert(context.Background(), "", "payments"))
	require.Error(t, store.CheckAndInsert(context.Background(), "k", ""))

	var nilStore *IdempotencyStore
	require.Error(t, nilStore.CheckAndInsert(context.Background(), "k", "payments"))
	require.NoError(t, nilStore.Delete(context.Background(), "k", "payments"))
}

func TestParseIdempotencyKey(t *testing.T) {
	key, err := ParseIdempotencyKey("")
	require.NoError(t, err)
	require.Empty(t, key)

	key, err = ParseIdempotencyKey(" 6F1C1A8E-1F3B-4F5E-9D61-3B1F0C2A9E77 ")
	require.NoError(t, err)
	require.Equal(t, "6f1c1a8e-1f3b-4f5e-9d61-3b1f0c2a9e77", key)

	_, err = ParseIdempotencyKey("not-a-uuid")
	require.ErrorIs(t, err, httpx.ErrInvalidArgument)
}

func TestParsePage(t *testing.T) {
	page, err := ParsePage(httptest.NewRequest("GET", "/x", nil))
	require.NoError(t, err)
	require.Equal(t, Page{Limit: DefaultPageLimit}, page)

	page, err = ParsePage(httptest.NewRequest("GET", "/x?limit=10000&start=40", nil))
	require.NoError(t, err)
	require.Equal(t, Page{Limit: MaxPageLimit, Start: 40}, page)

	_, err = ParsePage(httptest.NewRequest("GET", "/x?limit=-1", nil))
	require.ErrorIs(t, err, httpx.ErrInvalidArgument)

	_, err = ParsePage(httptest.NewRequest("GET", "/x?start=abc", nil))
	require.ErrorIs(t, err, httpx.ErrInvalidArgument)
}
