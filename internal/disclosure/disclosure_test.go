package disclosure

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/dvpguard/pkg/share"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return New(rdb)
}

func TestAppendAndForTransaction(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	store := newTestStore(t)

	rec := &share.ShareRecord{ID: "rec-1", TxID: "tx-1", Section: "pricing", ToCompany: "auditor"}
	require.NoError(store.Append(ctx, rec))

	got, err := store.ForTransaction(ctx, "tx-1", "")
	require.NoError(err)
	require.Len(got, 1)
	require.Equal("rec-1", got[0].ID)
}

func TestAppendRejectsDuplicateID(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	store := newTestStore(t)

	rec := &share.ShareRecord{ID: "rec-dup", TxID: "tx-1"}
	require.NoError(store.Append(ctx, rec))

	err := store.Append(ctx, rec)
	require.ErrorIs(err, ErrExists)
}

func TestForTransactionFiltersBySection(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(store.Append(ctx, &share.ShareRecord{ID: "r1", TxID: "tx-2", Section: "pricing"}))
	require.NoError(store.Append(ctx, &share.ShareRecord{ID: "r2", TxID: "tx-2", Section: "logistics"}))

	pricing, err := store.ForTransaction(ctx, "tx-2", "pricing")
	require.NoError(err)
	require.Len(pricing, 1)
	require.Equal("r1", pricing[0].ID)

	all, err := store.ForTransaction(ctx, "tx-2", "")
	require.NoError(err)
	require.Len(all, 2)
}

func TestForTransactionUnknownTxReturnsEmpty(t *testing.T) {
	require := require.New(t)
	store := newTestStore(t)

	got, err := store.ForTransaction(context.Background(), "no-such-tx", "")
	require.NoError(err)
	require.Empty(got)
}
