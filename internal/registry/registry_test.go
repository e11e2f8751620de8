package registry

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/dvpguard/pkg/envelope"
	"github.com/luxfi/dvpguard/pkg/identity"
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

func TestRegisterAndLookupCompany(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	store := newTestStore(t)

	ident, err := identity.Generate("seller")
	require.NoError(err)

	require.NoError(store.RegisterCompany(ctx, ident))

	got, err := store.LookupCompany(ctx, "seller")
	require.NoError(err)
	require.Equal("seller", got.Name)
	require.Nil(got.SigningPrivatePEM)
}

func TestLookupCompanyMissingReturnsNil(t *testing.T) {
	require := require.New(t)
	store := newTestStore(t)

	got, err := store.LookupCompany(context.Background(), "nobody")
	require.NoError(err)
	require.Nil(got)
}

func TestPutTransactionIfAbsentRejectsDuplicate(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	store := newTestStore(t)

	pt := &envelope.ProtectedTransaction{TxID: "tx-1"}
	require.NoError(store.PutTransactionIfAbsent(ctx, pt))

	err := store.PutTransactionIfAbsent(ctx, pt)
	require.ErrorIs(err, ErrTransactionExists)
}

func TestGetTransactionMissingReturnsNil(t *testing.T) {
	require := require.New(t)
	store := newTestStore(t)

	pt, err := store.GetTransaction(context.Background(), "no-such-tx")
	require.NoError(err)
	require.Nil(pt)
}

func TestSetBuyerSignatureMergesIntoStoredTransaction(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	store := newTestStore(t)

	pt := &envelope.ProtectedTransaction{TxID: "tx-2"}
	require.NoError(store.PutTransactionIfAbsent(ctx, pt))

	updated, err := store.SetBuyerSignature(ctx, "tx-2", "sig-bytes")
	require.NoError(err)
	require.NotNil(updated.SigBuyer)
	require.Equal("sig-bytes", *updated.SigBuyer)

	fetched, err := store.GetTransaction(ctx, "tx-2")
	require.NoError(err)
	require.Equal("sig-bytes", *fetched.SigBuyer)
}

func TestSetBuyerSignatureUnknownTxReturnsNil(t *testing.T) {
	require := require.New(t)
	store := newTestStore(t)

	updated, err := store.SetBuyerSignature(context.Background(), "missing", "sig")
	require.NoError(err)
	require.Nil(updated)
}

func TestPutAndListSharesForTransaction(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	store := newTestStore(t)

	rec1 := &share.ShareRecord{ID: "s1", TxID: "tx-3", ToCompany: "auditor"}
	rec2 := &share.ShareRecord{ID: "s2", TxID: "tx-3", ToCompany: "regulator"}
	require.NoError(store.PutShare(ctx, rec1))
	require.NoError(store.PutShare(ctx, rec2))

	shares, err := store.ListShares(ctx, "tx-3")
	require.NoError(err)
	require.Len(shares, 2)

	other, err := store.ListShares(ctx, "tx-does-not-exist")
	require.NoError(err)
	require.Empty(other)
}

func TestListTransactionsScansEverything(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(store.PutTransaction(ctx, &envelope.ProtectedTransaction{TxID: "a"}))
	require.NoError(store.PutTransaction(ctx, &envelope.ProtectedTransaction{TxID: "b"}))

	all, err := store.ListTransactions(ctx)
	require.NoError(err)
	require.Len(all, 2)
}
