package keyfile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadOrGenerateCreatesThenReuses(t *testing.T) {
	require := require.New(t)
	store, err := Open(t.TempDir())
	require.NoError(err)

	first, err := store.LoadOrGenerate("seller")
	require.NoError(err)
	require.Equal("seller", first.Name)

	second, err := store.LoadOrGenerate("seller")
	require.NoError(err)
	require.Equal(first, second)
}

func TestLoadMissingReturnsNil(t *testing.T) {
	require := require.New(t)
	store, err := Open(t.TempDir())
	require.NoError(err)

	got, err := store.Load("nobody")
	require.NoError(err)
	require.Nil(got)
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	require := require.New(t)
	store, err := Open(t.TempDir())
	require.NoError(err)

	ident, err := store.LoadOrGenerate("buyer")
	require.NoError(err)

	reopened, err := Open(store.dir)
	require.NoError(err)
	loaded, err := reopened.Load("buyer")
	require.NoError(err)
	require.Equal(ident, loaded)
}

func TestOpenCreatesDirectory(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir() + "/nested/keys"

	_, err := Open(dir)
	require.NoError(err)
}
