package ledger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	s := Snapshot{"a@b.c": 100}

	// stored previous value
	assert.EqualValues(t, 75, Diff(s, "a@b.c", 175))

	// no prior entry means a zero baseline
	assert.EqualValues(t, 230, Diff(s, "new@b.c", 230))

	// balances can legitimately go down (account reset)
	assert.EqualValues(t, -40, Diff(s, "a@b.c", 60))
}

func TestFileStore_MissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "previous_points_data.json"))

	s, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, s)
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "previous_points_data.json")
	store := NewFileStore(path)

	want := Snapshot{"A": 100, "B": 250}
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// save(load()) is a no-op on the contents
	require.NoError(t, store.Save(ctx, got))
	again, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, again)
}

func TestFileStore_SaveReplacesWholesale(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.json")
	store := NewFileStore(path)

	require.NoError(t, store.Save(ctx, Snapshot{"A": 100, "B": 250}))
	require.NoError(t, store.Save(ctx, Snapshot{"A": 175}))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Snapshot{"A": 175}, got)
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileStore(path).Load(context.Background())
	assert.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	s, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, s)

	require.NoError(t, store.Save(ctx, Snapshot{"A": 1}))

	// mutating a loaded snapshot must not leak into the store
	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	loaded["A"] = 999

	fresh, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Snapshot{"A": 1}, fresh)
}
