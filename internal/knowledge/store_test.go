package knowledge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), ":memory:", true)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpen_SeedsOnce(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(defaultEntries), n)
}

func TestStore_ByCategory(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	entries, err := store.ByCategory(ctx, CategoryProgramming)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, e := range entries {
		assert.Equal(t, CategoryProgramming, e.Category)
	}
}

func TestStore_ByCategoryUnknown(t *testing.T) {
	store := openTestStore(t)

	entries, err := store.ByCategory(context.Background(), "cooking")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_AllSpansCategories(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	entries, err := store.All(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, len(defaultEntries))

	cats, err := store.Categories(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{CategoryData, CategoryDesign, CategoryProgramming}, cats)
}

func TestStore_Insert(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	e, err := store.Insert(ctx, Entry{
		Category: CategoryProgramming,
		Title:    "Profiling",
		Content:  "pprof first, guesses second",
		Topics:   []string{"performance"},
	})
	require.NoError(t, err)
	assert.NotZero(t, e.ID)

	entries, err := store.ByCategory(ctx, CategoryProgramming)
	require.NoError(t, err)

	var found bool
	for _, got := range entries {
		if got.ID == e.ID {
			found = true
			assert.Equal(t, []string{"performance"}, got.Topics)
		}
	}
	assert.True(t, found, "inserted entry not returned by ByCategory")
}

func TestStore_UnseededIsEmpty(t *testing.T) {
	store, err := Open(context.Background(), ":memory:", false)
	require.NoError(t, err)
	defer store.Close()

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
