package preference

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agent-console/internal/domain/repository"
)

type tablePrefs struct {
	PageSize int    `json:"page_size"`
	Density  string `json:"density"`
}

func runStoreContract(t *testing.T, store repository.PreferenceStore) {
	t.Helper()
	ctx := context.Background()

	var got tablePrefs
	found, err := store.Get(ctx, "user:u1", "table", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Put(ctx, "user:u1", "table", tablePrefs{PageSize: 25, Density: "compact"}))
	found, err = store.Get(ctx, "user:u1", "table", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, tablePrefs{PageSize: 25, Density: "compact"}, got)

	// 命名空间隔离
	var other tablePrefs
	found, err = store.Get(ctx, "user:u2", "table", &other)
	require.NoError(t, err)
	assert.False(t, found)

	// 最后写入者胜出
	require.NoError(t, store.Put(ctx, "user:u1", "table", tablePrefs{PageSize: 50, Density: "comfortable"}))
	found, err = store.Get(ctx, "user:u1", "table", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 50, got.PageSize)

	require.NoError(t, store.Delete(ctx, "user:u1", "table"))
	found, err = store.Get(ctx, "user:u1", "table", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Delete(ctx, "missing", "missing"))
}

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, NewMemoryStore())
}

func TestBoltStore(t *testing.T) {
	store, err := OpenBoltStore(filepath.Join(t.TempDir(), "prefs", "preferences.db"))
	require.NoError(t, err)
	defer store.Close()

	runStoreContract(t, store)
}

func TestBoltStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.db")
	ctx := context.Background()

	store, err := OpenBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "org:o1", "category_colors", map[string]string{"Support": "#4F46E5"}))
	require.NoError(t, store.Close())

	reopened, err := OpenBoltStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	var colors map[string]string
	found, err := reopened.Get(ctx, "org:o1", "category_colors", &colors)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "#4F46E5", colors["Support"])
}

func TestMemorySequencer(t *testing.T) {
	ctx := context.Background()
	seq := NewMemorySequencer()

	cur, err := seq.Current(ctx, "executive")
	require.NoError(t, err)
	assert.Zero(t, cur)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = seq.Next(ctx, "executive")
		}()
	}
	wg.Wait()

	cur, err = seq.Current(ctx, "executive")
	require.NoError(t, err)
	assert.Equal(t, uint64(50), cur)

	other, err := seq.Next(ctx, "usage")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), other)
}
