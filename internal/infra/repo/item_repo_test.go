package repo

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go_jsoning_server/internal/domain/model/resource"
	configs "go_jsoning_server/internal/infra/config"
	"go_jsoning_server/internal/infra/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapCache struct {
	mu    sync.Mutex
	items map[string]resource.Item
}

func newMapCache() *mapCache {
	return &mapCache{items: make(map[string]resource.Item)}
}

func (c *mapCache) GetItemFromCache(_ context.Context, name, id string) (resource.Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[name+"/"+id]
	if !ok {
		return nil, storage.ErrCacheMiss
	}
	return item.Clone(), nil
}

func (c *mapCache) SetItemToCache(_ context.Context, name string, item resource.Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, _ := item.ID()
	c.items[name+"/"+id] = item.Clone()
	return nil
}

func (c *mapCache) DeleteItemFromCache(_ context.Context, name, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, name+"/"+id)
	return nil
}

func (c *mapCache) has(name, id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[name+"/"+id]
	return ok
}

// flakyStorage 前 failures 次写入返回临时错误
type flakyStorage struct {
	storage.ItemStorageIface
	mu       sync.Mutex
	failures int
	calls    int
}

func (s *flakyStorage) InsertItem(ctx context.Context, name string, item resource.Item) error {
	s.mu.Lock()
	s.calls++
	fail := s.calls <= s.failures
	s.mu.Unlock()
	if fail {
		return errors.New("disk busy")
	}
	return s.ItemStorageIface.InsertItem(ctx, name, item)
}

func testRepoConfig() *configs.RepoConfig {
	return &configs.RepoConfig{
		SaveRetryCount:  3,
		SaveRetryDelay:  time.Millisecond,
		CacheRetryCount: 2,
		CacheRetryDelay: time.Millisecond,
		WarmPoolSize:    4,
	}
}

func newTestRepo(t *testing.T, st storage.ItemStorageIface, cache storage.ItemCacheIface) ItemRepositoryIface {
	r, cleanup, err := NewItemRepoImpl(st, cache, testRepoConfig())
	require.NoError(t, err)
	t.Cleanup(cleanup)
	return r
}

func TestItemRepoReadThroughCache(t *testing.T) {
	ctx := context.Background()
	cache := newMapCache()
	st := storage.NewMemoryItemStorage(map[string][]resource.Item{
		"posts": {{"id": "1", "title": "hello"}},
	})
	r := newTestRepo(t, st, cache)

	item, err := r.FindItem(ctx, "posts", "1")
	require.NoError(t, err)
	assert.Equal(t, "hello", item["title"])

	assert.Eventually(t, func() bool { return cache.has("posts", "1") }, time.Second, 5*time.Millisecond)

	_, err = r.FindItem(ctx, "posts", "missing")
	assert.ErrorIs(t, err, resource.ErrNotFound)
}

func TestItemRepoWriteInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	cache := newMapCache()
	st := storage.NewMemoryItemStorage(map[string][]resource.Item{
		"posts": {{"id": "1", "title": "hello"}},
	})
	r := newTestRepo(t, st, cache)

	_, err := r.ListItems(ctx, "posts")
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return cache.has("posts", "1") }, time.Second, 5*time.Millisecond)

	require.NoError(t, r.ReplaceItem(ctx, "posts", "1", resource.Item{"id": "1", "title": "updated"}))
	assert.False(t, cache.has("posts", "1"))

	item, err := r.FindItem(ctx, "posts", "1")
	require.NoError(t, err)
	assert.Equal(t, "updated", item["title"])

	removed, err := r.DeleteItem(ctx, "posts", "1")
	require.NoError(t, err)
	assert.Equal(t, "updated", removed["title"])
	assert.False(t, cache.has("posts", "1"))

	_, err = r.FindItem(ctx, "posts", "1")
	assert.ErrorIs(t, err, resource.ErrNotFound)
}

func TestItemRepoRetriesTransientWriteErrors(t *testing.T) {
	ctx := context.Background()
	st := &flakyStorage{ItemStorageIface: storage.NewMemoryItemStorage(nil), failures: 2}
	r := newTestRepo(t, st, storage.NewNoopItemCache())

	require.NoError(t, r.CreateItem(ctx, "posts", resource.Item{"id": "1"}))
	assert.Equal(t, 3, st.calls)

	st.failures = 10
	st.calls = 0
	err := r.CreateItem(ctx, "posts", resource.Item{"id": "2"})
	require.Error(t, err)
	assert.Equal(t, "disk busy", err.Error())
	assert.Equal(t, 3, st.calls)
}

func TestItemRepoDoesNotRetryDomainErrors(t *testing.T) {
	ctx := context.Background()
	st := &flakyStorage{ItemStorageIface: storage.NewMemoryItemStorage(nil)}
	r := newTestRepo(t, st, storage.NewNoopItemCache())

	require.NoError(t, r.CreateItem(ctx, "posts", resource.Item{"id": "1"}))
	st.calls = 0

	err := r.CreateItem(ctx, "posts", resource.Item{"id": "1"})
	assert.ErrorIs(t, err, resource.ErrAlreadyExists)
	assert.Equal(t, 1, st.calls)
}

func TestItemRepoListReturnsCopies(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryItemStorage(map[string][]resource.Item{
		"posts": {{"id": "1", "title": "hello"}},
	})
	r := newTestRepo(t, st, storage.NewNoopItemCache())

	items, err := r.ListItems(ctx, "posts")
	require.NoError(t, err)
	items[0]["title"] = "changed"

	items, err = r.ListItems(ctx, "posts")
	require.NoError(t, err)
	assert.Equal(t, "hello", items[0]["title"])

	_, err = r.ListItems(ctx, "missing")
	assert.ErrorIs(t, err, resource.ErrResourceNotFound)
}

func TestItemRepoSkipsStaleFill(t *testing.T) {
	cache := newMapCache()
	repo, cleanup, err := NewItemRepoImpl(storage.NewMemoryItemStorage(nil), cache, testRepoConfig())
	require.NoError(t, err)
	defer cleanup()
	r := repo.(*itemRepoImpl)

	gen := r.generation.Load()
	r.generation.Add(1)
	r.warmCache(context.Background(), gen, "posts", []resource.Item{{"id": "1"}})

	time.Sleep(50 * time.Millisecond)
	assert.False(t, cache.has("posts", "1"))
}
