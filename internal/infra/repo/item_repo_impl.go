package repo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go_jsoning_server/internal/domain/model/resource"
	configs "go_jsoning_server/internal/infra/config"
	"go_jsoning_server/internal/infra/storage"
	"go_jsoning_server/utils"

	"github.com/avast/retry-go/v4"
	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/singleflight"
)

// itemRepoImpl 实现了 ItemRepositoryIface (singleflight 合并并发读, retry-go 重试写, ants pool 异步回填缓存)
type itemRepoImpl struct {
	storage  storage.ItemStorageIface
	cache    storage.ItemCacheIface
	config   *configs.RepoConfig
	taskPool *ants.Pool
	sfGroup  singleflight.Group

	// 写操作持有 mu 写锁并递增 generation；回填在读锁下比较 generation，
	// 读取之后发生过写入的回填直接丢弃
	mu         sync.RWMutex
	generation atomic.Uint64
}

// 确保 itemRepoImpl 实现了 ItemRepositoryIface 接口 (编译时检查)
var _ ItemRepositoryIface = (*itemRepoImpl)(nil)

func NewItemRepoImpl(st storage.ItemStorageIface, cache storage.ItemCacheIface, config *configs.RepoConfig) (ItemRepositoryIface, func(), error) {
	taskPool, err := ants.NewPool(config.WarmPoolSize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create ants pool: %w", err)
	}

	repo := &itemRepoImpl{
		storage:  st,
		cache:    cache,
		config:   config,
		taskPool: taskPool,
	}
	return repo, taskPool.Release, nil
}

// ListItems 列出集合，并发的相同查询只访问一次存储
func (r *itemRepoImpl) ListItems(ctx context.Context, name string) ([]resource.Item, error) {
	gen := r.generation.Load()
	data, err, _ := r.sfGroup.Do("list_items_"+name, func() (interface{}, error) {
		return r.storage.ListItems(ctx, name)
	})
	if err != nil {
		return nil, err
	}

	items := data.([]resource.Item)
	r.warmCache(ctx, gen, name, items)
	return cloneItems(items), nil
}

// FindItem 先查缓存，未命中再查存储
func (r *itemRepoImpl) FindItem(ctx context.Context, name, id string) (resource.Item, error) {
	log := utils.GetLogger()

	item, err := r.cache.GetItemFromCache(ctx, name, id)
	if err == nil {
		log.Debugf("item found in cache: %s/%s", name, id)
		return item, nil
	}
	if !errors.Is(err, storage.ErrCacheMiss) {
		log.Warnf("failed to read item cache %s/%s: %v", name, id, err)
	}

	gen := r.generation.Load()
	// 使用 singleflight 防止缓存击穿
	data, err, _ := r.sfGroup.Do(fmt.Sprintf("find_item_%s/%s", name, id), func() (interface{}, error) {
		return r.storage.GetItem(ctx, name, id)
	})
	if err != nil {
		return nil, err
	}

	item = data.(resource.Item)
	r.warmCache(ctx, gen, name, []resource.Item{item})
	return item.Clone(), nil
}

func (r *itemRepoImpl) CreateItem(ctx context.Context, name string, item resource.Item) error {
	id, _ := item.ID()
	return r.write(ctx, name, id, func() error {
		return r.storage.InsertItem(ctx, name, item)
	})
}

func (r *itemRepoImpl) ReplaceItem(ctx context.Context, name, id string, item resource.Item) error {
	return r.write(ctx, name, id, func() error {
		return r.storage.ReplaceItem(ctx, name, id, item)
	})
}

func (r *itemRepoImpl) DeleteItem(ctx context.Context, name, id string) (resource.Item, error) {
	var removed resource.Item
	err := r.write(ctx, name, id, func() error {
		item, err := r.storage.DeleteItem(ctx, name, id)
		removed = item
		return err
	})
	return removed, err
}

// write 串行执行写操作：重试写存储，然后同步删除缓存
func (r *itemRepoImpl) write(ctx context.Context, name, id string, op func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := retry.Do(
		op,
		retry.Attempts(uint(r.config.SaveRetryCount)),
		retry.Delay(r.config.SaveRetryDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.RetryIf(isRetryable),
	)
	if err != nil {
		return err
	}
	r.generation.Add(1)

	if id == "" {
		return nil
	}
	err = retry.Do(
		func() error {
			return r.cache.DeleteItemFromCache(ctx, name, id)
		},
		retry.Attempts(uint(r.config.CacheRetryCount)),
		retry.Delay(r.config.CacheRetryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		utils.GetLogger().Warnf("failed to invalidate item cache %s/%s: %v", name, id, err)
	}
	return nil
}

// warmCache 异步回填缓存；gen 是读取存储之前的 generation
func (r *itemRepoImpl) warmCache(ctx context.Context, gen uint64, name string, items []resource.Item) {
	if len(items) == 0 {
		return
	}
	log := utils.GetLogger()
	bg := context.WithoutCancel(ctx)

	if err := r.taskPool.Submit(func() {
		r.mu.RLock()
		defer r.mu.RUnlock()
		if r.generation.Load() != gen {
			log.Debugf("skip stale cache fill for %s", name)
			return
		}

		err := retry.Do(
			func() error {
				for _, item := range items {
					if err := r.cache.SetItemToCache(bg, name, item); err != nil {
						return err
					}
				}
				return nil
			},
			retry.Attempts(uint(r.config.CacheRetryCount)),
			retry.Delay(r.config.CacheRetryDelay),
			retry.LastErrorOnly(true),
		)
		if err != nil {
			log.Warnf("async cache update failed: %v", err)
		}
	}); err != nil {
		log.Warnf("failed to submit cache update task: %v", err)
	}
}

// isRetryable 业务错误不重试
func isRetryable(err error) bool {
	return !errors.Is(err, resource.ErrAlreadyExists) &&
		!errors.Is(err, resource.ErrNotFound) &&
		!errors.Is(err, resource.ErrResourceNotFound) &&
		!errors.Is(err, resource.ErrInvalidItem)
}

func cloneItems(items []resource.Item) []resource.Item {
	out := make([]resource.Item, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}
