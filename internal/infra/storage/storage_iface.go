package storage

import (
	"context"
	"errors"

	"go_jsoning_server/internal/domain/model/resource"
)

var ErrCacheMiss = errors.New("cache miss")

// ItemStorageIface 资源存储：资源名 -> 有序 item 集合，每次写入即持久化
type ItemStorageIface interface {
	// ListItems 按插入顺序返回集合，集合不存在返回 resource.ErrResourceNotFound
	ListItems(ctx context.Context, name string) ([]resource.Item, error)
	GetItem(ctx context.Context, name, id string) (resource.Item, error)
	// InsertItem 集合不存在时自动创建；id 重复返回 resource.ErrAlreadyExists
	InsertItem(ctx context.Context, name string, item resource.Item) error
	// ReplaceItem 原位替换，保持在集合中的位置
	ReplaceItem(ctx context.Context, name, id string, item resource.Item) error
	DeleteItem(ctx context.Context, name, id string) (resource.Item, error)
	Close() error
}

// ItemCacheIface 单个 item 的缓存
type ItemCacheIface interface {
	GetItemFromCache(ctx context.Context, name, id string) (resource.Item, error)
	SetItemToCache(ctx context.Context, name string, item resource.Item) error
	DeleteItemFromCache(ctx context.Context, name, id string) error
}
