package repo

import (
	"context"

	"go_jsoning_server/internal/domain/model/resource"
)

// ItemRepositoryIface 资源仓库：存储为准，缓存只加速单个 item 的读取
type ItemRepositoryIface interface {
	ListItems(ctx context.Context, name string) ([]resource.Item, error)
	FindItem(ctx context.Context, name, id string) (resource.Item, error)
	CreateItem(ctx context.Context, name string, item resource.Item) error
	ReplaceItem(ctx context.Context, name, id string, item resource.Item) error
	DeleteItem(ctx context.Context, name, id string) (resource.Item, error)
}
