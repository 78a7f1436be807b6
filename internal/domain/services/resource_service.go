package services

import (
	"context"
	"fmt"

	"go_jsoning_server/internal/domain/iface"
	"go_jsoning_server/internal/domain/model/resource"
	"go_jsoning_server/internal/infra/repo"
)

type ResourceService struct {
	itemRepo repo.ItemRepositoryIface
}

var _ iface.ResourceService = (*ResourceService)(nil)

func NewResourceService(itemRepo repo.ItemRepositoryIface) *ResourceService {
	return &ResourceService{
		itemRepo: itemRepo,
	}
}

// List 列出集合并分页，page/limit 为原始查询参数
func (s *ResourceService) List(ctx context.Context, name string, page, limit *string) ([]resource.Item, error) {
	items, err := s.itemRepo.ListItems(ctx, name)
	if err != nil {
		return nil, err
	}
	return resource.Paginate(items, page, limit), nil
}

func (s *ResourceService) Get(ctx context.Context, name, id string) (resource.Item, error) {
	return s.itemRepo.FindItem(ctx, name, id)
}

// Create 创建 item，缺少 id 时生成；集合不存在时自动创建
func (s *ResourceService) Create(ctx context.Context, name string, body any) (resource.Item, error) {
	item, ok := resource.AsItem(body)
	if !ok {
		return nil, resource.ErrInvalidItem
	}
	item = item.Clone()

	if err := s.ensureID(item); err != nil {
		return nil, err
	}
	if err := s.itemRepo.CreateItem(ctx, name, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Replace 整体替换，id 以路径参数为准
func (s *ResourceService) Replace(ctx context.Context, name, id string, body any) (resource.Item, error) {
	item, ok := resource.AsItem(body)
	if !ok {
		return nil, resource.ErrInvalidItem
	}
	item = item.Clone()
	item[resource.IDField] = id

	if err := s.itemRepo.ReplaceItem(ctx, name, id, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Patch 浅合并，id 不可被修改
func (s *ResourceService) Patch(ctx context.Context, name, id string, body any) (resource.Item, error) {
	patch, ok := resource.AsItem(body)
	if !ok {
		return nil, resource.ErrInvalidItem
	}

	existing, err := s.itemRepo.FindItem(ctx, name, id)
	if err != nil {
		return nil, err
	}
	merged := existing.Merge(patch)
	merged[resource.IDField] = id

	if err := s.itemRepo.ReplaceItem(ctx, name, id, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

func (s *ResourceService) Delete(ctx context.Context, name, id string) (resource.Item, error) {
	return s.itemRepo.DeleteItem(ctx, name, id)
}

// ensureID 缺失、null 或空字符串的 id 自动生成；其他非字符串 id 不合法
func (s *ResourceService) ensureID(item resource.Item) error {
	raw, present := item[resource.IDField]
	if present && raw != nil {
		id, isString := raw.(string)
		if !isString {
			return fmt.Errorf("%w: id must be a string", resource.ErrInvalidItem)
		}
		if id != "" {
			return nil
		}
	}

	id, err := resource.NewID()
	if err != nil {
		return err
	}
	item[resource.IDField] = id
	return nil
}
