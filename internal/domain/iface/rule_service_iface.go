package iface

import (
	"context"

	model "go_jsoning_server/internal/domain/model/intercept_rule"
	"go_jsoning_server/internal/domain/model/resource"
)

// RuleMatchService 规则匹配服务接口
type RuleMatchService interface {
	// MatchRule 返回首个命中的规则，没有规则或未命中返回 nil
	MatchRule(req model.RequestInfo) *model.Rule
	// Reload 从规则文件重新构建并原子替换；失败时装入空规则集
	Reload(path string) error
	RuleCount() int
}

// ResourceService 资源服务接口，body 为请求体解析后的 JSON 值
type ResourceService interface {
	List(ctx context.Context, name string, page, limit *string) ([]resource.Item, error)
	Get(ctx context.Context, name, id string) (resource.Item, error)
	Create(ctx context.Context, name string, body any) (resource.Item, error)
	Replace(ctx context.Context, name, id string, body any) (resource.Item, error)
	Patch(ctx context.Context, name, id string, body any) (resource.Item, error)
	Delete(ctx context.Context, name, id string) (resource.Item, error)
}
