package services

import (
	"go_jsoning_server/internal/domain/iface"
	configs "go_jsoning_server/internal/infra/config"

	"github.com/google/wire"
)

var ServiceSet = wire.NewSet(
	NewRuleEngine,
	NewRuleMatchService,
	wire.Bind(new(iface.RuleMatchService), new(*RuleMatchService)),
	NewResourceService,
	wire.Bind(new(iface.ResourceService), new(*ResourceService)),
)

// NewRuleEngine 未配置规则文件时返回空引擎
func NewRuleEngine(c *configs.Config) *Engine {
	if c.Rules.File == "" {
		return NewEngineFromDescriptions(nil)
	}
	return NewEngineFromFile(c.Rules.File)
}
