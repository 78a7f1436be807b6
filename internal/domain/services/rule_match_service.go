package services

import (
	"sync/atomic"

	"go_jsoning_server/internal/domain/iface"
	model "go_jsoning_server/internal/domain/model/intercept_rule"
	"go_jsoning_server/utils"
)

// RuleMatchService 持有当前生效的 Engine，reload 时整体替换，不修改已有 Engine
type RuleMatchService struct {
	engine atomic.Pointer[Engine]
}

var _ iface.RuleMatchService = (*RuleMatchService)(nil)

func NewRuleMatchService(engine *Engine) *RuleMatchService {
	s := &RuleMatchService{}
	if engine == nil {
		engine = &Engine{}
	}
	s.engine.Store(engine)
	return s
}

func (s *RuleMatchService) MatchRule(req model.RequestInfo) *model.Rule {
	return s.engine.Load().Match(req)
}

// Reload 失败时同样替换为空引擎，并把错误返回给调用方
func (s *RuleMatchService) Reload(path string) error {
	e, err := buildEngineFromFile(path)
	if err != nil {
		utils.GetLogger().Warnf("rule reload failed, interception disabled: %v", err)
	}
	s.Swap(e)
	return err
}

func (s *RuleMatchService) Swap(e *Engine) {
	s.engine.Store(e)
}

func (s *RuleMatchService) RuleCount() int {
	return s.engine.Load().RuleCount()
}

func (s *RuleMatchService) Engine() *Engine {
	return s.engine.Load()
}
