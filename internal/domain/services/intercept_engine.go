package services

import (
	model "go_jsoning_server/internal/domain/model/intercept_rule"
	"go_jsoning_server/internal/infra/rulesource"
	"go_jsoning_server/utils"
)

// Engine 不可变的规则引擎。构建失败时 rules 为空，Match 永远返回 nil。
type Engine struct {
	rules  *model.RuleSet
	source string
}

// NewEngineFromDescriptions 编译内联规则，失败只记日志
func NewEngineFromDescriptions(descs []model.RuleDescription) *Engine {
	rules, err := model.NewRuleSet(descs)
	if err != nil {
		utils.GetLogger().Warnf("failed to compile inline rules, interception disabled: %v", err)
		return &Engine{source: "inline"}
	}
	return &Engine{rules: rules, source: "inline"}
}

// NewEngineFromFile 从 JSON/YAML 规则文件构建，读取或编译失败只记日志
func NewEngineFromFile(path string) *Engine {
	e, err := buildEngineFromFile(path)
	if err != nil {
		utils.GetLogger().Warnf("failed to load rules, interception disabled: %v", err)
	}
	return e
}

func buildEngineFromFile(path string) (*Engine, error) {
	rules, err := rulesource.CompileFile(path)
	if err != nil {
		return &Engine{source: path}, err
	}
	utils.GetLogger().Infof("loaded %d interception rules from %s", rules.Len(), path)
	return &Engine{rules: rules, source: path}, nil
}

func (e *Engine) Match(req model.RequestInfo) *model.Rule {
	if e == nil {
		return nil
	}
	return e.rules.Match(req)
}

func (e *Engine) RuleCount() int {
	if e == nil {
		return 0
	}
	return e.rules.Len()
}

func (e *Engine) Source() string {
	if e == nil {
		return ""
	}
	return e.source
}

// Outcome 命中结果分类，用于日志和指标
func Outcome(rule *model.Rule) string {
	switch {
	case rule == nil:
		return model.OutcomeNone
	case rule.Stops():
		return model.OutcomeStop
	default:
		return model.OutcomeDecorate
	}
}
