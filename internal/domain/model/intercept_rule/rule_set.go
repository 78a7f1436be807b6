package model

import "fmt"

// RuleSet 有序规则集，首个命中者胜出。构建后只读，可在并发请求间共享。
type RuleSet struct {
	rules []*Rule
}

// NewRuleSet 按源顺序编译规则；任一规则编译失败则整体失败
func NewRuleSet(descs []RuleDescription) (*RuleSet, error) {
	rules := make([]*Rule, 0, len(descs))
	for i, desc := range descs {
		rule, err := NewRule(desc)
		if err != nil {
			return nil, fmt.Errorf("rule[%d]: %w", i, err)
		}
		rule.index = i
		rules = append(rules, rule)
	}
	return &RuleSet{rules: rules}, nil
}

// Match 返回第一个命中的规则，没有命中返回 nil
func (s *RuleSet) Match(req RequestInfo) *Rule {
	if s == nil {
		return nil
	}
	for _, rule := range s.rules {
		if rule.Match(req) {
			return rule
		}
	}
	return nil
}

func (s *RuleSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}
