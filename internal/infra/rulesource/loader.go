package rulesource

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	model "go_jsoning_server/internal/domain/model/intercept_rule"

	"gopkg.in/yaml.v3"
)

// LoadDescriptions 读取规则文件；.yaml/.yml 按 YAML 解析，其余按 JSON
func LoadDescriptions(path string) ([]model.RuleDescription, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule file: %w", err)
	}
	return ParseDescriptions(raw, filepath.Ext(path))
}

func ParseDescriptions(raw []byte, ext string) ([]model.RuleDescription, error) {
	var descs []model.RuleDescription
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &descs); err != nil {
			return nil, fmt.Errorf("failed to parse yaml rules: %w", err)
		}
	default:
		if err := json.Unmarshal(raw, &descs); err != nil {
			return nil, fmt.Errorf("failed to parse json rules: %w", err)
		}
	}
	return descs, nil
}

// CompileFile 读取并编译规则文件
func CompileFile(path string) (*model.RuleSet, error) {
	descs, err := LoadDescriptions(path)
	if err != nil {
		return nil, err
	}
	rules, err := model.NewRuleSet(descs)
	if err != nil {
		return nil, fmt.Errorf("failed to compile rules from %s: %w", path, err)
	}
	return rules, nil
}
