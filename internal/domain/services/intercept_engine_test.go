package services

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	model "go_jsoning_server/internal/domain/model/intercept_rule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequest(t *testing.T, method, target, body string) model.RequestInfo {
	t.Helper()
	req, err := model.NewHTTPRequest(httptest.NewRequest(method, target, strings.NewReader(body)))
	require.NoError(t, err)
	return req
}

func writeRules(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func strPtr(s string) *string { return &s }

func TestEngineFromFileEndToEnd(t *testing.T) {
	path := writeRules(t, "rules.json", `[{"input":{"path":"/*/4"},"output":{"status":401,"response":"test ok"},"stop":true}]`)
	engine := NewEngineFromFile(path)
	require.Equal(t, 1, engine.RuleCount())
	assert.Equal(t, path, engine.Source())

	rule := engine.Match(newRequest(t, "GET", "/toto/4", ""))
	require.NotNil(t, rule)
	assert.Equal(t, model.OutcomeStop, Outcome(rule))

	resp := model.NewInterceptableResponse()
	rule.Apply(resp)
	assert.True(t, resp.ShouldExit())
	assert.Equal(t, 401, resp.Status())
	assert.Equal(t, "test ok", resp.Body())

	assert.Nil(t, engine.Match(newRequest(t, "GET", "/toto/5", "")))
}

func TestEngineFailsOpen(t *testing.T) {
	tests := []struct {
		name   string
		engine func(t *testing.T) *Engine
	}{
		{
			name:   "missing file",
			engine: func(t *testing.T) *Engine { return NewEngineFromFile(filepath.Join(t.TempDir(), "nope.json")) },
		},
		{
			name:   "malformed json",
			engine: func(t *testing.T) *Engine { return NewEngineFromFile(writeRules(t, "rules.json", `[{`)) },
		},
		{
			name:   "malformed yaml",
			engine: func(t *testing.T) *Engine { return NewEngineFromFile(writeRules(t, "rules.yml", "- input: [\n")) },
		},
		{
			name: "multiple wildcards",
			engine: func(t *testing.T) *Engine {
				return NewEngineFromDescriptions([]model.RuleDescription{
					{Input: &model.InputDescription{Path: strPtr("/*/x/*")}},
				})
			},
		},
		{
			name:   "nil engine",
			engine: func(t *testing.T) *Engine { return nil },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := tt.engine(t)
			assert.Equal(t, 0, engine.RuleCount())
			assert.Nil(t, engine.Match(newRequest(t, "GET", "/anything", "")))
		})
	}
}

func TestEngineFromDescriptionsFirstMatchWins(t *testing.T) {
	engine := NewEngineFromDescriptions([]model.RuleDescription{
		{Input: &model.InputDescription{Method: strPtr("POST")}, Stop: new(bool)},
		{},
	})
	require.Equal(t, 2, engine.RuleCount())

	rule := engine.Match(newRequest(t, "POST", "/x", ""))
	require.NotNil(t, rule)
	assert.Equal(t, 0, rule.Index())
	assert.Equal(t, model.OutcomeDecorate, Outcome(rule))

	rule = engine.Match(newRequest(t, "GET", "/x", ""))
	require.NotNil(t, rule)
	assert.Equal(t, 1, rule.Index())

	assert.Equal(t, model.OutcomeNone, Outcome(nil))
}

func TestRuleMatchServiceReload(t *testing.T) {
	path := writeRules(t, "rules.yaml", "- input:\n    path: /a\n")
	svc := NewRuleMatchService(NewEngineFromFile(path))
	assert.Equal(t, 1, svc.RuleCount())
	assert.NotNil(t, svc.MatchRule(newRequest(t, "GET", "/a", "")))

	old := svc.Engine()
	require.NoError(t, os.WriteFile(path, []byte("- input:\n    path: /b\n- {}\n"), 0644))
	require.NoError(t, svc.Reload(path))
	assert.Equal(t, 2, svc.RuleCount())
	assert.Equal(t, 0, svc.MatchRule(newRequest(t, "GET", "/b", "")).Index())
	assert.Equal(t, 1, old.RuleCount(), "reload never mutates the previous engine")

	require.NoError(t, os.WriteFile(path, []byte("- input: [\n"), 0644))
	assert.Error(t, svc.Reload(path))
	assert.Equal(t, 0, svc.RuleCount())
	assert.Nil(t, svc.MatchRule(newRequest(t, "GET", "/b", "")))
}

func TestRuleMatchServiceWithoutEngine(t *testing.T) {
	svc := NewRuleMatchService(nil)
	assert.Equal(t, 0, svc.RuleCount())
	assert.Nil(t, svc.MatchRule(newRequest(t, "GET", "/", "")))
}
