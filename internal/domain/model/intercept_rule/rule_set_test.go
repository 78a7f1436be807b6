package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRuleSet(t *testing.T, src string) *RuleSet {
	t.Helper()
	var descs []RuleDescription
	require.NoError(t, json.Unmarshal([]byte(src), &descs))
	set, err := NewRuleSet(descs)
	require.NoError(t, err)
	return set
}

func TestRuleSetMatch(t *testing.T) {
	set := mustRuleSet(t, `[
		{"input": {"method": "GET", "path": "/test"}, "output": {"status": 200}},
		{"input": {"method": "POST", "path": "/submit"}, "output": {"status": 201}}
	]`)

	assert.Equal(t, 2, set.Len())

	rule := set.Match(fakeRequest{method: "GET", uri: "/test"})
	require.NotNil(t, rule)
	assert.Equal(t, 0, rule.Index())

	rule = set.Match(fakeRequest{method: "POST", uri: "/submit"})
	require.NotNil(t, rule)
	assert.Equal(t, 1, rule.Index())

	assert.Nil(t, set.Match(fakeRequest{method: "DELETE", uri: "/remove"}))
}

func TestRuleSetFirstMatchWins(t *testing.T) {
	set := mustRuleSet(t, `[
		{"input": {"path": "/other"}},
		{"input": {"path": "/items/*"}, "output": {"status": 418}},
		{"input": {"method": "GET"}, "output": {"status": 500}},
		{}
	]`)

	rule := set.Match(fakeRequest{method: "GET", uri: "/items/1"})
	require.NotNil(t, rule)
	assert.Equal(t, 1, rule.Index())

	resp := NewInterceptableResponse()
	rule.Apply(resp)
	assert.Equal(t, 418, resp.Status())
}

func TestRuleSetReportsFailingRule(t *testing.T) {
	var descs []RuleDescription
	require.NoError(t, json.Unmarshal([]byte(`[{}, {"input": {"path": "/**"}}]`), &descs))

	_, err := NewRuleSet(descs)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMultipleWildcards)
	assert.Contains(t, err.Error(), "rule[1]")
}

func TestNilRuleSet(t *testing.T) {
	var set *RuleSet
	assert.Nil(t, set.Match(fakeRequest{method: "GET", uri: "/"}))
	assert.Equal(t, 0, set.Len())
}
