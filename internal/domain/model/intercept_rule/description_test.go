package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDescriptionJSONPresence(t *testing.T) {
	var desc RuleDescription
	require.NoError(t, json.Unmarshal([]byte(`{"input":{"path":""},"output":{"status":0},"stop":false}`), &desc))

	require.NotNil(t, desc.Input)
	require.NotNil(t, desc.Input.Path)
	assert.Equal(t, "", *desc.Input.Path)
	assert.Nil(t, desc.Input.Method)
	require.NotNil(t, desc.Output.Status)
	assert.Equal(t, 0, *desc.Output.Status)
	require.NotNil(t, desc.Stop)
	assert.False(t, *desc.Stop)
}

func TestHeaderListKeepsOrder(t *testing.T) {
	var list HeaderList
	require.NoError(t, json.Unmarshal([]byte(`{"Z-Last":"1","A-First":"2","M-Mid":"3"}`), &list))

	assert.Equal(t, HeaderList{
		{Name: "Z-Last", Value: "1"},
		{Name: "A-First", Value: "2"},
		{Name: "M-Mid", Value: "3"},
	}, list)
}

func TestHeaderListRejectsNonString(t *testing.T) {
	var list HeaderList
	assert.Error(t, json.Unmarshal([]byte(`{"X-Num":1}`), &list))
	assert.Error(t, json.Unmarshal([]byte(`["X-Num"]`), &list))
}

func TestValueJSON(t *testing.T) {
	var text Value
	require.NoError(t, json.Unmarshal([]byte(`"test ok"`), &text))
	assert.False(t, text.IsStructured())
	assert.Equal(t, "test ok", text.String())
	assert.Equal(t, "test ok", text.Body())

	var structured Value
	require.NoError(t, json.Unmarshal([]byte(`{ "a": [1, 2],  "b": "x" }`), &structured))
	assert.True(t, structured.IsStructured())
	assert.Equal(t, `{"a":[1,2],"b":"x"}`, structured.String())
	assert.Equal(t, json.RawMessage(`{"a":[1,2],"b":"x"}`), structured.Body())

	out, err := json.Marshal(structured)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":[1,2],"b":"x"}`, string(out))
}

func TestDescriptionYAML(t *testing.T) {
	src := `
- input:
    method: POST
    path: /orders/*
    headers:
      X-Tenant: acme
      X-Retry: 3
    payload:
      qty: 2
  output:
    status: 202
    headers:
      X-Mocked: "true"
    response: accepted
  stop: false
- output:
    response:
      error: denied
`
	var descs []RuleDescription
	require.NoError(t, yaml.Unmarshal([]byte(src), &descs))
	require.Len(t, descs, 2)

	first := descs[0]
	assert.Equal(t, "POST", *first.Input.Method)
	assert.Equal(t, "/orders/*", *first.Input.Path)
	assert.Equal(t, HeaderList{{Name: "X-Tenant", Value: "acme"}, {Name: "X-Retry", Value: "3"}}, first.Input.Headers)
	assert.Equal(t, `{"qty":2}`, first.Input.Payload.String())
	assert.Equal(t, 202, *first.Output.Status)
	assert.Equal(t, "accepted", first.Output.Response.String())
	assert.False(t, *first.Stop)

	second := descs[1]
	assert.Nil(t, second.Input)
	assert.Nil(t, second.Stop)
	assert.True(t, second.Output.Response.IsStructured())
	assert.Equal(t, `{"error":"denied"}`, second.Output.Response.String())
}

func TestDescriptionYAMLKeepsHTMLCharacters(t *testing.T) {
	src := `
- input:
    payload:
      q: "<a&b>"
  output:
    response:
      html: "<p>x & y</p>"
`
	var descs []RuleDescription
	require.NoError(t, yaml.Unmarshal([]byte(src), &descs))
	require.Len(t, descs, 1)
	assert.Equal(t, `{"q":"<a&b>"}`, descs[0].Input.Payload.String())
	assert.Equal(t, `{"html":"<p>x & y</p>"}`, descs[0].Output.Response.String())

	fromYAML, err := NewRule(descs[0])
	require.NoError(t, err)
	fromJSON := mustRule(t, `{"input":{"payload":{"q":"<a&b>"}}}`)

	req := fakeRequest{method: "POST", uri: "/search", body: `{"q":"<a&b>"}`}
	assert.True(t, fromYAML.Match(req))
	assert.True(t, fromJSON.Match(req))
}
