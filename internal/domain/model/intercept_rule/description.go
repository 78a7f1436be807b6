package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// RuleDescription 规则的声明式描述（JSON / YAML 规则文件中的一项）
type RuleDescription struct {
	Input  *InputDescription  `json:"input,omitempty" yaml:"input,omitempty"`
	Output *OutputDescription `json:"output,omitempty" yaml:"output,omitempty"`
	Stop   *bool              `json:"stop,omitempty" yaml:"stop,omitempty"` // 缺省为 true
}

// InputDescription 请求侧的匹配条件，nil 字段表示不约束
type InputDescription struct {
	Method  *string    `json:"method,omitempty" yaml:"method,omitempty"`
	Path    *string    `json:"path,omitempty" yaml:"path,omitempty"`
	Headers HeaderList `json:"headers,omitempty" yaml:"headers,omitempty"`
	Payload *Value     `json:"payload,omitempty" yaml:"payload,omitempty"`
}

// OutputDescription 命中后强制写入响应的内容，nil 字段表示不写
type OutputDescription struct {
	Status   *int       `json:"status,omitempty" yaml:"status,omitempty"`
	Headers  HeaderList `json:"headers,omitempty" yaml:"headers,omitempty"`
	Response *Value     `json:"response,omitempty" yaml:"response,omitempty"`
}

// HeaderList 保留声明顺序的 header 映射。
// 规则文件里写成对象 {"X-A": "1"}，解析后按出现顺序保存。
type HeaderList []Header

func (h *HeaderList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("headers must be a JSON object")
	}

	list := HeaderList{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)

		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("header %q: value must be a string: %w", name, err)
		}
		list = append(list, Header{Name: name, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*h = list
	return nil
}

func (h *HeaderList) UnmarshalYAML(node *yaml.Node) error {
	if node.ShortTag() == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: headers must be a mapping", node.Line)
	}

	list := make(HeaderList, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var value string
		if err := node.Content[i+1].Decode(&value); err != nil {
			return fmt.Errorf("header %q: %w", node.Content[i].Value, err)
		}
		list = append(list, Header{Name: node.Content[i].Value, Value: value})
	}

	*h = list
	return nil
}

// Value 字符串或结构化数据。结构化数据保存为紧凑的 JSON 文本。
type Value struct {
	text       string
	structured json.RawMessage
}

func TextValue(s string) Value {
	return Value{text: s}
}

// StructuredValue 将任意数据规范化为 JSON 文本
func StructuredValue(v any) (Value, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return Value{}, fmt.Errorf("failed to marshal structured value: %w", err)
	}
	return Value{structured: bytes.TrimSuffix(buf.Bytes(), []byte("\n"))}, nil
}

func (v Value) IsStructured() bool {
	return v.structured != nil
}

// String 返回规范化后的文本形式：字符串原样返回，结构化数据返回 JSON 文本
func (v Value) String() string {
	if v.IsStructured() {
		return string(v.structured)
	}
	return v.text
}

// Body 返回写入响应体的值：string 或 json.RawMessage
func (v Value) Body() any {
	if v.IsStructured() {
		return v.structured
	}
	return v.text
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &v.text)
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return err
	}
	v.structured = json.RawMessage(buf.Bytes())
	return nil
}

func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!str" {
		v.text = node.Value
		return nil
	}

	var decoded any
	if err := node.Decode(&decoded); err != nil {
		return err
	}
	structured, err := StructuredValue(decoded)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*v = structured
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsStructured() {
		return v.structured, nil
	}
	return json.Marshal(v.text)
}
