package model

// Optional 显式表示字段"已配置/未配置"，不依赖零值判断
type Optional[T any] struct {
	value T
	set   bool
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

func (o Optional[T]) IsSet() bool {
	return o.set
}

// Header 有序的 name/value 对
type Header struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// 规则匹配结果，用于日志和指标
const (
	OutcomeStop     = "stop"     // 命中并短路
	OutcomeDecorate = "decorate" // 命中但继续交给业务处理
	OutcomeNone     = "none"     // 未命中
)

const wildcardMarker = "*"
