package model

import (
	"fmt"
	"strings"
)

// Rule 编译后的规则：请求谓词 + 响应动作，构造后不可变
type Rule struct {
	index int

	method  Optional[string]
	path    Optional[pathPattern]
	headers Optional[[]Header]
	payload Optional[string]

	status        Optional[int]
	outputHeaders []Header
	response      Optional[Value]
	stop          bool
}

// NewRule 将声明式描述编译为 Rule。未出现的字段视为"不约束/不动作"。
func NewRule(desc RuleDescription) (*Rule, error) {
	rule := &Rule{stop: true}

	if in := desc.Input; in != nil {
		if in.Method != nil {
			rule.method = Some(*in.Method)
		}
		if in.Path != nil {
			pattern, err := compilePathPattern(*in.Path)
			if err != nil {
				return nil, err
			}
			rule.path = Some(pattern)
		}
		if in.Headers != nil {
			rule.headers = Some([]Header(in.Headers))
		}
		if in.Payload != nil {
			rule.payload = Some(in.Payload.String())
		}
	}

	if out := desc.Output; out != nil {
		if out.Status != nil {
			rule.status = Some(*out.Status)
		}
		rule.outputHeaders = out.Headers
		if out.Response != nil {
			rule.response = Some(*out.Response)
		}
	}

	if desc.Stop != nil {
		rule.stop = *desc.Stop
	}

	return rule, nil
}

// Match 所有已配置的条件做 AND；没有条件的规则无条件命中
func (r *Rule) Match(req RequestInfo) bool {
	if method, ok := r.method.Get(); ok && method != req.GetMethod() {
		return false
	}

	if pattern, ok := r.path.Get(); ok && !pattern.match(req.GetURI()) {
		return false
	}

	if headers, ok := r.headers.Get(); ok {
		for _, h := range headers {
			value, present := req.GetHeader(h.Name)
			if !present || value != h.Value {
				return false
			}
		}
	}

	if payload, ok := r.payload.Get(); ok && payload != req.GetRawBody() {
		return false
	}

	return true
}

// Apply 按顺序写入响应：status 后加锁，body 后加锁，追加 header，最后按 stop 请求退出
func (r *Rule) Apply(resp *InterceptableResponse) {
	if status, ok := r.status.Get(); ok {
		resp.SetStatus(status)
		resp.LockStatus()
	}

	if body, ok := r.response.Get(); ok {
		resp.SetBody(body.Body())
		resp.LockBody()
	}

	for _, h := range r.outputHeaders {
		resp.AddHeader(h.Name, h.Value)
	}

	if r.stop {
		resp.RequestExit()
	}
}

// Stops 命中后是否短路
func (r *Rule) Stops() bool {
	return r.stop
}

// Index 规则在规则集中的位置（从 0 开始）
func (r *Rule) Index() int {
	return r.index
}

func (r *Rule) String() string {
	var parts []string
	if method, ok := r.method.Get(); ok {
		parts = append(parts, "method="+method)
	}
	if pattern, ok := r.path.Get(); ok {
		parts = append(parts, "path="+pattern.String())
	}
	if headers, ok := r.headers.Get(); ok {
		parts = append(parts, fmt.Sprintf("headers=%d", len(headers)))
	}
	if r.payload.IsSet() {
		parts = append(parts, "payload")
	}
	if len(parts) == 0 {
		parts = append(parts, "any")
	}
	return fmt.Sprintf("rule#%d[%s stop=%t]", r.index, strings.Join(parts, " "), r.stop)
}
