package model

import "net/http"

// InterceptableResponse 单次请求内由规则和业务处理共同填充的响应。
// status / body 一旦加锁，后续 Set 调用静默忽略；header 只追加，不去重。
// 非并发安全：一个实例只属于一个请求。
type InterceptableResponse struct {
	status       Optional[int]
	statusLocked bool

	body       Optional[any]
	bodyLocked bool

	headers []Header
	exit    bool
}

func NewInterceptableResponse() *InterceptableResponse {
	return &InterceptableResponse{}
}

func (r *InterceptableResponse) SetStatus(status int) {
	if r.statusLocked {
		return
	}
	r.status = Some(status)
}

func (r *InterceptableResponse) LockStatus() {
	r.statusLocked = true
}

func (r *InterceptableResponse) StatusLocked() bool {
	return r.statusLocked
}

// SetBody body 可以是 string、[]byte、json.RawMessage 或任意可 JSON 序列化的值
func (r *InterceptableResponse) SetBody(body any) {
	if r.bodyLocked {
		return
	}
	r.body = Some(body)
}

func (r *InterceptableResponse) LockBody() {
	r.bodyLocked = true
}

func (r *InterceptableResponse) BodyLocked() bool {
	return r.bodyLocked
}

func (r *InterceptableResponse) AddHeader(name, value string) {
	r.headers = append(r.headers, Header{Name: name, Value: value})
}

// RequestExit 单向置位，之后不再调用业务处理
func (r *InterceptableResponse) RequestExit() {
	r.exit = true
}

func (r *InterceptableResponse) ShouldExit() bool {
	return r.exit
}

// Status 未设置时返回 200
func (r *InterceptableResponse) Status() int {
	if status, ok := r.status.Get(); ok {
		return status
	}
	return http.StatusOK
}

// Body 未设置时返回空字符串
func (r *InterceptableResponse) Body() any {
	if body, ok := r.body.Get(); ok {
		return body
	}
	return ""
}

func (r *InterceptableResponse) Headers() []Header {
	out := make([]Header, len(r.headers))
	copy(out, r.headers)
	return out
}
