package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type HTTPRequestInfo struct {
	req       *http.Request
	bodyCache []byte
}

var _ RequestInfo = (*HTTPRequestInfo)(nil)

// NewHTTPRequest 预读请求体并缓存，原请求体被替换为可重复读取的副本
func NewHTTPRequest(r *http.Request) (*HTTPRequestInfo, error) {
	var body []byte
	if r.Body != nil {
		var err error
		body, err = io.ReadAll(r.Body)
		r.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	return &HTTPRequestInfo{
		req:       r,
		bodyCache: body,
	}, nil
}

func (h *HTTPRequestInfo) GetMethod() string {
	return h.req.Method
}

func (h *HTTPRequestInfo) GetURI() string {
	return h.req.URL.RequestURI()
}

// GetHeader 多个同名 header 以 ", " 拼接；Host 从 req.Host 读取
func (h *HTTPRequestInfo) GetHeader(name string) (string, bool) {
	if strings.EqualFold(name, "Host") {
		return h.req.Host, h.req.Host != ""
	}
	values := h.req.Header.Values(name)
	if len(values) == 0 {
		return "", false
	}
	return strings.Join(values, ", "), true
}

func (h *HTTPRequestInfo) GetRawBody() string {
	return string(h.bodyCache)
}

func (h *HTTPRequestInfo) GetBody() []byte {
	return h.bodyCache
}

// GetBodyJSON 将请求体解析为任意 JSON 值
func (h *HTTPRequestInfo) GetBodyJSON() (any, error) {
	var result any
	if err := json.Unmarshal(h.bodyCache, &result); err != nil {
		return nil, fmt.Errorf("JSON解析失败: %w", err)
	}
	return result, nil
}
