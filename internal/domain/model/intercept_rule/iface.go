package model

// RequestInfo 规则匹配所需的请求视图
type RequestInfo interface {
	GetMethod() string                    // 请求方法，如 GET
	GetURI() string                       // 完整路径，包含查询串
	GetHeader(name string) (string, bool) // 大小写不敏感的 header 查找
	GetRawBody() string                   // 未解析的原始请求体
}
