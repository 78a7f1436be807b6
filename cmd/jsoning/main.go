// jsoning 启动一个 JSON 资源服务，请求在进入业务处理前先经过拦截规则。
//
//	jsoning serve --db db.json --rules rules.yaml --watch
//	jsoning check-rules --rules rules.yaml
package main

func main() {
	Execute()
}
