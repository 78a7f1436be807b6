package http_jsoning_app

import (
	"context"

	model "go_jsoning_server/internal/domain/model/intercept_rule"
	"go_jsoning_server/utils"

	"github.com/sirupsen/logrus"
)

type ctxKey int

const (
	exchangeKey ctxKey = iota
	loggerKey
)

// exchange 单个请求在中间件和路由之间共享的状态
type exchange struct {
	req  *model.HTTPRequestInfo
	body any // POST/PUT/PATCH 的 JSON 请求体
	resp *model.InterceptableResponse
}

func withExchange(ctx context.Context, ex *exchange) context.Context {
	return context.WithValue(ctx, exchangeKey, ex)
}

func exchangeFrom(ctx context.Context) *exchange {
	ex, _ := ctx.Value(exchangeKey).(*exchange)
	return ex
}

func withLogger(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, loggerKey, entry)
}

// loggerFrom 返回带 request_id 的 logger
func loggerFrom(ctx context.Context) *logrus.Entry {
	if entry, ok := ctx.Value(loggerKey).(*logrus.Entry); ok {
		return entry
	}
	return logrus.NewEntry(utils.GetLogger())
}
