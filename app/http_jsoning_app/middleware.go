package http_jsoning_app

import (
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"go_jsoning_server/internal/domain/iface"
	model "go_jsoning_server/internal/domain/model/intercept_rule"
	"go_jsoning_server/internal/domain/services"
	"go_jsoning_server/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	headerRequestID = "X-Request-Id"

	corsAllowMethods = "GET,HEAD,PUT,PATCH,POST,DELETE"
)

type middleware func(http.Handler) http.Handler

func chain(h http.Handler, mws ...middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// statusRecorder 记录写出的状态码，供日志和指标使用
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}
				loggerFrom(r.Context()).WithFields(logrus.Fields{
					"panic": err,
					"stack": string(debug.Stack()),
				}).Error("handle request panic")
				writePlain(w, http.StatusInternalServerError, msgInternalError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// requestLogMiddleware 分配 request id（沿用入站 X-Request-Id），记录访问日志和指标
func requestLogMiddleware(metrics *Metrics) middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(headerRequestID)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(headerRequestID, requestID)

			entry := utils.GetLogger().WithField("request_id", requestID)
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r.WithContext(withLogger(r.Context(), entry)))

			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			elapsed := time.Since(start)
			metrics.ObserveRequest(r.Method, rec.status, elapsed)
			entry.WithFields(logrus.Fields{
				"method":      r.Method,
				"uri":         r.URL.RequestURI(),
				"status":      rec.status,
				"duration_ms": elapsed.Milliseconds(),
			}).Info("request completed")
		})
	}
}

// corsMiddleware 允许任意来源；OPTIONS 预检直接返回 204
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := w.Header()
		header.Set("Access-Control-Allow-Origin", "*")

		if r.Method != http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		header.Set("Access-Control-Allow-Methods", corsAllowMethods)
		if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
			header.Set("Access-Control-Allow-Headers", reqHeaders)
			header.Add("Vary", "Access-Control-Request-Headers")
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

// bodyMiddleware 缓存原始请求体；POST/PUT/PATCH 必须是合法 JSON，否则在规则执行前返回 400
func bodyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info, err := model.NewHTTPRequest(r)
		if err != nil {
			loggerFrom(r.Context()).Warnf("read request body err: %v", err)
			writeJSONError(w, http.StatusBadRequest, "Invalid body")
			return
		}

		ex := &exchange{req: info}
		if hasJSONBody(r.Method) {
			if ex.body, err = info.GetBodyJSON(); err != nil {
				writeJSONError(w, http.StatusBadRequest, "Invalid JSON")
				return
			}
		}
		next.ServeHTTP(w, r.WithContext(withExchange(r.Context(), ex)))
	})
}

// responseMiddleware 为每个请求创建一个 InterceptableResponse
func responseMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ex := exchangeFrom(r.Context())
		ex.resp = model.NewInterceptableResponse()
		next.ServeHTTP(w, r)
	})
}

// interceptMiddleware 执行首个命中规则；规则要求退出时直接写出响应，不再进入路由
func interceptMiddleware(rules iface.RuleMatchService, metrics *Metrics) middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ex := exchangeFrom(r.Context())

			rule := rules.MatchRule(ex.req)
			outcome := services.Outcome(rule)
			metrics.ObserveRule(outcome)
			if rule != nil {
				loggerFrom(r.Context()).Debugf("rule[%d] matched (%s): %s", rule.Index(), outcome, rule)
				rule.Apply(ex.resp)
			}

			if ex.resp.ShouldExit() {
				writeResponse(w, ex.resp)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func hasJSONBody(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}
