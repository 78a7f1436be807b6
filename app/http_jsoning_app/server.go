package http_jsoning_app

import (
	"context"
	"errors"
	"net/http"
	"path"

	"go_jsoning_server/internal/domain/iface"
	configs "go_jsoning_server/internal/infra/config"
	"go_jsoning_server/utils"

	"golang.org/x/sync/errgroup"
)

type RouterOptions struct {
	CORS bool
}

// NewRouter 组装中间件链：recover → 日志/指标 → CORS → 请求体 → 响应构建 → 规则拦截 → 路由 → fallback
func NewRouter(controller *ResourceController, rules iface.RuleMatchService, metrics *Metrics, opts RouterOptions) http.Handler {
	mux := http.NewServeMux()
	for _, route := range controller.URLPatterns() {
		mux.HandleFunc(route.Method+" "+route.Path, route.ResourceFunc)
	}
	mux.HandleFunc("/", controller.Fallback)

	mws := []middleware{recoverMiddleware, requestLogMiddleware(metrics)}
	if opts.CORS {
		mws = append(mws, corsMiddleware)
	}
	mws = append(mws, bodyMiddleware, responseMiddleware, interceptMiddleware(rules, metrics))

	return chain(cleanPathGuard(mux, controller.Fallback), mws...)
}

// cleanPathGuard 非规范路径（"//"、"."、".."）直接走 fallback，不经 ServeMux 的 301 重定向
func cleanPathGuard(mux http.Handler, fallback http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isCleanPath(r.URL.Path) {
			fallback(w, r)
			return
		}
		mux.ServeHTTP(w, r)
	})
}

func isCleanPath(p string) bool {
	if p == "" || p[0] != '/' {
		return false
	}
	cleaned := path.Clean(p)
	if p[len(p)-1] == '/' && cleaned != "/" {
		cleaned += "/"
	}
	return cleaned == p
}

// Server API 监听和可选的 metrics 监听
type Server struct {
	config  configs.ServerConfig
	api     *http.Server
	metrics *http.Server
}

func NewServer(c *configs.Config, controller *ResourceController, rules iface.RuleMatchService, metrics *Metrics) *Server {
	metrics.RegisterRuleCount(rules.RuleCount)

	s := &Server{
		config: c.Server,
		api: &http.Server{
			Addr:         c.Server.Addr,
			Handler:      NewRouter(controller, rules, metrics, RouterOptions{CORS: c.Server.CORS}),
			ReadTimeout:  c.Server.ReadTimeout,
			WriteTimeout: c.Server.WriteTimeout,
		},
	}

	if c.Server.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		s.metrics = &http.Server{Addr: c.Server.MetricsAddr, Handler: mux}
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.api.Handler
}

// Run 阻塞直到 ctx 结束或监听失败，随后优雅关闭所有监听
func (s *Server) Run(ctx context.Context) error {
	log := utils.GetLogger()
	servers := []*http.Server{s.api}
	if s.metrics != nil {
		servers = append(servers, s.metrics)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			log.Infof("listening on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.ShutdownTimeout)
		defer cancel()

		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, err)
			}
		}
		log.Info("server stopped")
		return errors.Join(errs...)
	})

	return g.Wait()
}
