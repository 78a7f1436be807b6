package http_jsoning_app

import (
	"errors"
	"net/http"

	"go_jsoning_server/internal/domain/iface"
	"go_jsoning_server/internal/domain/model/resource"
)

const welcomeMessage = "JSONing API :)"

// Route 一条路由：Go 1.22 ServeMux 的 method + pattern
type Route struct {
	Method       string
	Path         string
	ResourceFunc http.HandlerFunc
}

type ResourceController struct {
	ResourceService iface.ResourceService
}

func NewResourceController(resourceService iface.ResourceService) *ResourceController {
	return &ResourceController{
		ResourceService: resourceService,
	}
}

func (c *ResourceController) URLPatterns() []Route {
	return []Route{
		{Method: http.MethodGet, Path: "/{$}", ResourceFunc: c.Home},
		{Method: http.MethodGet, Path: "/{resource}", ResourceFunc: c.List},
		{Method: http.MethodGet, Path: "/{resource}/{id}", ResourceFunc: c.Get},
		{Method: http.MethodPost, Path: "/{resource}", ResourceFunc: c.Create},
		{Method: http.MethodPut, Path: "/{resource}/{id}", ResourceFunc: c.Replace},
		{Method: http.MethodPatch, Path: "/{resource}/{id}", ResourceFunc: c.Patch},
		{Method: http.MethodDelete, Path: "/{resource}/{id}", ResourceFunc: c.Delete},
	}
}

func (c *ResourceController) Home(w http.ResponseWriter, r *http.Request) {
	send(w, r, http.StatusOK, welcomeMessage)
}

func (c *ResourceController) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	items, err := c.ResourceService.List(r.Context(), r.PathValue("resource"), queryParam(query, "page"), queryParam(query, "limit"))
	if err != nil {
		c.fail(w, r, err)
		return
	}
	send(w, r, http.StatusOK, items)
}

func (c *ResourceController) Get(w http.ResponseWriter, r *http.Request) {
	item, err := c.ResourceService.Get(r.Context(), r.PathValue("resource"), r.PathValue("id"))
	if err != nil {
		c.fail(w, r, err)
		return
	}
	send(w, r, http.StatusOK, item)
}

func (c *ResourceController) Create(w http.ResponseWriter, r *http.Request) {
	item, err := c.ResourceService.Create(r.Context(), r.PathValue("resource"), exchangeFrom(r.Context()).body)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	send(w, r, http.StatusCreated, item)
}

func (c *ResourceController) Replace(w http.ResponseWriter, r *http.Request) {
	item, err := c.ResourceService.Replace(r.Context(), r.PathValue("resource"), r.PathValue("id"), exchangeFrom(r.Context()).body)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	send(w, r, http.StatusOK, item)
}

func (c *ResourceController) Patch(w http.ResponseWriter, r *http.Request) {
	item, err := c.ResourceService.Patch(r.Context(), r.PathValue("resource"), r.PathValue("id"), exchangeFrom(r.Context()).body)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	send(w, r, http.StatusOK, item)
}

func (c *ResourceController) Delete(w http.ResponseWriter, r *http.Request) {
	item, err := c.ResourceService.Delete(r.Context(), r.PathValue("resource"), r.PathValue("id"))
	if err != nil {
		c.fail(w, r, err)
		return
	}
	send(w, r, http.StatusOK, item)
}

// Fallback 未命中任何路由：原样写出规则留下的响应（默认 200 空 body）
func (c *ResourceController) Fallback(w http.ResponseWriter, r *http.Request) {
	writeResponse(w, exchangeFrom(r.Context()).resp)
}

func (c *ResourceController) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, resource.ErrNotFound), errors.Is(err, resource.ErrResourceNotFound):
		send(w, r, http.StatusNotFound, "Not found")
	case errors.Is(err, resource.ErrAlreadyExists):
		send(w, r, http.StatusConflict, "Already exists")
	case errors.Is(err, resource.ErrInvalidItem):
		send(w, r, http.StatusBadRequest, "Invalid item")
	default:
		loggerFrom(r.Context()).Errorf("%s %s err: %v", r.Method, r.URL.Path, err)
		send(w, r, http.StatusInternalServerError, msgInternalError)
	}
}

// send 经由共享的 InterceptableResponse 写出，被规则锁定的字段保持不变
func send(w http.ResponseWriter, r *http.Request, status int, body any) {
	resp := exchangeFrom(r.Context()).resp
	resp.SetStatus(status)
	resp.SetBody(body)
	writeResponse(w, resp)
}

func queryParam(query map[string][]string, name string) *string {
	values, ok := query[name]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}
