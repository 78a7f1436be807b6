package http_jsoning_app

import (
	"encoding/json"
	"io"
	"net/http"

	model "go_jsoning_server/internal/domain/model/intercept_rule"
)

const (
	contentTypeHTML   = "text/html; charset=utf-8"
	contentTypeJSON   = "application/json; charset=utf-8"
	contentTypeBinary = "application/octet-stream"

	msgInvalidStatus = "Internal Server Error: Invalid status code"
	msgInternalError = "Something broke!"
)

// writeResponse 把 InterceptableResponse 写到连接上：header 按顺序 Add，校验 status，按 body 类型选择 Content-Type
func writeResponse(w http.ResponseWriter, resp *model.InterceptableResponse) {
	// 1xx 只能作为 informational header 发出，无法作为最终状态码
	status := resp.Status()
	if status < 200 || status > 999 {
		writePlain(w, http.StatusInternalServerError, msgInvalidStatus)
		return
	}

	body, contentType, err := encodeBody(resp.Body())
	if err != nil {
		writePlain(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	header := w.Header()
	for _, h := range resp.Headers() {
		header.Add(h.Name, h.Value)
	}
	if header.Get("Content-Type") == "" {
		header.Set("Content-Type", contentType)
	}
	w.WriteHeader(status)
	w.Write(body)
}

func encodeBody(body any) ([]byte, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, contentTypeHTML, nil
	case string:
		return []byte(b), contentTypeHTML, nil
	case []byte:
		return b, contentTypeBinary, nil
	case json.RawMessage:
		return b, contentTypeJSON, nil
	default:
		out, err := json.Marshal(b)
		if err != nil {
			return nil, "", err
		}
		return out, contentTypeJSON, nil
	}
}

func writePlain(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	io.WriteString(w, msg)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{Error: msg})
}
