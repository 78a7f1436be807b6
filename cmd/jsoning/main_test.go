package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	configs "go_jsoning_server/internal/infra/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCheckRules(t *testing.T) {
	path := writeTemp(t, "rules.yaml", "- input:\n    path: /*/4\n  output:\n    status: 401\n")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"check-rules", "--rules", path})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "1 rules ok")

	bad := writeTemp(t, "rules.json", `[{"input": {"path": "/*/*"}}]`)
	rootCmd.SetArgs([]string{"check-rules", "--rules", bad})
	assert.Error(t, rootCmd.Execute())
}

func TestLoadServeConfigOverrides(t *testing.T) {
	t.Setenv("JSONING_CONFIG_PATH", "")
	serveFlags.addr = ":4000"
	serveFlags.db = "db.json"
	serveFlags.rules = "rules.yaml"
	serveFlags.watch = true
	defer func() { serveFlags.addr, serveFlags.db, serveFlags.rules, serveFlags.watch = "", "", "", false }()

	cfg, err := loadServeConfig()
	require.NoError(t, err)
	assert.Equal(t, ":4000", cfg.Server.Addr)
	assert.Equal(t, configs.StoreDriverFile, cfg.Store.Driver)
	assert.Equal(t, "db.json", cfg.Store.File)
	assert.Equal(t, "rules.yaml", cfg.Rules.File)
	assert.True(t, cfg.Rules.Watch)
}

func TestInitializeApp(t *testing.T) {
	cfg := configs.DefaultConfig()
	cfg.Store.File = writeTemp(t, "db.json", `{"posts": [{"id": "1", "title": "hello"}]}`)
	cfg.Rules.File = writeTemp(t, "rules.json", `[{"input": {"path": "/*/4"}, "output": {"status": 401, "response": "test ok"}}]`)

	app, cleanup, err := InitializeApp(cfg)
	require.NoError(t, err)
	defer cleanup()
	assert.Equal(t, 1, app.Rules.RuleCount())

	rec := httptest.NewRecorder()
	app.Server.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/posts/1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"1","title":"hello"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	app.Server.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/posts/4", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "test ok", rec.Body.String())
}
