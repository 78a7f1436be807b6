package rulesource

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsonRules = `[
  {"input": {"path": "/*/4"}, "output": {"status": 401, "response": "test ok"}},
  {"input": {"method": "POST"}, "output": {"headers": {"X-Seen": "yes"}}, "stop": false}
]`

const yamlRules = `
- input:
    path: /*/4
  output:
    status: 401
    response: test ok
- input:
    method: POST
  output:
    headers:
      X-Seen: "yes"
  stop: false
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDescriptions(t *testing.T) {
	for _, tc := range []struct{ name, content string }{
		{"rules.json", jsonRules},
		{"rules.yaml", yamlRules},
		{"rules.yml", yamlRules},
	} {
		t.Run(tc.name, func(t *testing.T) {
			descs, err := LoadDescriptions(writeFile(t, tc.name, tc.content))
			require.NoError(t, err)
			require.Len(t, descs, 2)

			require.NotNil(t, descs[0].Output)
			require.NotNil(t, descs[0].Output.Status)
			assert.Equal(t, 401, *descs[0].Output.Status)
			assert.Nil(t, descs[0].Stop)

			require.NotNil(t, descs[1].Stop)
			assert.False(t, *descs[1].Stop)
			assert.Equal(t, "X-Seen", descs[1].Output.Headers[0].Name)
		})
	}
}

func TestLoadDescriptionsErrors(t *testing.T) {
	_, err := LoadDescriptions(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = LoadDescriptions(writeFile(t, "rules.json", `{"input": {}}`))
	assert.Error(t, err, "top level must be an array")

	_, err = LoadDescriptions(writeFile(t, "rules.yaml", "- input: [\n"))
	assert.Error(t, err)
}

func TestCompileFile(t *testing.T) {
	rules, err := CompileFile(writeFile(t, "rules.json", jsonRules))
	require.NoError(t, err)
	assert.Equal(t, 2, rules.Len())

	_, err = CompileFile(writeFile(t, "rules.json", `[{"input": {"path": "/*/*"}}]`))
	assert.ErrorContains(t, err, "rule[0]")
}

func TestWatcherDebouncesChanges(t *testing.T) {
	path := writeFile(t, "rules.json", jsonRules)
	w, err := NewWatcher(path, 50*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, func() { calls.Add(1) }) }()

	// 给 Run 一点时间进入事件循环
	time.Sleep(20 * time.Millisecond)
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte(jsonRules), 0644))
	}
	// 同目录下的其他文件不触发
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "other.json"), []byte("[]"), 0644))

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	cancel()
	assert.NoError(t, <-done)
}
