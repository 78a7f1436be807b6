package utils

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomFormatter(t *testing.T) {
	logger, err := newLogger(LogOptions{Level: "debug"})
	require.NoError(t, err)

	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.WithField("rule", "rule#0").Debug("rule matched")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "rule matched", entry["message"])
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "rule#0", entry["rule"])
	assert.Equal(t, "log_test.go", entry["file"])
	assert.Contains(t, entry, "@timestamp")
	assert.Contains(t, entry, "pid")
	assert.Contains(t, entry, "goroutine_id")
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := newLogger(LogOptions{Level: "loud"})
	assert.Error(t, err)
}

func TestGetLoggerIsSingleton(t *testing.T) {
	a := GetLogger()
	b := GetLogger()
	assert.Same(t, a, b)
	assert.IsType(t, &logrus.Logger{}, a)
}
