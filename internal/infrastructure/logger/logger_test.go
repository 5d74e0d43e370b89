package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/watchlog/core/internal/infrastructure/config"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(config.LoggerConfig{Level: "loud", Format: "json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlog.log")

	log, err := New(config.LoggerConfig{Level: "info", Format: "json", Output: "file", Filename: path})
	require.NoError(t, err)

	log.WithComponent("test").LogSeriesAction("create", 7, map[string]interface{}{"titulo": "Dark"})
	_ = log.Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"action":"create"`)
	assert.Contains(t, string(data), `"series_id":7`)
	assert.Contains(t, string(data), `"component":"test"`)
}

func TestNopLogger(t *testing.T) {
	log := NewNop()
	assert.NotPanics(t, func() {
		log.WithRequestID("abc").Infow("ignored", "k", "v")
	})
}

func TestHelpersReportTheirCaller(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := newLogger(zap.New(core, zap.AddCaller()).Sugar())

	log.LogSeriesAction("delete", 3, nil)
	log.WithComponent("http").LogHTTPRequest("GET", "/series", "req-1", "127.0.0.1", 500, 1.5, errors.New("boom"))
	log.Infow("plain")

	entries := logs.All()
	require.Len(t, entries, 3)
	for _, entry := range entries {
		assert.True(t, entry.Caller.Defined)
		assert.Equal(t, "logger_test.go", filepath.Base(entry.Caller.File), entry.Message)
	}
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "http", entries[1].ContextMap()["component"])
}
