package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/watchlog/core/internal/infrastructure/config"
)

// Logger wraps zap.SugaredLogger to provide application-specific logging
type Logger struct {
	*zap.SugaredLogger

	// helpers skips one frame so LogHTTPRequest and LogSeriesAction report
	// their caller, not this file
	helpers *zap.SugaredLogger
}

// New creates a new logger instance
func New(cfg config.LoggerConfig) (*Logger, error) {
	var zapConfig zap.Config

	if cfg.Format == "json" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)

	switch {
	case cfg.Output == "file" && cfg.Filename != "":
		zapConfig.OutputPaths = []string{cfg.Filename}
		zapConfig.ErrorOutputPaths = []string{cfg.Filename}
	case cfg.Output == "stderr":
		zapConfig.OutputPaths = []string{"stderr"}
		zapConfig.ErrorOutputPaths = []string{"stderr"}
	default:
		zapConfig.OutputPaths = []string{"stdout"}
		zapConfig.ErrorOutputPaths = []string{"stderr"}
	}

	if cfg.Format != "json" {
		zapConfig.Development = true
		zapConfig.DisableStacktrace = false
	}

	zapLogger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return newLogger(zapLogger.Sugar()), nil
}

func newLogger(sugar *zap.SugaredLogger) *Logger {
	return &Logger{
		SugaredLogger: sugar,
		helpers:       sugar.WithOptions(zap.AddCallerSkip(1)),
	}
}

// NewNop returns a logger that discards everything
func NewNop() *Logger {
	return newLogger(zap.NewNop().Sugar())
}

// WithFields adds structured fields to the logger
func (l *Logger) WithFields(fields ...interface{}) *Logger {
	return &Logger{
		SugaredLogger: l.SugaredLogger.With(fields...),
		helpers:       l.helpers.With(fields...),
	}
}

// WithRequestID adds a request ID field to the logger
func (l *Logger) WithRequestID(requestID string) *Logger {
	return l.WithFields("request_id", requestID)
}

// WithComponent adds a component field to the logger
func (l *Logger) WithComponent(component string) *Logger {
	return l.WithFields("component", component)
}

// LogHTTPRequest logs one served request
func (l *Logger) LogHTTPRequest(method, uri, requestID, ip string, statusCode int, latencyMs float64, err error) {
	fields := []interface{}{
		"method", method,
		"uri", uri,
		"status", statusCode,
		"latency_ms", latencyMs,
		"remote_ip", ip,
		"request_id", requestID,
	}

	if err != nil {
		fields = append(fields, "error", err.Error())
		l.helpers.Errorw("HTTP request failed", fields...)
		return
	}
	l.helpers.Infow("HTTP request", fields...)
}

// LogSeriesAction records a mutation of the series collection
func (l *Logger) LogSeriesAction(action string, seriesID int, metadata map[string]interface{}) {
	fields := []interface{}{
		"action", action,
		"series_id", seriesID,
	}

	for k, v := range metadata {
		fields = append(fields, k, v)
	}

	l.helpers.Infow("Series action", fields...)
}

// Close flushes any buffered log entries
func (l *Logger) Close() error {
	return l.SugaredLogger.Sync()
}
