package logger

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	ServiceName string
	// Level is a zap level name. Empty means info.
	Level string
	// File receives the log stream. Empty means stderr.
	File    string
	LokiURL string
}

// Logger is a zap logger with trace correlation and an optional Loki push.
type Logger struct {
	*otelzap.Logger
	ServiceName string

	lokiURL    string
	httpClient *http.Client
}

func New(opts Options) (*Logger, error) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.TimeKey = "timestamp"
	config.Sampling = nil

	if opts.Level != "" {
		level, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		config.Level = zap.NewAtomicLevelAt(level)
	}

	output := "stderr"
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o700); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		output = opts.File
	}
	config.OutputPaths = []string{output}
	config.ErrorOutputPaths = []string{output}

	zapLogger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create zap logger: %w", err)
	}

	if opts.ServiceName != "" {
		zapLogger = zapLogger.With(zap.String("service", opts.ServiceName))
	}

	l := &Logger{
		Logger:      otelzap.New(zapLogger),
		ServiceName: opts.ServiceName,
	}

	if opts.LokiURL != "" {
		l.lokiURL = strings.TrimRight(opts.LokiURL, "/") + "/loki/api/v1/push"
		l.httpClient = &http.Client{Timeout: 5 * time.Second}
	}

	return l, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{Logger: otelzap.New(zap.NewNop())}
}

// Zap exposes the plain zap logger for components that do not need trace
// correlation.
func (l *Logger) Zap() *zap.Logger {
	return l.Logger.Logger
}

func (l *Logger) Sync() error {
	return l.Logger.Sync()
}

func (l *Logger) InfoWithTrace(ctx context.Context, msg string, fields ...zap.Field) {
	l.logWithTrace(ctx, zapcore.InfoLevel, msg, fields...)
}

func (l *Logger) WarnWithTrace(ctx context.Context, msg string, fields ...zap.Field) {
	l.logWithTrace(ctx, zapcore.WarnLevel, msg, fields...)
}

func (l *Logger) ErrorWithTrace(ctx context.Context, msg string, fields ...zap.Field) {
	l.logWithTrace(ctx, zapcore.ErrorLevel, msg, fields...)
}

func (l *Logger) logWithTrace(ctx context.Context, level zapcore.Level, msg string, fields ...zap.Field) {
	switch level {
	case zapcore.ErrorLevel:
		l.Logger.Ctx(ctx).Error(msg, fields...)
	case zapcore.WarnLevel:
		l.Logger.Ctx(ctx).Warn(msg, fields...)
	default:
		l.Logger.Ctx(ctx).Info(msg, fields...)
	}

	if l.lokiURL != "" {
		go l.push(ctx, level, msg, fields)
	}
}
