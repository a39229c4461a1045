package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LokiLogEntry struct {
	Streams []LokiStream `json:"streams"`
}

type LokiStream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"`
}

var lokiEncoderConfig = zapcore.EncoderConfig{
	TimeKey:        "timestamp",
	LevelKey:       "level",
	MessageKey:     "message",
	EncodeTime:     zapcore.ISO8601TimeEncoder,
	EncodeLevel:    zapcore.LowercaseLevelEncoder,
	EncodeDuration: zapcore.StringDurationEncoder,
}

// encodeLine renders one log line as JSON, carrying the trace context when
// there is one.
func (l *Logger) encodeLine(ctx context.Context, level zapcore.Level, msg string, fields []zap.Field, now time.Time) (string, error) {
	all := append([]zap.Field{zap.String("service", l.ServiceName)}, fields...)

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		all = append(all,
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.String("span_id", span.SpanContext().SpanID().String()),
		)
	}

	buf, err := zapcore.NewJSONEncoder(lokiEncoderConfig).EncodeEntry(zapcore.Entry{
		Level:   level,
		Time:    now,
		Message: msg,
	}, all)
	if err != nil {
		return "", err
	}
	defer buf.Free()

	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

func (l *Logger) push(ctx context.Context, level zapcore.Level, msg string, fields []zap.Field) {
	now := time.Now()

	line, err := l.encodeLine(ctx, level, msg, fields, now)
	if err != nil {
		return
	}

	entry := LokiLogEntry{
		Streams: []LokiStream{
			{
				Stream: map[string]string{
					"service": l.ServiceName,
					"level":   level.String(),
				},
				Values: [][]string{
					{strconv.FormatInt(now.UnixNano(), 10), line},
				},
			},
		},
	}

	body, err := json.Marshal(entry)
	if err != nil {
		return
	}

	req, err := http.NewRequest(http.MethodPost, l.lokiURL, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()

	io.Copy(io.Discard, resp.Body)
}
