package logger

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "todo.log")

	l, err := New(Options{ServiceName: "todo", Level: "debug", File: path})
	assert.NoError(t, err)

	l.Zap().Info("hello", zap.String("k", "v"))
	_ = l.Sync()

	raw, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Contains(t, string(raw), `"msg":"hello"`)
	assert.Contains(t, string(raw), `"service":"todo"`)
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})

	assert.Error(t, err)
}

func TestEncodeLine(t *testing.T) {
	l := NewNop()
	l.ServiceName = "devserver"

	line, err := l.encodeLine(context.Background(), zapcore.InfoLevel, "HTTP Request",
		[]zap.Field{zap.Int("status", 200), zap.Duration("latency", time.Second)}, time.Now())

	assert.NoError(t, err)

	var decoded map[string]any
	assert.NoError(t, json.Unmarshal([]byte(line), &decoded))
	assert.Equal(t, "HTTP Request", decoded["message"])
	assert.Equal(t, "devserver", decoded["service"])
	assert.Equal(t, float64(200), decoded["status"])
	assert.Equal(t, "1s", decoded["latency"])
}

func TestInfoWithTrace_PushesToLoki(t *testing.T) {
	RegisterTestingT(t)

	bodies := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		if r.URL.Path == "/loki/api/v1/push" {
			bodies <- string(raw)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	l, err := New(Options{ServiceName: "devserver", File: filepath.Join(t.TempDir(), "x.log"), LokiURL: server.URL + "/"})
	Expect(err).To(BeNil())

	l.InfoWithTrace(context.Background(), "pushed")

	var body string
	Eventually(bodies).Should(Receive(&body))
	Expect(body).To(ContainSubstring(`"service":"devserver"`))
	Expect(strings.Contains(body, "pushed")).To(BeTrue())
}
