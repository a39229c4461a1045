package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"todoclient/internal/core/domain"
	"todoclient/internal/core/model/response"
	"todoclient/internal/core/port"
	tel "todoclient/internal/core/telemetry"
	"todoclient/pkg/tracing"
)

const maxResponseBytes = 4 << 20

type Options struct {
	// Timeout of zero leaves the transport default in place.
	Timeout   time.Duration
	Jar       http.CookieJar
	Transport http.RoundTripper
	Telemetry port.Telemetry
	Logger    *zap.Logger
}

// Client talks to one remote service and normalizes every reply into the
// envelope shape.
type Client struct {
	service   string
	baseURL   string
	http      *http.Client
	telemetry port.Telemetry
	logger    *zap.Logger
}

type call struct {
	op     string
	method string
	route  string
	path   string
	body   any
}

func New(service string, baseURL string, opts Options) *Client {
	if opts.Telemetry == nil {
		opts.Telemetry = tel.NewNoOpProbe()
	}

	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	return &Client{
		service: service,
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   opts.Timeout,
			Jar:       opts.Jar,
			Transport: otelhttp.NewTransport(transport),
		},
		telemetry: opts.Telemetry,
		logger:    opts.Logger,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) do(ctx context.Context, cl call) (*response.Envelope, error) {
	ctx, span := tracing.CreateChildSpan(ctx, fmt.Sprintf("%s %s %s", c.service, cl.method, cl.route), []attribute.KeyValue{
		attribute.String("peer.service", c.service),
	})
	defer span.End()

	startTime := time.Now()

	env, status, err := c.roundTrip(ctx, cl)

	tracing.AddHTTPAttributes(span, cl.method, cl.route, status)
	if err != nil {
		tracing.AddSpanError(span, err)
	}

	c.telemetry.RecordRemoteCall(ctx, c.service, cl.method, cl.route, status, time.Since(startTime), err)

	return env, err
}

func (c *Client) roundTrip(ctx context.Context, cl call) (*response.Envelope, int, error) {
	var reader io.Reader

	if cl.body != nil {
		payload, err := json.Marshal(cl.body)
		if err != nil {
			return nil, 0, domain.NewValidationError(cl.op, fmt.Sprintf("failed to encode request: %v", err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, reader)
	if err != nil {
		return nil, 0, domain.NewTransportError(cl.op, err)
	}

	req.Header.Set("Accept", "application/json")
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, domain.NewTransportError(cl.op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, domain.NewTransportError(cl.op, err)
	}

	env, err := decodeEnvelope(cl.op, resp.StatusCode, raw)

	return env, resp.StatusCode, err
}

// decodeEnvelope applies the envelope rules: a non-2xx status or
// success:false is a rejection carrying the server's message.
func decodeEnvelope(op string, status int, raw []byte) (*response.Envelope, error) {
	ok := status >= 200 && status < 300

	var env response.Envelope

	if len(bytes.TrimSpace(raw)) == 0 {
		if ok {
			return &response.Envelope{Success: true}, nil
		}
		return nil, domain.NewRejection(op, status, http.StatusText(status))
	}

	if err := json.Unmarshal(raw, &env); err != nil {
		if ok {
			return nil, &domain.Error{
				Kind:    domain.KindRejected,
				Op:      op,
				Status:  status,
				Message: "Invalid response from service",
				Err:     err,
			}
		}
		return nil, domain.NewRejection(op, status, http.StatusText(status))
	}

	if !ok {
		message := env.Message
		if message == "" {
			message = http.StatusText(status)
		}
		return nil, domain.NewRejection(op, status, message)
	}

	if !env.Success {
		message := env.Message
		if message == "" {
			message = "Request failed"
		}
		return nil, domain.NewRejection(op, status, message)
	}

	return &env, nil
}

func decodeData[T any](op string, env *response.Envelope) (T, error) {
	var out T

	if len(env.Data) == 0 || bytes.Equal(bytes.TrimSpace(env.Data), []byte("null")) {
		return out, nil
	}

	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, &domain.Error{
			Kind:    domain.KindRejected,
			Op:      op,
			Status:  http.StatusOK,
			Message: "Invalid response from service",
			Err:     err,
		}
	}

	return out, nil
}
