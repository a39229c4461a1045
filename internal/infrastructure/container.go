package infrastructure

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"todoclient/internal/adapter/http/client"
	"todoclient/internal/adapter/http/validation"
	"todoclient/internal/adapter/telemetry"
	"todoclient/internal/core/port"
	"todoclient/internal/core/service"
	"todoclient/pkg/config"
	"todoclient/pkg/logger"
)

const ServiceName = "todo-cli"

// Container holds every dependency of the client side: the remote APIs,
// the state containers built on them and the ambient stack.
type Container struct {
	Config    *config.AppConfig
	Logger    *logger.Logger
	Telemetry *telemetry.Container

	Session  *client.SessionJar
	Throttle *client.Throttle
	AuthAPI  port.AuthAPI
	TodoAPI  port.TodoAPI

	Auth        *service.AuthStore
	Todos       *service.TodoStore
	Suggestions *service.SuggestionFlow
}

// NewContainer wires the client from cfg. A nil log builds one from
// cfg.Log.
func NewContainer(ctx context.Context, cfg *config.AppConfig, version string, log *logger.Logger) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if log == nil {
		var err error
		log, err = logger.New(logger.Options{
			ServiceName: ServiceName,
			Level:       cfg.Log.Level,
			File:        cfg.Log.File,
			LokiURL:     cfg.Log.LokiURL,
		})
		if err != nil {
			return nil, err
		}
	}

	tc, err := telemetry.NewContainer(ctx, telemetry.Config{
		ServiceName:    ServiceName,
		ServiceVersion: version,
		Environment:    cfg.Environment,
		MetricsAddr:    cfg.Telemetry.MetricsAddr,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
	}, log.Zap())
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	probe := tc.Probe()

	jar, err := client.NewSessionJar(cfg.SessionFile, cfg.AuthURL, cfg.APIURL)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	opts := client.Options{
		Timeout:   cfg.Timeout,
		Jar:       jar,
		Telemetry: probe,
		Logger:    log.Zap(),
	}

	throttle := client.NewThrottle(throttleRules(cfg.Throttle), probe, log.Zap())

	authAPI := client.NewAuthClient(cfg.AuthURL, opts, jar)
	todoAPI := client.NewTodoClient(cfg.APIURL, opts, throttle)

	validator := validation.New()
	todos := service.NewTodoStore(todoAPI, validator, probe, log.Zap())

	log.Debug("Client container ready",
		zap.String("auth_url", cfg.AuthURL),
		zap.String("api_url", cfg.APIURL),
		zap.String("session_file", cfg.SessionFile))

	return &Container{
		Config:      cfg,
		Logger:      log,
		Telemetry:   tc,
		Session:     jar,
		Throttle:    throttle,
		AuthAPI:     authAPI,
		TodoAPI:     todoAPI,
		Auth:        service.NewAuthStore(authAPI, validator, probe, log.Zap()),
		Todos:       todos,
		Suggestions: service.NewSuggestionFlow(todoAPI, todos, probe, log.Zap()),
	}, nil
}

func throttleRules(table map[string]config.ThrottleConfig) map[string]client.ThrottleRule {
	if table == nil {
		return nil
	}

	rules := make(map[string]client.ThrottleRule, len(table))
	for key, rule := range table {
		rules[key] = client.ThrottleRule{Requests: rule.Requests, Window: rule.Window}
	}

	return rules
}

func (c *Container) Shutdown(ctx context.Context) error {
	err := c.Telemetry.Shutdown(ctx)

	// Sync on stderr reports EINVAL on some platforms.
	_ = c.Logger.Sync()

	return err
}
