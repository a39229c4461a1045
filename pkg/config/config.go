package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DefaultAuthURL = "http://localhost:3001"
	DefaultAPIURL  = "http://localhost:3002"
	envPrefix      = "TODO_"
)

type AppConfig struct {
	AuthURL string `toml:"auth_url"`
	APIURL  string `toml:"api_url"`
	// Timeout of zero leaves the transport default in place.
	Timeout     time.Duration `toml:"timeout"`
	SessionFile string        `toml:"session_file"`
	Environment string        `toml:"environment"`

	Log       LogConfig                 `toml:"log"`
	Telemetry TelemetryConfig           `toml:"telemetry"`
	Throttle  map[string]ThrottleConfig `toml:"throttle"`
	Devserver DevserverConfig           `toml:"devserver"`
}

type LogConfig struct {
	Level   string `toml:"level"`
	File    string `toml:"file"`
	LokiURL string `toml:"loki_url"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `toml:"otlp_endpoint"`
	MetricsAddr  string `toml:"metrics_addr"`
}

type ThrottleConfig struct {
	Requests int           `toml:"requests"`
	Window   time.Duration `toml:"window"`
}

type DevserverConfig struct {
	AuthAddr        string        `toml:"auth_addr"`
	APIAddr         string        `toml:"api_addr"`
	Database        string        `toml:"database"`
	Secret          string        `toml:"secret"`
	SessionTTL      time.Duration `toml:"session_ttl"`
	AllowedOrigins  []string      `toml:"allowed_origins"`
	SeedUsername    string        `toml:"seed_username"`
	SeedPassword    string        `toml:"seed_password"`
	SuggestionsFile string        `toml:"suggestions_file"`
}

func GetDefaultConfig() *AppConfig {
	home := homeDir()

	return &AppConfig{
		AuthURL:     DefaultAuthURL,
		APIURL:      DefaultAPIURL,
		SessionFile: filepath.Join(home, ".todo", "session.json"),
		Environment: "development",
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(home, ".todo", "todo.log"),
		},
		Throttle: map[string]ThrottleConfig{
			"GET /suggestions": {
				Requests: 5,
				Window:   time.Minute,
			},
		},
		Devserver: DevserverConfig{
			AuthAddr:       ":3001",
			APIAddr:        ":3002",
			Database:       filepath.Join(home, ".todo", "devserver.db"),
			Secret:         "dev-secret-change-me",
			SessionTTL:     3 * time.Hour,
			AllowedOrigins: []string{"http://localhost:3000"},
			SeedUsername:   "demo",
			SeedPassword:   "demo",
		},
	}
}

// Paths lists the files Load reads, lowest priority first. Missing files are
// skipped; an explicit file that is missing is an error.
type Paths struct {
	UserFile    string
	ProjectFile string
	Explicit    string
	EnvFile     string
}

func DefaultPaths() Paths {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(homeDir(), ".config")
	}

	return Paths{
		UserFile:    filepath.Join(configHome, "todo", "config.toml"),
		ProjectFile: "todo.toml",
		EnvFile:     ".env",
	}
}

// Load layers defaults, the user file, the project file, an explicit file,
// .env and TODO_* environment variables, in that order.
func Load(paths Paths) (*AppConfig, error) {
	cfg := GetDefaultConfig()

	for _, path := range []string{paths.UserFile, paths.ProjectFile} {
		if err := loadFile(cfg, path, false); err != nil {
			return nil, err
		}
	}

	if err := loadFile(cfg, paths.Explicit, true); err != nil {
		return nil, err
	}

	if paths.EnvFile != "" {
		// existing environment variables win over .env
		if err := godotenv.Load(paths.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", paths.EnvFile, err)
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}

	return cfg, cfg.Validate()
}

func loadFile(cfg *AppConfig, path string, required bool) error {
	if path == "" {
		return nil
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("config file %s: %w", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("loading config file %s: %w", path, err)
	}

	return nil
}

func loadFromEnv(cfg *AppConfig) error {
	strs := map[string]*string{
		"AUTH_URL":         &cfg.AuthURL,
		"API_URL":          &cfg.APIURL,
		"SESSION_FILE":     &cfg.SessionFile,
		"ENV":              &cfg.Environment,
		"LOG_LEVEL":        &cfg.Log.Level,
		"LOG_FILE":         &cfg.Log.File,
		"LOKI_URL":         &cfg.Log.LokiURL,
		"OTLP_ENDPOINT":    &cfg.Telemetry.OTLPEndpoint,
		"METRICS_ADDR":     &cfg.Telemetry.MetricsAddr,
		"DEVSERVER_DB":     &cfg.Devserver.Database,
		"DEVSERVER_AUTH":   &cfg.Devserver.AuthAddr,
		"DEVSERVER_API":    &cfg.Devserver.APIAddr,
		"DEVSERVER_SECRET": &cfg.Devserver.Secret,
	}

	for key, target := range strs {
		if v, ok := os.LookupEnv(envPrefix + key); ok {
			*target = v
		}
	}

	if v, ok := os.LookupEnv(envPrefix + "TIMEOUT"); ok {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("%sTIMEOUT: %w", envPrefix, err)
		}
		cfg.Timeout = d
	}

	if v, ok := os.LookupEnv(envPrefix + "ALLOWED_ORIGINS"); ok {
		cfg.Devserver.AllowedOrigins = splitList(v)
	}

	return nil
}

// parseDuration accepts Go durations and bare milliseconds.
func parseDuration(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)

	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}

	return time.ParseDuration(v)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *AppConfig) Validate() error {
	if c.AuthURL == "" || c.APIURL == "" {
		return errors.New("auth_url and api_url must be set")
	}

	if c.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}

	for key, rule := range c.Throttle {
		if rule.Requests < 0 || rule.Window < 0 {
			return fmt.Errorf("throttle %q: requests and window must not be negative", key)
		}
	}

	return nil
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}
