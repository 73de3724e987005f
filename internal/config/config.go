package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config общая конфигурация клиента и сервера
type Config struct {
	Client  ClientConfig  `yaml:"client"`
	Sync    SyncConfig    `yaml:"sync"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

type ClientConfig struct {
	APIBaseURL     string        `yaml:"api_base_url"`
	DBPath         string        `yaml:"db_path"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type SyncConfig struct {
	BatchSize    int           `yaml:"batch_size"`
	MaxRetries   int           `yaml:"max_retries"`
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
}

type ServerConfig struct {
	Addr            string          `yaml:"addr"`
	DBPath          string          `yaml:"db_path"`
	RateLimit       RateLimitConfig `yaml:"rate_limit"`
	ReadTimeout     time.Duration   `yaml:"read_timeout"`
	WriteTimeout    time.Duration   `yaml:"write_timeout"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"` // text | json
	Output   string `yaml:"output"` // stdout | stderr | file
	FilePath string `yaml:"file_path"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		Client: ClientConfig{
			APIBaseURL:     "http://localhost:8080/api",
			DBPath:         "tasksync.db",
			RequestTimeout: 30 * time.Second,
		},
		Sync: SyncConfig{
			BatchSize:    10,
			MaxRetries:   3,
			ProbeTimeout: 5 * time.Second,
		},
		Server: ServerConfig{
			Addr:   ":8080",
			DBPath: "tasksync-server.db",
			RateLimit: RateLimitConfig{
				RPS:   20,
				Burst: 40,
			},
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Load читает конфигурацию.
// Порядок: значения по умолчанию, YAML файл (если путь задан), переменные окружения.
// Переменные из .env в текущей директории подгружаются, если файл существует.
func Load(configPath string) (*Config, error) {
	// Загружаем .env файл если существует
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		// Предварительная замена переменных окружения в YAML
		expanded := []byte(os.ExpandEnv(string(data)))
		if err := yaml.Unmarshal(expanded, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// applyEnv переопределяет значения из переменных окружения
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("API_BASE_URL"); ok && v != "" {
		c.Client.APIBaseURL = v
	}
	if v, ok := lookup("TASKSYNC_DB"); ok && v != "" {
		c.Client.DBPath = v
	}
	if v, ok := lookup("TASKSYNC_SERVER_ADDR"); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup("TASKSYNC_SERVER_DB"); ok && v != "" {
		c.Server.DBPath = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		c.Logging.Level = v
	}

	if v, ok := lookup("SYNC_BATCH_SIZE"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SYNC_BATCH_SIZE %q: %w", v, err)
		}
		c.Sync.BatchSize = n
	}
	if v, ok := lookup("SYNC_MAX_RETRIES"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SYNC_MAX_RETRIES %q: %w", v, err)
		}
		c.Sync.MaxRetries = n
	}
	if v, ok := lookup("SYNC_PROBE_TIMEOUT"); ok && v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return fmt.Errorf("invalid SYNC_PROBE_TIMEOUT %q: %w", v, err)
		}
		c.Sync.ProbeTimeout = d
	}

	return nil
}

// parseTimeout принимает длительность Go ("5s") или целое число миллисекунд ("5000")
func parseTimeout(v string) (time.Duration, error) {
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(v)
}

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	u, err := url.Parse(c.Client.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api base url must be an absolute http(s) url, got %q", c.Client.APIBaseURL)
	}
	if c.Client.DBPath == "" {
		return errors.New("client database path is required")
	}
	if c.Client.RequestTimeout <= 0 {
		return errors.New("client request timeout must be positive")
	}
	if c.Sync.BatchSize <= 0 {
		return fmt.Errorf("sync batch size must be positive, got %d", c.Sync.BatchSize)
	}
	if c.Sync.MaxRetries < 0 {
		return fmt.Errorf("sync max retries must not be negative, got %d", c.Sync.MaxRetries)
	}
	if c.Sync.ProbeTimeout <= 0 {
		return errors.New("sync probe timeout must be positive")
	}
	if c.Server.Addr == "" {
		return errors.New("server address is required")
	}
	if c.Server.DBPath == "" {
		return errors.New("server database path is required")
	}
	if c.Server.RateLimit.RPS < 0 || c.Server.RateLimit.Burst < 0 {
		return errors.New("rate limit values must not be negative")
	}
	return c.Logging.Validate()
}

// Validate проверяет настройки логирования
func (l LoggingConfig) Validate() error {
	switch strings.ToLower(strings.TrimSpace(l.Level)) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level %q", l.Level)
	}
	switch strings.ToLower(strings.TrimSpace(l.Format)) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", l.Format)
	}
	switch strings.ToLower(strings.TrimSpace(l.Output)) {
	case "", "stdout", "stderr":
	case "file":
		if l.FilePath == "" {
			return errors.New("logging.output=file requires logging.file_path")
		}
	default:
		return fmt.Errorf("unknown log output %q", l.Output)
	}
	return nil
}
