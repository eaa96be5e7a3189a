// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type TokenConfig struct {
	Backend string        `yaml:"backend"` // file | redis | memory
	Path    string        `yaml:"path"`    // file backend
	Key     string        `yaml:"key"`     // redis backend
	TTL     time.Duration `yaml:"ttl"`     // redis backend, 0 = no expiry
	// EncryptionKey seals the file backend's token at rest when set.
	EncryptionKey string `yaml:"encryption_key"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type ChatConfig struct {
	SessionID    string `yaml:"session_id"`    // optional, otherwise assigned by the backend
	SelectedText string `yaml:"selected_text"` // default selection context
}

type VoiceConfig struct {
	Lang           string  `yaml:"lang"`
	Rate           float64 `yaml:"rate"`
	Pitch          float64 `yaml:"pitch"`
	RecognizerCmd  string  `yaml:"recognizer_cmd"`  // prints one transcript line on stdout
	SynthesizerCmd string  `yaml:"synthesizer_cmd"` // reads the text to speak on stdin
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type DevAIConfig struct {
	Provider        string `yaml:"provider"` // gemini | openai | echo
	GeminiKey       string `yaml:"gemini_key"`
	GeminiURL       string `yaml:"gemini_url"`
	OpenAIKey       string `yaml:"openai_key"`
	OpenAIBaseURL   string `yaml:"openai_base_url"`
	Model           string `yaml:"model"` // applies to the default provider; empty = adapter default
	MaxOutput       int    `yaml:"max_output"`
	ConcurrentLimit int    `yaml:"concurrent_limit"` // max concurrent AI calls
}

type DevServerConfig struct {
	Port        int           `yaml:"port"`
	JWTSecret   string        `yaml:"jwt_secret"`
	TokenTTL    time.Duration `yaml:"token_ttl"`
	LoginLimit  int           `yaml:"login_limit"` // attempts per email per window, 0 = unlimited
	LoginWindow time.Duration `yaml:"login_window"`
	UseRedis    bool          `yaml:"use_redis"`
	AI          DevAIConfig   `yaml:"ai"`
}

type Config struct {
	API       APIConfig       `yaml:"api"`
	Token     TokenConfig     `yaml:"token"`
	Log       LogConfig       `yaml:"log"`
	Redis     RedisConfig     `yaml:"redis"`
	Chat      ChatConfig      `yaml:"chat"`
	Voice     VoiceConfig     `yaml:"voice"`
	Locale    string          `yaml:"locale"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	DevServer DevServerConfig `yaml:"devserver"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file at path. A missing file yields defaults so
// the client works out of the box against a local backend.
func LoadConfig(path string, dev bool) (*Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if v := strings.TrimSpace(os.Getenv("TEXTBOOK_API_URL")); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("TEXTBOOK_TOKEN_KEY"); v != "" {
		cfg.Token.EncryptionKey = v
	}
	cfg.Runtime.Dev = dev
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:8000"
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
	if cfg.API.Timeout <= 0 {
		cfg.API.Timeout = 30 * time.Second
	}
	if cfg.Token.Backend == "" {
		cfg.Token.Backend = "file"
	}
	if cfg.Token.Path == "" {
		cfg.Token.Path = defaultTokenPath()
	}
	if cfg.Token.Key == "" {
		cfg.Token.Key = "textbook:auth_token"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "warn"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Voice.Lang == "" {
		cfg.Voice.Lang = "en-US"
	}
	if cfg.Voice.Rate <= 0 {
		cfg.Voice.Rate = 1.0
	}
	if cfg.Voice.Pitch <= 0 {
		cfg.Voice.Pitch = 1.0
	}
	if cfg.Locale == "" {
		cfg.Locale = "en"
	}
	if cfg.DevServer.Port == 0 {
		cfg.DevServer.Port = 8000
	}
	if cfg.DevServer.TokenTTL <= 0 {
		cfg.DevServer.TokenTTL = 7 * 24 * time.Hour
	}
	if cfg.DevServer.LoginWindow <= 0 {
		cfg.DevServer.LoginWindow = time.Minute
	}
	if cfg.DevServer.JWTSecret == "" && cfg.Runtime.Dev {
		cfg.DevServer.JWTSecret = "dev-secret-change-me"
	}
	if cfg.DevServer.AI.Provider == "" {
		cfg.DevServer.AI.Provider = "echo"
	}
	if cfg.DevServer.AI.MaxOutput <= 0 {
		cfg.DevServer.AI.MaxOutput = 1000
	}
	if cfg.DevServer.AI.ConcurrentLimit <= 0 {
		cfg.DevServer.AI.ConcurrentLimit = 16
	}
}

// Validate performs minimal consistency checks.
func (c *Config) Validate() error {
	switch c.Token.Backend {
	case "file", "memory":
	case "redis":
		if c.Redis.URL == "" {
			return errors.New("redis.url is required when token.backend is redis")
		}
	default:
		return fmt.Errorf("token.backend %q is not one of file|redis|memory", c.Token.Backend)
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url %q must be an http(s) URL", c.API.BaseURL)
	}
	if c.DevServer.UseRedis && c.Redis.URL == "" {
		return errors.New("redis.url is required when devserver.use_redis is set")
	}
	return nil
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".textbook", "session.json")
	}
	return filepath.Join(home, ".textbook", "session.json")
}
