package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var (
	ErrMissingAPIKey   = errors.New("newsapi.api_key is required")
	ErrInvalidPageSize = errors.New("newsapi.page_size must be between 1 and 100")
	ErrUnknownProvider = errors.New("translation.provider must be one of: google, ollama")
)

type Config struct {
	Database    DatabaseConfig    `yaml:"database"`
	NewsAPI     NewsAPIConfig     `yaml:"newsapi"`
	Feeds       []FeedConfig      `yaml:"feeds"`
	Translation TranslationConfig `yaml:"translation"`
	Ollama      OllamaConfig      `yaml:"ollama"`
	Raindrop    RaindropConfig    `yaml:"raindrop"`
	Server      ServerConfig      `yaml:"server"`
	I18n        I18nConfig        `yaml:"i18n"`
	Logging     LoggingConfig     `yaml:"logging"`
	UI          UIConfig          `yaml:"ui"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type NewsAPIConfig struct {
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`
	Country  string `yaml:"country"`
	PageSize int    `yaml:"page_size"`
	Timeout  string `yaml:"timeout"`
}

type FeedConfig struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

type TranslationConfig struct {
	// Provider selects the translation backend: "google" or "ollama".
	Provider string `yaml:"provider"`
	BaseURL  string `yaml:"base_url"`
	Target   string `yaml:"target"`
	Timeout  string `yaml:"timeout"`
}

type OllamaConfig struct {
	Host  string `yaml:"host"`
	Model string `yaml:"model"`
}

type RaindropConfig struct {
	BaseURL  string `yaml:"base_url"`
	APIToken string `yaml:"api_token"`
}

type ServerConfig struct {
	Addr            string `yaml:"addr"`
	UserHeader      string `yaml:"user_header"`
	LoginURL        string `yaml:"login_url"`
	DefaultLanguage string `yaml:"default_language"`
}

// I18nConfig holds UI label overrides: language code -> source string -> label.
type I18nConfig struct {
	Labels map[string]map[string]string `yaml:"labels"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type UIConfig struct {
	User     string `yaml:"user"`
	PageSize int    `yaml:"page_size"`
}

// GetTimeout parses the news API timeout string
func (n *NewsAPIConfig) GetTimeout() (time.Duration, error) {
	return time.ParseDuration(n.Timeout)
}

// GetTimeout parses the translation timeout string
func (t *TranslationConfig) GetTimeout() (time.Duration, error) {
	return time.ParseDuration(t.Timeout)
}

// Load reads configuration from file. A missing file is not an error: the
// defaults and environment overrides still apply.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// .env is optional
	_ = godotenv.Load()
	cfg.applyEnvOverrides()
	cfg.applyDefaults()

	return &cfg, nil
}

// Default returns the built-in settings without file or environment input.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("NEWS_API_KEY"); v != "" {
		c.NewsAPI.APIKey = v
	}
	if v := os.Getenv("NEWSAGG_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("NEWSAGG_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("RAINDROP_API_TOKEN"); v != "" {
		c.Raindrop.APIToken = v
	}
	if v := os.Getenv("NEWSAGG_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) applyDefaults() {
	if c.Database.Path == "" {
		c.Database.Path = "~/.local/share/newsagg/newsagg.db"
	}
	c.Database.Path = expandPath(c.Database.Path)

	if c.NewsAPI.BaseURL == "" {
		c.NewsAPI.BaseURL = "https://newsapi.org/v2"
	}
	if c.NewsAPI.Country == "" {
		c.NewsAPI.Country = "us"
	}
	if c.NewsAPI.PageSize == 0 {
		c.NewsAPI.PageSize = 20
	}
	if c.NewsAPI.Timeout == "" {
		c.NewsAPI.Timeout = "10s"
	}
	if c.Translation.Provider == "" {
		c.Translation.Provider = "google"
	}
	if c.Translation.BaseURL == "" {
		c.Translation.BaseURL = "https://translate.googleapis.com"
	}
	if c.Translation.Target == "" {
		c.Translation.Target = "uk"
	}
	if c.Translation.Timeout == "" {
		c.Translation.Timeout = "15s"
	}
	if c.Ollama.Host == "" {
		c.Ollama.Host = "http://localhost:11434"
	}
	if c.Ollama.Model == "" {
		c.Ollama.Model = "llama2"
	}
	if c.Raindrop.BaseURL == "" {
		c.Raindrop.BaseURL = "https://api.raindrop.io/rest/v1"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.UserHeader == "" {
		c.Server.UserHeader = "X-Authenticated-User"
	}
	if c.Server.LoginURL == "" {
		c.Server.LoginURL = "/users/login/"
	}
	if c.Server.DefaultLanguage == "" {
		c.Server.DefaultLanguage = "en"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.UI.User == "" {
		c.UI.User = "local"
	}
	if c.UI.PageSize == 0 {
		c.UI.PageSize = 20
	}
}

// Validate checks settings that have no usable default.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.NewsAPI.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if c.NewsAPI.PageSize < 1 || c.NewsAPI.PageSize > 100 {
		return ErrInvalidPageSize
	}
	switch c.Translation.Provider {
	case "google", "ollama":
	default:
		return ErrUnknownProvider
	}
	if _, err := c.NewsAPI.GetTimeout(); err != nil {
		return fmt.Errorf("parsing newsapi.timeout: %w", err)
	}
	if _, err := c.Translation.GetTimeout(); err != nil {
		return fmt.Errorf("parsing translation.timeout: %w", err)
	}
	return nil
}

// Save writes configuration to file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// DefaultConfigPath returns the default configuration file path
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".config", "newsagg", "config.yaml")
}
