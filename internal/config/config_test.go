package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"NEWS_API_KEY", "NEWSAGG_DB_PATH", "NEWSAGG_ADDR", "RAINDROP_API_TOKEN", "NEWSAGG_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	// godotenv reads .env from the working directory
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "https://newsapi.org/v2", cfg.NewsAPI.BaseURL)
	assert.Equal(t, "us", cfg.NewsAPI.Country)
	assert.Equal(t, 20, cfg.NewsAPI.PageSize)
	assert.Equal(t, "10s", cfg.NewsAPI.Timeout)
	assert.Equal(t, "google", cfg.Translation.Provider)
	assert.Equal(t, "en", cfg.Server.DefaultLanguage)
	assert.Equal(t, "X-Authenticated-User", cfg.Server.UserHeader)
	assert.NotContains(t, cfg.Database.Path, "~")
}

func TestLoad_FileAndEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
newsapi:
  api_key: from-file
  page_size: 50
feeds:
  - url: https://example.com/rss
    name: Example
i18n:
  labels:
    de:
      "Article not found.": "Artikel nicht gefunden."
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	t.Run("file values", func(t *testing.T) {
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "from-file", cfg.NewsAPI.APIKey)
		assert.Equal(t, 50, cfg.NewsAPI.PageSize)
		require.Len(t, cfg.Feeds, 1)
		assert.Equal(t, "Example", cfg.Feeds[0].Name)
		assert.Equal(t, "Artikel nicht gefunden.", cfg.I18n.Labels["de"]["Article not found."])
	})

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv("NEWS_API_KEY", "from-env")
		t.Setenv("NEWSAGG_ADDR", ":9999")
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.NewsAPI.APIKey)
		assert.Equal(t, ":9999", cfg.Server.Addr)
	})
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("newsapi: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := &Config{NewsAPI: NewsAPIConfig{APIKey: "k"}}
		c.applyDefaults()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing key", mutate: func(c *Config) { c.NewsAPI.APIKey = " " }, wantErr: ErrMissingAPIKey},
		{name: "page size too big", mutate: func(c *Config) { c.NewsAPI.PageSize = 101 }, wantErr: ErrInvalidPageSize},
		{name: "unknown provider", mutate: func(c *Config) { c.Translation.Provider = "deepl" }, wantErr: ErrUnknownProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("bad timeout", func(t *testing.T) {
		c := valid()
		c.NewsAPI.Timeout = "ten seconds"
		assert.Error(t, c.Validate())
	})
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := &Config{NewsAPI: NewsAPIConfig{APIKey: "abc", Country: "gb"}}
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", loaded.NewsAPI.APIKey)
	assert.Equal(t, "gb", loaded.NewsAPI.Country)
}

func TestDefaultIgnoresEnvironment(t *testing.T) {
	t.Setenv("NEWS_API_KEY", "from-env")

	cfg := Default()
	assert.Empty(t, cfg.NewsAPI.APIKey)
	assert.Equal(t, "us", cfg.NewsAPI.Country)
	assert.Equal(t, "https://api.raindrop.io/rest/v1", cfg.Raindrop.BaseURL)
}
