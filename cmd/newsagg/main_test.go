package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomaskoefod/newsagg/internal/config"
	"github.com/thomaskoefod/newsagg/pkg/models"
)

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "tui", "headlines", "search", "status", "config"} {
		assert.True(t, names[want], want)
	}
}

func TestPrintArticles(t *testing.T) {
	var buf bytes.Buffer
	printArticles(&buf, []models.TransientArticle{
		{Title: "One", URL: "https://example.com/1", Source: "BBC News", Content: "Body  text\nhere"},
		{Title: "Two", URL: "https://example.com/2", Description: "Only a description"},
	})

	out := buf.String()
	assert.Contains(t, out, "1. One (BBC News)\n   https://example.com/1\n   Body text here\n")
	assert.Contains(t, out, "2. Two\n")
	assert.Contains(t, out, "   Only a description\n")

	buf.Reset()
	printArticles(&buf, nil)
	assert.Equal(t, "No articles found.\n", buf.String())
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "short", snippet("short", 10))
	assert.Equal(t, "ąęść…", snippet(strings.Repeat("ąęść", 3), 4))
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		configPath = config.DefaultConfigPath()
		configForce = false
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestConfigInit(t *testing.T) {
	t.Setenv("NEWS_API_KEY", "env-only-key")
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	out, err := runRoot(t, "config", "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "env-only-key")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://newsapi.org/v2", cfg.NewsAPI.BaseURL)
	assert.Equal(t, ":8080", cfg.Server.Addr)

	require.NoError(t, os.WriteFile(path, []byte("server: [broken"), 0644))
	_, err = runRoot(t, "config", "init", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = runRoot(t, "config", "init", "--config", path, "--force")
	require.NoError(t, err)
	_, err = config.Load(path)
	assert.NoError(t, err)
}
