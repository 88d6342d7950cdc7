// Package translate translates article text through a pluggable provider.
package translate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/thomaskoefod/newsagg/internal/config"
	"github.com/thomaskoefod/newsagg/internal/logging"
	"github.com/thomaskoefod/newsagg/pkg/models"
)

// Provider translates text into the target language.
type Provider interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// Language is a translation target offered to readers.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var Languages = []Language{
	{Code: "uk", Name: "Українська"},
	{Code: "en", Name: "English"},
	{Code: "fr", Name: "Français"},
	{Code: "de", Name: "Deutsch"},
	{Code: "es", Name: "Español"},
	{Code: "it", Name: "Italiano"},
	{Code: "pl", Name: "Polski"},
}

// Supported reports whether code is one of Languages.
func Supported(code string) bool {
	for _, l := range Languages {
		if l.Code == code {
			return true
		}
	}
	return false
}

// TranslateArticle translates the title, description and content of a. The fields
// share one failure scope: if any translation fails the original article is
// returned unchanged along with false.
func TranslateArticle(ctx context.Context, p Provider, a models.TransientArticle, targetLang string, logger *zap.Logger) (models.TransientArticle, bool) {
	logger = logging.OrNop(logger)
	translated := a

	fields := []*string{&translated.Title, &translated.Description, &translated.Content}
	for _, field := range fields {
		if *field == "" {
			continue
		}
		out, err := p.Translate(ctx, *field, targetLang)
		if err != nil {
			logger.Warn("article translation failed",
				zap.String("url", a.URL),
				zap.String("lang", targetLang),
				zap.Error(err))
			return a, false
		}
		*field = out
	}
	return translated, true
}

// FromConfig builds the provider selected by cfg.Translation.Provider.
func FromConfig(cfg *config.Config) (Provider, error) {
	timeout, err := cfg.Translation.GetTimeout()
	if err != nil {
		return nil, fmt.Errorf("parsing translation.timeout: %w", err)
	}
	switch cfg.Translation.Provider {
	case "google":
		return NewGoogle(cfg.Translation.BaseURL, timeout), nil
	case "ollama":
		return NewOllama(cfg.Ollama.Host, cfg.Ollama.Model, timeout), nil
	default:
		return nil, config.ErrUnknownProvider
	}
}
