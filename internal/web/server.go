// Package web exposes the aggregator over a JSON HTTP API.
package web

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thomaskoefod/newsagg/internal/config"
	"github.com/thomaskoefod/newsagg/internal/i18n"
	"github.com/thomaskoefod/newsagg/internal/library"
	"github.com/thomaskoefod/newsagg/internal/logging"
	"github.com/thomaskoefod/newsagg/internal/newsapi"
	"github.com/thomaskoefod/newsagg/internal/status"
	"github.com/thomaskoefod/newsagg/internal/translate"
	"github.com/thomaskoefod/newsagg/pkg/models"
)

// ReadLaterPageSize is the number of saved articles per reading-list page.
const ReadLaterPageSize = 20

// Headlines is the news API ingestion source.
type Headlines interface {
	Fetch(ctx context.Context, q newsapi.Query) []models.TransientArticle
}

// Feeds is the configured-feed ingestion source.
type Feeds interface {
	Feeds() []models.Feed
	Fetch(ctx context.Context, name string) []models.TransientArticle
}

// Deps are the collaborators behind the API. Feeds, Translator and Probes
// may be nil.
type Deps struct {
	News          Headlines
	Feeds         Feeds
	Library       *library.Library
	Translator    translate.Provider
	Catalog       *i18n.Catalog
	Probes        []status.Probe
	StatusTimeout time.Duration
	Server        config.ServerConfig
	// TranslateTarget is the language used when a translate request names none.
	TranslateTarget string
	Logger          *zap.Logger
}

type server struct {
	Deps
	log *zap.Logger
}

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(d Deps) *gin.Engine {
	s := &server{Deps: d, log: logging.OrNop(d.Logger)}
	if s.Server.UserHeader == "" {
		s.Server.UserHeader = "X-Authenticated-User"
	}
	if s.Server.DefaultLanguage == "" {
		s.Server.DefaultLanguage = "en"
	}
	if s.TranslateTarget == "" {
		s.TranslateTarget = "uk"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestID(), accessLog(s.log))
	r.Use(authenticate(s.Server.UserHeader), language(s.Server.DefaultLanguage))

	api := r.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/news", s.handleNews)
	api.GET("/article", s.handleArticle)
	api.POST("/article/translate", s.handleTranslate)
	api.GET("/status", s.handleStatus)

	readLater := api.Group("/read-later", s.requireUser())
	readLater.GET("", s.handleReadLater)
	readLater.POST("", s.handleSave)
	readLater.DELETE("/:id", s.handleRemove)

	return r
}
