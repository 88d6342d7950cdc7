package main

import (
	"fmt"

	"github.com/thomaskoefod/newsagg/internal/config"
	"github.com/thomaskoefod/newsagg/internal/database"
	"github.com/thomaskoefod/newsagg/internal/feed"
	"github.com/thomaskoefod/newsagg/internal/i18n"
	"github.com/thomaskoefod/newsagg/internal/library"
	"github.com/thomaskoefod/newsagg/internal/newsapi"
	"github.com/thomaskoefod/newsagg/internal/translate"
	"github.com/thomaskoefod/newsagg/pkg/models"
)

// app holds the components shared by the subcommands.
type app struct {
	cfg        *config.Config
	db         *database.DB
	news       *newsapi.Client
	feeds      *feed.Fetcher
	lib        *library.Library
	translator translate.Provider
	catalog    *i18n.Catalog
}

func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	timeout, err := cfg.NewsAPI.GetTimeout()
	if err != nil {
		return nil, err
	}

	translator, err := translate.FromConfig(cfg)
	if err != nil {
		return nil, err
	}

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	feeds := make([]models.Feed, 0, len(cfg.Feeds))
	for _, f := range cfg.Feeds {
		feeds = append(feeds, models.Feed{URL: f.URL, Name: f.Name})
	}

	return &app{
		cfg: cfg,
		db:  db,
		news: newsapi.NewClient(newsapi.Options{
			BaseURL:  cfg.NewsAPI.BaseURL,
			APIKey:   cfg.NewsAPI.APIKey,
			Country:  cfg.NewsAPI.Country,
			PageSize: cfg.NewsAPI.PageSize,
			Timeout:  timeout,
			Logger:   logger,
		}),
		feeds:      feed.NewFetcher(feeds, timeout, logger),
		lib:        library.New(db, logger),
		translator: translator,
		catalog:    i18n.New(cfg.I18n.Labels),
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}
