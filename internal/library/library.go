// Package library manages users' reading lists: saving articles, removing
// them and listing what a user has kept.
package library

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/thomaskoefod/newsagg/internal/logging"
	"github.com/thomaskoefod/newsagg/pkg/models"
)

var (
	// ErrUnauthorized is returned for every operation attempted without a user.
	ErrUnauthorized = errors.New("must log in")
	ErrMissingURL   = errors.New("article url is required")
)

// Anonymous is the user id of an unauthenticated caller.
const Anonymous = ""

// Store is the persistence the library needs.
type Store interface {
	SaveArticle(ctx context.Context, userID string, fields models.TransientArticle) (models.SavedEntry, bool, error)
	RemoveSaved(ctx context.Context, userID string, articleID int64) (removed, reaped bool, err error)
	ListSaved(ctx context.Context, userID, source string) ([]models.SavedEntry, error)
	SavedURLs(ctx context.Context, userID string) ([]string, error)
	GetArticleByURL(ctx context.Context, url string) (*models.Article, error)
	IsSaved(ctx context.Context, userID string, articleID int64) (bool, error)
}

// Filters narrows ListSaved.
type Filters struct {
	Source   string
	Category string
}

type Library struct {
	store  Store
	logger *zap.Logger
}

func New(store Store, logger *zap.Logger) *Library {
	return &Library{store: store, logger: logging.OrNop(logger)}
}

// Save adds the article to user's reading list, storing its canonical copy on
// first save. created is false when the user had already saved the URL.
func (l *Library) Save(ctx context.Context, user string, fields models.TransientArticle) (models.SavedArticle, bool, error) {
	if user == Anonymous {
		return models.SavedArticle{}, false, ErrUnauthorized
	}
	fields.URL = strings.TrimSpace(fields.URL)
	if fields.URL == "" {
		return models.SavedArticle{}, false, ErrMissingURL
	}
	if strings.TrimSpace(fields.Title) == "" {
		fields.Title = fields.URL
	}

	entry, created, err := l.store.SaveArticle(ctx, user, fields)
	if err != nil {
		return models.SavedArticle{}, false, err
	}
	l.logger.Debug("saved article",
		zap.String("user", user),
		zap.Int64("article_id", entry.Article.ID),
		zap.Bool("created", created))
	return entry.Saved, created, nil
}

// Remove drops articleID from user's reading list. The canonical article is
// deleted with the last reference to it.
func (l *Library) Remove(ctx context.Context, user string, articleID int64) error {
	if user == Anonymous {
		return ErrUnauthorized
	}
	removed, reaped, err := l.store.RemoveSaved(ctx, user, articleID)
	if err != nil {
		return err
	}
	l.logger.Debug("removed article",
		zap.String("user", user),
		zap.Int64("article_id", articleID),
		zap.Bool("removed", removed),
		zap.Bool("reaped", reaped))
	return nil
}

// ListSaved returns user's saved articles, most recently saved first.
//
// Canonical articles carry no category, so a category filter matches nothing.
func (l *Library) ListSaved(ctx context.Context, user string, f Filters) ([]models.SavedEntry, error) {
	if user == Anonymous {
		return nil, ErrUnauthorized
	}
	if f.Category != "" {
		l.logger.Warn("category filter on saved articles matches nothing: saved articles do not store a category",
			zap.String("category", f.Category))
		return []models.SavedEntry{}, nil
	}
	return l.store.ListSaved(ctx, user, f.Source)
}

// SavedURLs returns the URLs user has saved; anonymous users have none.
func (l *Library) SavedURLs(ctx context.Context, user string) ([]string, error) {
	if user == Anonymous {
		return []string{}, nil
	}
	return l.store.SavedURLs(ctx, user)
}

// Article looks up a canonical article by URL and whether user saved it.
func (l *Library) Article(ctx context.Context, user, url string) (*models.Article, bool, error) {
	article, err := l.store.GetArticleByURL(ctx, url)
	if err != nil {
		return nil, false, err
	}
	if user == Anonymous {
		return article, false, nil
	}
	saved, err := l.store.IsSaved(ctx, user, article.ID)
	if err != nil {
		return nil, false, err
	}
	return article, saved, nil
}
