package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/thomaskoefod/newsagg/pkg/models"
)

const articleColumns = "a.id, a.title, a.description, a.content, a.url, a.image_url, a.source, a.created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner, extra ...any) (models.Article, error) {
	var article models.Article
	var imageURL sql.NullString
	dest := append([]any{
		&article.ID, &article.Title, &article.Description, &article.Content,
		&article.URL, &imageURL, &article.Source, &article.CreatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return models.Article{}, err
	}
	article.ImageURL = imageURL.String
	return article, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// SaveArticle stores the canonical article for fields.URL if it does not exist
// yet and records that userID saved it. Existing canonical rows are never
// updated. created reports whether the save reference is new.
func (db *DB) SaveArticle(ctx context.Context, userID string, fields models.TransientArticle) (entry models.SavedEntry, created bool, err error) {
	now := db.now()

	err = db.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO articles (title, description, content, url, image_url, source, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (url) DO NOTHING`,
			fields.Title, fields.Description, fields.Content, fields.URL,
			nullable(fields.ImageURL), fields.Source, now,
		)
		if err != nil {
			return fmt.Errorf("inserting article: %w", err)
		}

		entry.Article, err = scanArticle(tx.QueryRowContext(ctx,
			"SELECT "+articleColumns+" FROM articles a WHERE a.url = ?", fields.URL))
		if err != nil {
			return fmt.Errorf("querying article: %w", err)
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO saved_articles (user_id, article_id, saved_at)
			VALUES (?, ?, ?)
			ON CONFLICT (user_id, article_id) DO NOTHING`,
			userID, entry.Article.ID, now,
		)
		if err != nil {
			return fmt.Errorf("inserting saved article: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("getting rows affected: %w", err)
		}
		created = n == 1

		err = tx.QueryRowContext(ctx,
			"SELECT id, user_id, article_id, saved_at FROM saved_articles WHERE user_id = ? AND article_id = ?",
			userID, entry.Article.ID,
		).Scan(&entry.Saved.ID, &entry.Saved.UserID, &entry.Saved.ArticleID, &entry.Saved.SavedAt)
		if err != nil {
			return fmt.Errorf("querying saved article: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.SavedEntry{}, false, err
	}
	return entry, created, nil
}

// RemoveSaved deletes userID's save reference to articleID and, in the same
// transaction, deletes the article when no reference to it remains. Removing
// a reference that does not exist is not an error.
func (db *DB) RemoveSaved(ctx context.Context, userID string, articleID int64) (removed, reaped bool, err error) {
	err = db.inTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			"DELETE FROM saved_articles WHERE user_id = ? AND article_id = ?", userID, articleID)
		if err != nil {
			return fmt.Errorf("deleting saved article: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("getting rows affected: %w", err)
		}
		removed = n > 0

		reaped, err = deleteIfOrphaned(ctx, tx, articleID)
		return err
	})
	if err != nil {
		return false, false, err
	}
	return removed, reaped, nil
}

// deleteIfOrphaned deletes the article only if nothing references it. The
// check and the delete are one statement.
func deleteIfOrphaned(ctx context.Context, tx *sql.Tx, articleID int64) (bool, error) {
	result, err := tx.ExecContext(ctx, `
		DELETE FROM articles
		WHERE id = ?
		  AND NOT EXISTS (SELECT 1 FROM saved_articles WHERE article_id = ?)`,
		articleID, articleID,
	)
	if err != nil {
		return false, fmt.Errorf("deleting orphaned article: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}
	return n > 0, nil
}

// ListSaved returns userID's saved articles, newest save first. An empty
// source matches every source.
func (db *DB) ListSaved(ctx context.Context, userID, source string) ([]models.SavedEntry, error) {
	query := `
		SELECT ` + articleColumns + `, s.id, s.user_id, s.article_id, s.saved_at
		FROM saved_articles s
		INNER JOIN articles a ON a.id = s.article_id
		WHERE s.user_id = ? AND (? = '' OR a.source = ?)
		ORDER BY s.saved_at DESC, s.id DESC
	`

	rows, err := db.QueryContext(ctx, query, userID, source, source)
	if err != nil {
		return nil, fmt.Errorf("querying saved articles: %w", err)
	}
	defer rows.Close()

	entries := []models.SavedEntry{}
	for rows.Next() {
		var entry models.SavedEntry
		entry.Article, err = scanArticle(rows,
			&entry.Saved.ID, &entry.Saved.UserID, &entry.Saved.ArticleID, &entry.Saved.SavedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning saved article: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// SavedURLs returns the URLs of every article userID has saved.
func (db *DB) SavedURLs(ctx context.Context, userID string) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT a.url FROM saved_articles s
		INNER JOIN articles a ON a.id = s.article_id
		WHERE s.user_id = ?
		ORDER BY s.saved_at DESC, s.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying saved urls: %w", err)
	}
	defer rows.Close()

	urls := []string{}
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scanning saved url: %w", err)
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

// GetArticleByURL retrieves a canonical article by its URL
func (db *DB) GetArticleByURL(ctx context.Context, url string) (*models.Article, error) {
	article, err := scanArticle(db.QueryRowContext(ctx,
		"SELECT "+articleColumns+" FROM articles a WHERE a.url = ?", url))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrArticleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying article: %w", err)
	}
	return &article, nil
}

// IsSaved reports whether userID has saved articleID
func (db *DB) IsSaved(ctx context.Context, userID string, articleID int64) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM saved_articles WHERE user_id = ? AND article_id = ?)",
		userID, articleID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking saved article: %w", err)
	}
	return exists, nil
}

func (db *DB) now() time.Time {
	if db.clock != nil {
		return db.clock().UTC()
	}
	return time.Now().UTC()
}
