package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

var (
	ErrArticleNotFound = errors.New("article not found")
)

type DB struct {
	*sql.DB
	clock func() time.Time
}

// New creates a new database connection and initializes schema. Pass
// ":memory:" for a private in-memory database.
func New(dbPath string) (*DB, error) {
	if dbPath != ":memory:" {
		// Ensure directory exists
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// One connection serializes every transaction against the store and
	// keeps :memory: contents in place.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	d := &DB{DB: db}
	if err := d.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return d, nil
}

// connPragmas are applied by the driver to every new connection.
var connPragmas = []string{
	"foreign_keys(1)",
	"busy_timeout(5000)",
}

// dsn appends the connection pragmas to dbPath.
func dsn(dbPath string) string {
	params := url.Values{}
	for _, p := range connPragmas {
		params.Add("_pragma", p)
	}
	return dbPath + "?" + params.Encode()
}

// initSchema creates database tables if they don't exist
func (db *DB) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS articles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL UNIQUE,
			image_url TEXT,
			source TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		);

		CREATE TABLE IF NOT EXISTS saved_articles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			article_id INTEGER NOT NULL,
			saved_at TIMESTAMP NOT NULL,
			UNIQUE (user_id, article_id),
			FOREIGN KEY (article_id) REFERENCES articles(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_saved_articles_user_saved_at ON saved_articles(user_id, saved_at);
		CREATE INDEX IF NOT EXISTS idx_saved_articles_article_id ON saved_articles(article_id);
		CREATE INDEX IF NOT EXISTS idx_articles_source ON articles(source);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	return nil
}

// inTx runs fn inside a transaction, committing when fn returns nil.
func (db *DB) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
