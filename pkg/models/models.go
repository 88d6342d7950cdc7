package models

import "time"

// TransientArticle is a normalized article as returned by an ingestion source.
// It is never persisted on its own; saving one produces an Article.
type TransientArticle struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	Content     string `json:"content" form:"content"`
	URL         string `json:"url" form:"url"`
	ImageURL    string `json:"image_url" form:"image_url"`
	Source      string `json:"source" form:"source"`
	Category    string `json:"category,omitempty" form:"category"`
}

// Article is the canonical stored copy of an article, shared by every user
// that saved its URL.
type Article struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	URL         string    `json:"url"`
	ImageURL    string    `json:"image_url,omitempty"`
	Source      string    `json:"source"`
	CreatedAt   time.Time `json:"created_at"`
}

// Transient returns the article's fields without its storage identity.
func (a Article) Transient() TransientArticle {
	return TransientArticle{
		Title:       a.Title,
		Description: a.Description,
		Content:     a.Content,
		URL:         a.URL,
		ImageURL:    a.ImageURL,
		Source:      a.Source,
	}
}

// SavedArticle records that one user saved one canonical article.
type SavedArticle struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	ArticleID int64     `json:"article_id"`
	SavedAt   time.Time `json:"saved_at"`
}

// SavedEntry pairs a save reference with the article it points to.
type SavedEntry struct {
	Saved   SavedArticle `json:"saved"`
	Article Article      `json:"article"`
}

type Feed struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}
