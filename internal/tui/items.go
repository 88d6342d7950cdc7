package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/thomaskoefod/newsagg/pkg/models"
)

// articleItem is a row in either listing. articleID is set for reading-list
// rows only.
type articleItem struct {
	article   models.TransientArticle
	articleID int64
	saved     bool
}

func (i articleItem) Title() string {
	if i.saved {
		return "★ " + i.article.Title
	}
	return i.article.Title
}

func (i articleItem) Description() string {
	if i.article.Category != "" {
		return fmt.Sprintf("%s | %s", i.article.Source, i.article.Category)
	}
	return i.article.Source
}

func (i articleItem) FilterValue() string {
	return i.article.Title
}

var _ list.Item = articleItem{}
