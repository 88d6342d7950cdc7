// Package feed is an ingestion mode for configured RSS and Atom feeds.
package feed

import (
	"context"
	"fmt"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/thomaskoefod/newsagg/internal/logging"
	"github.com/thomaskoefod/newsagg/internal/newsapi"
	"github.com/thomaskoefod/newsagg/pkg/models"
)

type Fetcher struct {
	feeds     []models.Feed
	parser    *gofeed.Parser
	converter *md.Converter
	timeout   time.Duration
	logger    *zap.Logger
}

func NewFetcher(feeds []models.Feed, timeout time.Duration, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		feeds:     feeds,
		parser:    gofeed.NewParser(),
		converter: newTextConverter(),
		timeout:   timeout,
		logger:    logging.OrNop(logger),
	}
}

// newTextConverter renders feed HTML as readable text: media is dropped and
// links keep only their text, so markup never counts toward content length.
func newTextConverter() *md.Converter {
	conv := md.NewConverter("", true, nil)
	conv.Remove("img", "picture", "figure", "video", "audio", "iframe", "script", "style", "noscript")
	conv.AddRules(md.Rule{
		Filter: []string{"a"},
		Replacement: func(content string, _ *goquery.Selection, _ *md.Options) *string {
			return md.String(content)
		},
	})
	return conv
}

// toText converts HTML to text. Text without markup is returned as is.
func (f *Fetcher) toText(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	out, err := f.converter.ConvertString(s)
	if err != nil {
		f.logger.Debug("converting feed html", zap.Error(err))
		return ""
	}
	return strings.TrimSpace(out)
}

// Feeds returns the configured feeds.
func (f *Fetcher) Feeds() []models.Feed {
	return f.feeds
}

// FetchFeed fetches and parses an RSS feed
func (f *Fetcher) FetchFeed(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing feed %s: %w", feedURL, err)
	}
	return feed, nil
}

// Fetch returns the normalized articles of the feed called name. Unknown
// feeds and fetch failures yield an empty slice.
func (f *Fetcher) Fetch(ctx context.Context, name string) []models.TransientArticle {
	for _, fd := range f.feeds {
		if fd.Name != name {
			continue
		}
		parsed, err := f.FetchFeed(ctx, fd.URL)
		if err != nil {
			f.logger.Warn("feed fetch failed", zap.String("feed", fd.Name), zap.Error(err))
			return []models.TransientArticle{}
		}
		return newsapi.Normalize(f.convertItems(parsed, fd.Name))
	}

	f.logger.Warn("unknown feed", zap.String("feed", name))
	return []models.TransientArticle{}
}

// convertItems maps feed items onto the raw upstream shape so they pass
// through the same normalization as news API results.
func (f *Fetcher) convertItems(parsed *gofeed.Feed, feedName string) []newsapi.RawArticle {
	source := feedName
	if source == "" {
		source = parsed.Title
	}

	raw := make([]newsapi.RawArticle, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}

		// Prefer content over description
		description := f.toText(item.Description)
		content := f.toText(item.Content)
		if content == "" {
			content = description
		}

		image := ""
		if item.Image != nil {
			image = item.Image.URL
		}

		raw = append(raw, newsapi.RawArticle{
			Title:       item.Title,
			Description: description,
			Content:     content,
			URL:         item.Link,
			URLToImage:  image,
			Source:      &newsapi.RawSource{Name: source},
		})
	}
	return raw
}
