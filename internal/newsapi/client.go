// Package newsapi fetches headlines and search results from a NewsAPI-compatible
// service and normalizes them into transient articles.
package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/thomaskoefod/newsagg/internal/logging"
	"github.com/thomaskoefod/newsagg/pkg/models"
)

const (
	DefaultBaseURL  = "https://newsapi.org/v2"
	DefaultPageSize = 20
	DefaultTimeout  = 10 * time.Second
	DefaultCountry  = "us"

	// APIKeyHeader carries the API key on every request.
	APIKeyHeader = "X-Api-Key"

	removedTitle = "[Removed]"
)

type Mode int

const (
	ModeTopHeadlines Mode = iota
	ModeSearch
)

func (m Mode) String() string {
	switch m {
	case ModeTopHeadlines:
		return "top-headlines"
	case ModeSearch:
		return "search"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Query describes one page of upstream results.
type Query struct {
	Mode     Mode
	Category string
	// Source is an upstream source id. When set, Category and the country
	// filter are not sent.
	Source   string
	Text     string
	Page     int
	PageSize int
}

// Options configures a Client. Zero values fall back to the package defaults.
type Options struct {
	BaseURL  string
	APIKey   string
	Country  string
	PageSize int
	Timeout  time.Duration
	Logger   *zap.Logger
}

type Client struct {
	baseURL  string
	apiKey   string
	country  string
	pageSize int
	client   *http.Client
	logger   *zap.Logger
}

// RawArticle is one element of the upstream "articles" array.
type RawArticle struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Content     string     `json:"content"`
	URL         string     `json:"url"`
	URLToImage  string     `json:"urlToImage"`
	Source      *RawSource `json:"source"`
}

type RawSource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type response struct {
	Status   string            `json:"status"`
	Articles []json.RawMessage `json:"articles"`
}

func NewClient(opts Options) *Client {
	c := &Client{
		baseURL:  opts.BaseURL,
		apiKey:   opts.APIKey,
		country:  opts.Country,
		pageSize: opts.PageSize,
		logger:   logging.OrNop(opts.Logger),
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.country == "" {
		c.country = DefaultCountry
	}
	if c.pageSize <= 0 {
		c.pageSize = DefaultPageSize
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c.client = &http.Client{Timeout: timeout}
	return c
}

// TopHeadlines fetches one page of top headlines, filtered by category or source.
func (c *Client) TopHeadlines(ctx context.Context, category, source string, page int) []models.TransientArticle {
	return c.Fetch(ctx, Query{Mode: ModeTopHeadlines, Category: category, Source: source, Page: page})
}

// Search fetches one page of articles matching text, ordered by relevancy.
func (c *Client) Search(ctx context.Context, text string, page int) []models.TransientArticle {
	return c.Fetch(ctx, Query{Mode: ModeSearch, Text: text, Page: page})
}

// Fetch issues a single upstream request and returns the normalized articles
// in upstream order. Any transport or status failure yields an empty result.
func (c *Client) Fetch(ctx context.Context, q Query) []models.TransientArticle {
	log := c.logger.With(zap.Stringer("mode", q.Mode), zap.Int("page", q.Page))

	endpoint, err := c.buildURL(q)
	if err != nil {
		log.Warn("building news request", zap.Error(err))
		return []models.TransientArticle{}
	}

	raw, err := c.get(ctx, endpoint)
	if err != nil {
		log.Warn("fetching news", zap.Error(err))
		return []models.TransientArticle{}
	}

	articles := Normalize(decodeArticles(raw, log))
	if q.Mode == ModeTopHeadlines && q.Source == "" {
		for i := range articles {
			articles[i].Category = q.Category
		}
	}
	log.Debug("fetched news", zap.Int("raw", len(raw)), zap.Int("kept", len(articles)))
	return articles
}

func (c *Client) buildURL(q Query) (string, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = c.pageSize
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("pageSize", strconv.Itoa(pageSize))

	var path string
	switch q.Mode {
	case ModeTopHeadlines:
		path = "/top-headlines"
		if q.Source != "" {
			params.Set("sources", q.Source)
		} else {
			params.Set("country", c.country)
			if q.Category != "" {
				params.Set("category", q.Category)
			}
		}
	case ModeSearch:
		path = "/everything"
		params.Set("q", q.Text)
		params.Set("sortBy", "relevancy")
	default:
		return "", fmt.Errorf("unknown mode %s", q.Mode)
	}

	return c.baseURL + path + "?" + params.Encode(), nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "newsagg/1.0")
	// The key stays out of the URL, which ends up in transport errors and logs.
	req.Header.Set(APIKeyHeader, c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("news API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return result.Articles, nil
}

// decodeArticles decodes each element on its own so one malformed record does
// not discard the page.
func decodeArticles(raw []json.RawMessage, log *zap.Logger) []RawArticle {
	out := make([]RawArticle, 0, len(raw))
	for i, msg := range raw {
		var a RawArticle
		if err := json.Unmarshal(msg, &a); err != nil {
			log.Debug("skipping malformed article", zap.Int("index", i), zap.Error(err))
			continue
		}
		out = append(out, a)
	}
	return out
}

// Normalize applies the title gate, cleans content and drops articles with
// nothing to show.
func Normalize(raw []RawArticle) []models.TransientArticle {
	articles := make([]models.TransientArticle, 0, len(raw))
	for _, a := range raw {
		if a.Title == "" || a.Title == removedTitle {
			continue
		}

		content := Clean(a.Content)
		if content == "" && a.Description == "" {
			continue
		}

		source := ""
		if a.Source != nil {
			source = a.Source.Name
		}

		articles = append(articles, models.TransientArticle{
			Title:       a.Title,
			Description: a.Description,
			Content:     content,
			URL:         a.URL,
			ImageURL:    a.URLToImage,
			Source:      source,
		})
	}
	return articles
}
