// Package raindrop exports reading-list articles to Raindrop.io.
package raindrop

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/thomaskoefod/newsagg/pkg/models"
)

const DefaultBaseURL = "https://api.raindrop.io/rest/v1"

var ErrNoToken = errors.New("raindrop api token is not configured")

// APIError is a non-200 answer from the Raindrop API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Raindrop API error (status %d): %s", e.StatusCode, e.Body)
}

type Client struct {
	baseURL  string
	apiToken string
	client   *http.Client
}

// Bookmark is the subset of a raindrop the exporter writes.
type Bookmark struct {
	Link    string   `json:"link"`
	Title   string   `json:"title"`
	Excerpt string   `json:"excerpt,omitempty"`
	Cover   string   `json:"cover,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

type bookmarkResponse struct {
	Result       bool   `json:"result"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

func NewClient(baseURL, apiToken string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiToken: apiToken,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Configured reports whether an API token is set.
func (c *Client) Configured() bool {
	return c.apiToken != ""
}

// Export bookmarks an article, tagged with its source.
func (c *Client) Export(ctx context.Context, article models.TransientArticle) error {
	b := Bookmark{
		Link:    article.URL,
		Title:   article.Title,
		Excerpt: article.Description,
		Cover:   article.ImageURL,
	}
	if article.Source != "" {
		b.Tags = []string{article.Source}
	}

	jsonData, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshaling bookmark: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/raindrop", bytes.NewReader(jsonData))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var result bookmarkResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if !result.Result {
		return fmt.Errorf("Raindrop API returned failure: %s", result.ErrorMessage)
	}
	return nil
}

// TestConnection checks the API token against the user endpoint
func (c *Client) TestConnection(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/user", nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	if !c.Configured() {
		return nil, ErrNoToken
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request to Raindrop: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(msg)}
	}
	return resp, nil
}
