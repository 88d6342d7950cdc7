// Package status probes the upstream services the aggregator depends on.
package status

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/thomaskoefod/newsagg/internal/config"
	"github.com/thomaskoefod/newsagg/internal/newsapi"
	"github.com/thomaskoefod/newsagg/internal/raindrop"
)

const DefaultTimeout = 5 * time.Second

type State string

const (
	StateAvailable   State = "available"
	StateError       State = "error"
	StateUnavailable State = "unavailable"
)

// Probe checks one upstream. Check returns the HTTP status code it received,
// or an error when no response arrived.
type Probe struct {
	Name  string
	Check func(ctx context.Context) (int, error)
}

type Result struct {
	Name  string `json:"name"`
	State State  `json:"state"`
	Code  int    `json:"code,omitempty"`
	// Error is for logs only; it may name internal hosts.
	Error string `json:"-"`
}

// Text renders the result for display. label translates the words
// "Available", "Error" and "Unavailable"; nil leaves them in English.
func (r Result) Text(label func(string) string) string {
	if label == nil {
		label = func(s string) string { return s }
	}
	switch r.State {
	case StateAvailable:
		return fmt.Sprintf("🟢 %s | %d", label("Available"), r.Code)
	case StateError:
		return fmt.Sprintf("🟠 %s %d", label("Error"), r.Code)
	default:
		return "🔴 " + label("Unavailable")
	}
}

// Run executes every probe concurrently, bounded by timeout. Results keep
// the order of probes.
func Run(ctx context.Context, probes []Probe, timeout time.Duration) []Result {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	results := make([]Result, len(probes))
	var g errgroup.Group
	for i, p := range probes {
		g.Go(func() error {
			results[i] = run(ctx, p)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func run(ctx context.Context, p Probe) Result {
	res := Result{Name: p.Name}
	code, err := p.Check(ctx)
	switch {
	case err != nil:
		res.State = StateUnavailable
		res.Error = err.Error()
	case code == http.StatusOK:
		res.State = StateAvailable
		res.Code = code
	default:
		res.State = StateError
		res.Code = code
	}
	return res
}

// HTTPCheck issues a GET to target with header and reports the response
// status. Credentials belong in header so they never appear in errors.
func HTTPCheck(client *http.Client, target string, header http.Header) func(context.Context) (int, error) {
	return func(ctx context.Context) (int, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return 0, fmt.Errorf("creating request: %w", err)
		}
		for k, v := range header {
			req.Header[k] = v
		}
		resp, err := client.Do(req)
		if err != nil {
			return 0, err
		}
		resp.Body.Close()
		return resp.StatusCode, nil
	}
}

// DefaultProbes builds the probes for the configured upstreams.
func DefaultProbes(cfg *config.Config, client *http.Client) []Probe {
	if client == nil {
		client = http.DefaultClient
	}

	news := url.Values{}
	news.Set("country", "us")
	newsHeader := http.Header{}
	newsHeader.Set(newsapi.APIKeyHeader, cfg.NewsAPI.APIKey)

	gtx := url.Values{}
	gtx.Set("client", "gtx")
	gtx.Set("sl", "en")
	gtx.Set("tl", "uk")
	gtx.Set("dt", "t")
	gtx.Set("q", "hello")

	probes := []Probe{
		{
			Name:  "NewsAPI",
			Check: HTTPCheck(client, strings.TrimRight(cfg.NewsAPI.BaseURL, "/")+"/top-headlines?"+news.Encode(), newsHeader),
		},
	}

	switch cfg.Translation.Provider {
	case "ollama":
		probes = append(probes, Probe{
			Name:  "Ollama",
			Check: HTTPCheck(client, strings.TrimRight(cfg.Ollama.Host, "/")+"/api/tags", nil),
		})
	default:
		probes = append(probes, Probe{
			Name:  "Google Translate",
			Check: HTTPCheck(client, strings.TrimRight(cfg.Translation.BaseURL, "/")+"/translate_a/single?"+gtx.Encode(), nil),
		})
	}
	if cfg.Raindrop.APIToken != "" {
		rd := raindrop.NewClient(cfg.Raindrop.BaseURL, cfg.Raindrop.APIToken)
		probes = append(probes, Probe{Name: "Raindrop.io", Check: raindropCheck(rd)})
	}
	return probes
}

// raindropCheck validates the export token against the Raindrop user endpoint.
func raindropCheck(rd *raindrop.Client) func(context.Context) (int, error) {
	return func(ctx context.Context) (int, error) {
		err := rd.TestConnection(ctx)
		var apiErr *raindrop.APIError
		switch {
		case err == nil:
			return http.StatusOK, nil
		case errors.As(err, &apiErr):
			return apiErr.StatusCode, nil
		default:
			return 0, err
		}
	}
}
