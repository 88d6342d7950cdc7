package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultGoogleBaseURL = "https://translate.googleapis.com"

// Google uses the public translate_a/single endpoint.
type Google struct {
	baseURL string
	client  *http.Client
}

func NewGoogle(baseURL string, timeout time.Duration) *Google {
	if baseURL == "" {
		baseURL = DefaultGoogleBaseURL
	}
	return &Google{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Translate detects the source language and translates text to targetLang
func (g *Google) Translate(ctx context.Context, text, targetLang string) (string, error) {
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", "auto")
	params.Set("tl", targetLang)
	params.Set("dt", "t")
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/translate_a/single?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request to Google Translate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("Google Translate error (status %d): %s", resp.StatusCode, string(body))
	}

	var payload []any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	return joinSegments(payload)
}

// joinSegments concatenates the translated sentences of a gtx response:
// [[["translated", "original", ...], ...], ...].
func joinSegments(payload []any) (string, error) {
	if len(payload) == 0 {
		return "", fmt.Errorf("empty translation response")
	}
	segments, ok := payload[0].([]any)
	if !ok {
		return "", fmt.Errorf("unexpected translation response shape")
	}

	var b strings.Builder
	for _, seg := range segments {
		parts, ok := seg.([]any)
		if !ok || len(parts) == 0 {
			continue
		}
		if s, ok := parts[0].(string); ok {
			b.WriteString(s)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("translation response has no text")
	}
	return b.String(), nil
}
