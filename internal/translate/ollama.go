package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Ollama translates with a local model served by Ollama.
type Ollama struct {
	host   string
	model  string
	client *http.Client
}

type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type GenerateResponse struct {
	Response string `json:"response"`
}

func NewOllama(host, model string, timeout time.Duration) *Ollama {
	return &Ollama{
		host:   strings.TrimRight(host, "/"),
		model:  model,
		client: &http.Client{Timeout: timeout},
	}
}

// Translate asks the model for a translation of text into targetLang
func (o *Ollama) Translate(ctx context.Context, text, targetLang string) (string, error) {
	name := targetLang
	for _, l := range Languages {
		if l.Code == targetLang {
			name = l.Name
		}
	}

	reqBody := GenerateRequest{
		Model: o.model,
		Prompt: fmt.Sprintf(
			"Translate the following text into %s (%s). Reply with the translation only.\n\n%s",
			name, targetLang, text),
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.host+"/api/generate", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request to Ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Ollama API error (status %d): %s", resp.StatusCode, string(body))
	}

	var genResp GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	out := strings.TrimSpace(genResp.Response)
	if out == "" {
		return "", fmt.Errorf("Ollama returned an empty translation")
	}
	return out, nil
}
