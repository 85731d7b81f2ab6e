// Package translator normalizes complaint descriptions for keyword matching:
// auto-detected source language translated to a canonical target language,
// then lower-cased.
//
// Graceful degradation: any failure (service not configured, network error,
// bad response) falls back to lower-casing the original text. Callers never
// see an error, but the returned Result records that a fallback happened.
package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/apex/log"

	"grievance-processor/metrics"
)

// Result is the outcome of one normalization. Degraded is true when the
// translation step was skipped or failed and Text is just the lower-cased
// original.
type Result struct {
	Text     string
	Degraded bool
	Reason   string
}

// Client talks to a LibreTranslate-compatible translation endpoint.
type Client struct {
	baseURL    string
	target     string
	httpClient *http.Client
}

// NewClient creates a translation client. An empty baseURL disables
// translation; Normalize then always degrades to lower-casing.
func NewClient(baseURL, target string, timeout time.Duration) *Client {
	if baseURL == "" {
		log.Warn("Translation service URL not set, descriptions will not be translated")
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		target:  target,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}

// Normalize translates text to the target language and lower-cases it.
// It never returns an error: on any failure the original text is
// lower-cased and returned with Degraded set.
func (c *Client) Normalize(ctx context.Context, text string) Result {
	if c.baseURL == "" {
		return c.fallback(text, "not_configured")
	}

	translated, err := c.translate(ctx, text)
	if err != nil {
		log.Warnf("Translation failed, using original text: %v", err)
		return c.fallback(text, "request_failed")
	}
	if translated == "" {
		return c.fallback(text, "empty_response")
	}

	return Result{Text: strings.ToLower(translated)}
}

func (c *Client) translate(ctx context.Context, text string) (string, error) {
	requestBody, err := json.Marshal(translateRequest{
		Q:      text,
		Source: "auto",
		Target: c.target,
		Format: "text",
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translate", bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translation service returned status %d", resp.StatusCode)
	}

	var response translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return response.TranslatedText, nil
}

func (c *Client) fallback(text, reason string) Result {
	metrics.TranslationFallbackTotal.WithLabelValues(reason).Inc()
	return Result{Text: strings.ToLower(text), Degraded: true, Reason: reason}
}
