// Package oracle calls an external generative text API for the paid
// fortune-teller features. Every failure mode degrades to a canned answer
// rather than an error; the points were already spent and the user must
// get something back.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"adaura-rewards/internal/config"
)

// Canned answers used when the API is unconfigured or unreachable.
const (
	FallbackAdvice      = "Save your coins for a rainy day!"
	FallbackLuckyNumber = "Number: 7, Color: Gold"
)

const (
	advicePrompt = "Give me a very short, one sentence funny or wise tip about saving money or getting rich."
	luckyPrompt  = "Generate a random lucky number between 1 and 99 and a short lucky color. Format: 'Number: [x] Color: [y]'"
)

// Client talks to a generateContent-style text endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string
	model      string
	apiKey     string
}

// NewClient creates a new oracle Client. An empty API key yields a client
// that always answers with the fallbacks.
func NewClient(cfg config.OracleConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		endpoint:   cfg.Endpoint,
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// FinancialAdvice returns a one-line money tip.
func (c *Client) FinancialAdvice(ctx context.Context) string {
	return c.generate(ctx, advicePrompt, FallbackAdvice)
}

// LuckyNumber returns a lucky number and color reading.
func (c *Client) LuckyNumber(ctx context.Context) string {
	return c.generate(ctx, luckyPrompt, FallbackLuckyNumber)
}

// generate performs a single generateContent call. No retries: a slow or
// failing provider should cost the user latency once, not three times.
func (c *Client) generate(ctx context.Context, prompt, fallback string) string {
	if c.apiKey == "" {
		return fallback
	}

	text, err := c.call(ctx, prompt)
	if err != nil {
		log.Warn().Err(err).Msg("Oracle request failed, using fallback")
		return fallback
	}
	return text
}

func (c *Client) call(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.endpoint, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, payload)
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response")
	}

	text := strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", fmt.Errorf("empty response text")
	}
	return text, nil
}
