// Package gemini generates bot replies with the Google Gen AI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

var ErrEmptyResponse = errors.New("empty response from model")

type settings struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*settings)

// WithBaseURL points the client at another endpoint, e.g. a local test server.
func WithBaseURL(u string) Option {
	return func(s *settings) { s.baseURL = u }
}

func WithHTTPClient(h *http.Client) Option {
	return func(s *settings) { s.httpClient = h }
}

// Client sends single-turn prompts to one model.
type Client struct {
	models *genai.Models
	model  string
}

// New builds a Gemini API client for model authenticated with apiKey.
func New(ctx context.Context, apiKey, model string, opts ...Option) (*Client, error) {
	var s settings
	for _, o := range opts {
		o(&s)
	}

	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: s.httpClient,
	}
	if s.baseURL != "" {
		cfg.HTTPOptions.BaseURL = s.baseURL
	}

	c, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Client{models: c.Models, model: model}, nil
}

// Generate sends prompt as one user turn and returns the trimmed text of the
// first candidate. Cancellation follows ctx.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	out := strings.TrimSpace(resp.Text())
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}
