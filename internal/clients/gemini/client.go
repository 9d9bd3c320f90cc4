// Package gemini provides a client for the Google Gemini API
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/wyli/fundwatch/internal/common"
	"github.com/wyli/fundwatch/internal/interfaces"
)

const DefaultModel = "gemini-2.0-flash"

// Client implements the AIClient interface
type Client struct {
	client *genai.Client
	model  string
	logger *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{
		client: genaiClient,
		model:  DefaultModel,
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// GenerateReview generates a natural-language portfolio review from a prompt
func (c *Client) GenerateReview(ctx context.Context, prompt string) (string, error) {
	c.logger.Debug().Str("model", c.model).Msg("Generating review")

	contents := genai.Text(prompt)
	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractTextFromResponse(result)
}

// extractTextFromResponse extracts text from a generate content response
func extractTextFromResponse(result *genai.GenerateContentResponse) (string, error) {
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	text := ""
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}

	return text, nil
}

// Ensure Client implements AIClient
var _ interfaces.AIClient = (*Client)(nil)
