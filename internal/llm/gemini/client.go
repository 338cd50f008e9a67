package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"resume-checker/internal/llm"
	"resume-checker/internal/shared/telemetry"
)

// Client implements llm.Client using the Gemini API.
type Client struct {
	genai *genai.Client
	model string
}

// Option adjusts the underlying SDK configuration.
type Option func(*genai.ClientConfig)

// WithBaseURL points the SDK at a different endpoint.
func WithBaseURL(url string) Option {
	return func(cfg *genai.ClientConfig) {
		cfg.HTTPOptions.BaseURL = url
	}
}

// NewClient constructs a Gemini client.
func NewClient(ctx context.Context, apiKey, model string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("GOOGLE_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("GEMINI_MODEL is required")
	}
	cfg := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(apiKey),
		Backend: genai.BackendGeminiAPI,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	gc, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Client{genai: gc, model: strings.TrimSpace(model)}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// Analyze sends instruction, page image and job description as one user turn
// and returns the model text unchanged.
func (c *Client) Analyze(ctx context.Context, input llm.AnalyzeInput) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(input.Prompt),
		genai.NewPartFromBytes(input.Document.Data, input.Document.MIMEType),
		genai.NewPartFromText(input.JobDescription),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := c.genai.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", &llm.AnalysisError{Cause: err}
	}
	logUsage(c.model, resp)

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", &llm.AnalysisError{Cause: llm.ErrEmptyResponse}
	}
	return text, nil
}

// ListGenerationModels returns the names of models that support content generation.
func (c *Client) ListGenerationModels(ctx context.Context) ([]string, error) {
	var names []string
	for m, err := range c.genai.Models.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list models: %w", err)
		}
		if SupportsGeneration(m) {
			names = append(names, m.Name)
		}
	}
	return names, nil
}

// SupportsGeneration reports whether m accepts generateContent calls.
func SupportsGeneration(m *genai.Model) bool {
	if m == nil {
		return false
	}
	for _, action := range m.SupportedActions {
		if action == "generateContent" {
			return true
		}
	}
	return false
}

func logUsage(model string, resp *genai.GenerateContentResponse) {
	fields := map[string]any{"model": model}
	if resp != nil && resp.UsageMetadata != nil {
		fields["prompt_tokens"] = resp.UsageMetadata.PromptTokenCount
		fields["completion_tokens"] = resp.UsageMetadata.CandidatesTokenCount
		fields["total_tokens"] = resp.UsageMetadata.TotalTokenCount
	}
	telemetry.Info("llm.response", fields)
}

var _ llm.Client = (*Client)(nil)
