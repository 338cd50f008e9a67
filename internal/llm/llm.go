package llm

import (
	"context"
	"errors"
	"fmt"

	"resume-checker/internal/extract"
)

// Client abstracts the hosted model used for resume analysis.
type Client interface {
	Analyze(ctx context.Context, input AnalyzeInput) (string, error)
}

// AnalyzeInput captures one analysis request. It is not retained after the call.
type AnalyzeInput struct {
	Prompt         string
	Document       extract.Payload
	JobDescription string
}

// AnalysisError wraps any failure of the remote model call.
type AnalysisError struct {
	Cause error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis failed: %v", e.Cause)
}

func (e *AnalysisError) Unwrap() error { return e.Cause }

// ErrEmptyResponse is the cause used when the model returns no text.
var ErrEmptyResponse = errors.New("model returned an empty response")

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("analysis client not configured")

// PlaceholderClient fails every call; it stands in when no provider is wired.
type PlaceholderClient struct{}

// Analyze returns an AnalysisError wrapping ErrNotConfigured.
func (PlaceholderClient) Analyze(context.Context, AnalyzeInput) (string, error) {
	return "", &AnalysisError{Cause: ErrNotConfigured}
}
