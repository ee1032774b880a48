// Package llm defines the text-generation capability the improver depends on.
package llm

import "context"

// Provider validates credentials and generates text with a caller-supplied key.
type Provider interface {
	ValidateCredential(ctx context.Context, key string) error
	Generate(ctx context.Context, prompt string, key string) (string, error)
}

// GenerationConfig carries the sampling parameters sent with every request.
type GenerationConfig struct {
	Temperature     float32 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float32 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// DefaultGenerationConfig returns the fixed parameters used for CV improvement.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Temperature:     0.5,
		TopK:            1,
		TopP:            1,
		MaxOutputTokens: 2048,
	}
}
