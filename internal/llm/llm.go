// Package llm provides the text generation backends used by the chat assistant.
package llm

import (
	"context"

	"github.com/raphaelgruber/sayar/internal/models"
)

// Turn is one entry of conversational context sent to a provider.
type Turn struct {
	Role string // models.RoleUser or models.RoleAssistant
	Text string
}

// GenerationConfig holds sampling parameters for a generation call.
type GenerationConfig struct {
	Temperature     float32
	TopK            int
	TopP            float32
	MaxOutputTokens int
	CandidateCount  int
}

// DefaultGenerationConfig returns the parameters used for assistant replies.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Temperature:     0.7,
		TopK:            40,
		TopP:            0.95,
		MaxOutputTokens: 8192,
		CandidateCount:  1,
	}
}

// GenerateRequest is a single generation call.
type GenerateRequest struct {
	Provider models.AIProvider
	// Credential is the API key, or the server URL for Ollama.
	Credential        string
	SystemInstruction string
	Turns             []Turn
	Config            GenerationConfig
}

// GenerateResponse carries the provider's candidates or an error payload
// returned in-band (for example a blocked prompt).
type GenerateResponse struct {
	Candidates   []string
	ErrorMessage string

	InputTokens  int64
	OutputTokens int64
}

// FirstCandidate returns the first non-empty candidate text.
func (r GenerateResponse) FirstCandidate() (string, bool) {
	for _, c := range r.Candidates {
		if c != "" {
			return c, true
		}
	}
	return "", false
}

// Generator produces assistant replies. Transport and provider failures are
// returned as *APIError.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
}
