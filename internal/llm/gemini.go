package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/raphaelgruber/sayar/internal/models"
	"google.golang.org/genai"
)

// DefaultGeminiModel is the Gemini model used when none is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiGenerator calls the Gemini generateContent API.
type GeminiGenerator struct {
	model  string
	logger *slog.Logger

	mu     sync.Mutex
	apiKey string
	client *genai.Client
}

// Compile-time check that GeminiGenerator implements Generator.
var _ Generator = (*GeminiGenerator)(nil)

// NewGeminiGenerator creates a generator for the given Gemini model.
func NewGeminiGenerator(model string, logger *slog.Logger) *GeminiGenerator {
	if model == "" {
		model = DefaultGeminiModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GeminiGenerator{model: model, logger: logger}
}

// clientFor returns a client for apiKey, reusing the previous one when the
// key has not changed.
func (g *GeminiGenerator) clientFor(ctx context.Context, apiKey string) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client != nil && g.apiKey == apiKey {
		return g.client, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	g.client = client
	g.apiKey = apiKey
	return client, nil
}

// Generate sends the request to Gemini.
func (g *GeminiGenerator) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	client, err := g.clientFor(ctx, req.Credential)
	if err != nil {
		return GenerateResponse{}, classify(err)
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, geminiContents(req.Turns), geminiConfig(req))
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return GenerateResponse{}, newStatusError(apiErr.Code, apiErr.Message, err)
		}
		return GenerateResponse{}, classify(err)
	}

	return geminiResponse(resp), nil
}

func geminiConfig(req GenerateRequest) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(req.Config.Temperature),
		TopP:            genai.Ptr(req.Config.TopP),
		TopK:            genai.Ptr(float32(req.Config.TopK)),
		MaxOutputTokens: int32(req.Config.MaxOutputTokens),
		CandidateCount:  int32(req.Config.CandidateCount),
	}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemInstruction}},
		}
	}
	return cfg
}

func geminiResponse(resp *genai.GenerateContentResponse) GenerateResponse {
	var out GenerateResponse
	if resp == nil {
		return out
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil || len(cand.Content.Parts) == 0 || cand.Content.Parts[0] == nil {
			continue
		}
		out.Candidates = append(out.Candidates, cand.Content.Parts[0].Text)
	}
	if len(out.Candidates) == 0 && resp.PromptFeedback != nil {
		msg := resp.PromptFeedback.BlockReasonMessage
		if msg == "" && resp.PromptFeedback.BlockReason != "" {
			msg = fmt.Sprintf("Response blocked: %s", resp.PromptFeedback.BlockReason)
		}
		out.ErrorMessage = msg
	}
	if resp.UsageMetadata != nil {
		out.InputTokens = int64(resp.UsageMetadata.PromptTokenCount)
		out.OutputTokens = int64(resp.UsageMetadata.CandidatesTokenCount)
	}
	return out
}

func geminiContents(turns []Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(turns))
	for _, turn := range turns {
		var role genai.Role = genai.RoleUser
		if turn.Role != models.RoleUser {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, role))
	}
	return contents
}
