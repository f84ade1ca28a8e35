package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/raphaelgruber/sayar/internal/metrics"
	"github.com/raphaelgruber/sayar/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	resp GenerateResponse
	err  error
	got  []GenerateRequest
}

func (s *stubGenerator) Generate(_ context.Context, req GenerateRequest) (GenerateResponse, error) {
	s.got = append(s.got, req)
	return s.resp, s.err
}

func TestRouterDispatchesByProvider(t *testing.T) {
	gemini := &stubGenerator{resp: GenerateResponse{Candidates: []string{"from gemini"}, InputTokens: 10, OutputTokens: 3}}
	ollama := &stubGenerator{resp: GenerateResponse{Candidates: []string{"from ollama"}}}

	collector := metrics.NewCollector()
	r := NewRouter(collector, nil)
	r.Register(models.ProviderGemini, gemini)
	r.Register(models.ProviderOllama, ollama)

	resp, err := r.Generate(context.Background(), GenerateRequest{Provider: models.ProviderGemini})
	require.NoError(t, err)
	text, ok := resp.FirstCandidate()
	assert.True(t, ok)
	assert.Equal(t, "from gemini", text)
	assert.Len(t, gemini.got, 1)
	assert.Empty(t, ollama.got)

	snap := collector.Snapshot()
	require.NotNil(t, snap.LLMGenerate)
	assert.Equal(t, int64(1), snap.LLMGenerate.Count)
	assert.Equal(t, int64(10), *snap.LLMGenerate.TotalInputTokens)
}

func TestRouterUnknownProvider(t *testing.T) {
	r := NewRouter(nil, nil)
	_, err := r.Generate(context.Background(), GenerateRequest{Provider: models.ProviderOpenAI})
	require.Error(t, err)
	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, KindOther, kind)
}

func TestRouterPassesErrorsThrough(t *testing.T) {
	backend := &stubGenerator{err: newStatusError(401, "bad key", errors.New("401"))}
	r := NewRouter(nil, nil)
	r.Register(models.ProviderGemini, backend)

	_, err := r.Generate(context.Background(), GenerateRequest{Provider: models.ProviderGemini})
	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, KindUnauthorized, kind)
}

func TestFirstCandidate(t *testing.T) {
	_, ok := GenerateResponse{}.FirstCandidate()
	assert.False(t, ok)

	text, ok := GenerateResponse{Candidates: []string{"", "second"}}.FirstCandidate()
	assert.True(t, ok)
	assert.Equal(t, "second", text)
}

func TestMessageContents(t *testing.T) {
	msgs := messageContents(GenerateRequest{
		SystemInstruction: "be helpful",
		Turns: []Turn{
			{Role: models.RoleUser, Text: "hi"},
			{Role: models.RoleAssistant, Text: "hello"},
		},
	})
	require.Len(t, msgs, 3)
	assert.Equal(t, "system", string(msgs[0].Role))
	assert.Equal(t, "human", string(msgs[1].Role))
	assert.Equal(t, "ai", string(msgs[2].Role))
}

func TestTokenCount(t *testing.T) {
	info := map[string]any{"CompletionTokens": 12, "eval_count": float64(99)}
	assert.Equal(t, int64(12), tokenCount(info, "CompletionTokens", "eval_count"))
	assert.Equal(t, int64(99), tokenCount(info, "missing", "eval_count"))
	assert.Equal(t, int64(0), tokenCount(nil, "x"))
}
