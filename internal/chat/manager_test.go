package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/raphaelgruber/sayar/internal/llm"
	"github.com/raphaelgruber/sayar/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSettings struct {
	settings models.AppSettings
	err      error
}

func (f *fakeSettings) Current(context.Context) (models.AppSettings, error) {
	return f.settings, f.err
}

func withKey() *fakeSettings {
	s := models.DefaultSettings()
	s.GeminiAPIKey = "test-key"
	return &fakeSettings{settings: s}
}

// fakeGenerator answers each call with reply(req) and records requests.
type fakeGenerator struct {
	mu    sync.Mutex
	calls []llm.GenerateRequest
	reply func(req llm.GenerateRequest) (llm.GenerateResponse, error)
}

func (f *fakeGenerator) Generate(_ context.Context, req llm.GenerateRequest) (llm.GenerateResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	return f.reply(req)
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func answer(text string) *fakeGenerator {
	return &fakeGenerator{reply: func(llm.GenerateRequest) (llm.GenerateResponse, error) {
		return llm.GenerateResponse{Candidates: []string{text}}, nil
	}}
}

func failWith(err error) *fakeGenerator {
	return &fakeGenerator{reply: func(llm.GenerateRequest) (llm.GenerateResponse, error) {
		return llm.GenerateResponse{}, err
	}}
}

func newTestManager(gen llm.Generator, settings SettingsSource) *Manager {
	m := NewManager(gen, settings, nil)
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	var tick int
	m.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return m
}

func TestSubmitHelloExample(t *testing.T) {
	m := newTestManager(answer("Hello!"), withKey())

	reply, err := m.Submit(context.Background(), "Hi")
	require.NoError(t, err)
	require.NotNil(t, reply)
	assert.Equal(t, "Hello!", reply.Content)
	assert.False(t, reply.FromUser)

	msgs := m.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "Hi", msgs[0].Content)
	assert.True(t, msgs[0].FromUser)
	assert.Equal(t, "Hello!", msgs[1].Content)
	assert.False(t, msgs[1].FromUser)
	assert.False(t, m.Loading())
	assert.Empty(t, m.LastError())
}

func TestSubmitAlternatesRoles(t *testing.T) {
	var n int
	gen := &fakeGenerator{reply: func(llm.GenerateRequest) (llm.GenerateResponse, error) {
		n++
		return llm.GenerateResponse{Candidates: []string{fmt.Sprintf("reply %d", n)}}, nil
	}}
	m := newTestManager(gen, withKey())

	const rounds = 7
	for i := range rounds {
		_, err := m.Submit(context.Background(), fmt.Sprintf("question %d", i))
		require.NoError(t, err)
	}

	msgs := m.Messages()
	require.Len(t, msgs, 2*rounds)
	for i, msg := range msgs {
		assert.Equal(t, i%2 == 0, msg.FromUser, "message %d", i)
		if i > 0 {
			assert.False(t, msg.Timestamp.Before(msgs[i-1].Timestamp))
		}
	}
	assert.Equal(t, "question 0", msgs[0].Content)
	assert.Equal(t, "reply 7", msgs[len(msgs)-1].Content)
}

func TestSubmitBlankIsNoop(t *testing.T) {
	gen := answer("unused")
	m := newTestManager(gen, withKey())

	for _, input := range []string{"", "   ", "\n\t"} {
		reply, err := m.Submit(context.Background(), input)
		assert.NoError(t, err)
		assert.Nil(t, reply)
	}
	assert.Empty(t, m.Messages())
	assert.False(t, m.Loading())
	assert.Zero(t, gen.callCount())
}

func TestSubmitMissingCredential(t *testing.T) {
	tests := []struct {
		name     string
		provider models.AIProvider
		want     string
	}{
		{"gemini", models.ProviderGemini, "Please configure your Gemini API key in Settings"},
		{"openai", models.ProviderOpenAI, "Please configure your OpenAI API key in Settings"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := answer("unused")
			s := models.DefaultSettings()
			s.AIProvider = tt.provider
			m := newTestManager(gen, &fakeSettings{settings: s})

			reply, err := m.Submit(context.Background(), "Hello")
			assert.Nil(t, reply)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMissingCredential)
			assert.Equal(t, tt.want, err.Error())
			kind, ok := KindOf(err)
			assert.True(t, ok)
			assert.Equal(t, KindConfiguration, kind)

			assert.Empty(t, m.Messages())
			assert.Zero(t, gen.callCount())
		})
	}
}

func TestSubmitOllamaUsesURLAsCredential(t *testing.T) {
	gen := answer("ok")
	s := models.DefaultSettings()
	s.AIProvider = models.ProviderOllama
	m := newTestManager(gen, &fakeSettings{settings: s})

	_, err := m.Submit(context.Background(), "hi")
	require.NoError(t, err)
	require.Equal(t, 1, gen.callCount())
	assert.Equal(t, models.DefaultOllamaURL, gen.calls[0].Credential)
	assert.Equal(t, models.ProviderOllama, gen.calls[0].Provider)
}

func TestSubmitSettingsError(t *testing.T) {
	m := newTestManager(answer("x"), &fakeSettings{err: errors.New("disk gone")})
	_, err := m.Submit(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
	assert.Empty(t, m.Messages())
}

func TestSubmitUnauthorizedExample(t *testing.T) {
	m := newTestManager(failWith(errors.New("HTTP 401 Unauthorized")), withKey())
	_, err := m.Submit(context.Background(), "Hi")

	require.Error(t, err)
	assert.Equal(t, "Invalid API key. Please check your Gemini API key in Settings.", err.Error())

	msgs := m.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "Hi", msgs[0].Content)
	assert.True(t, msgs[0].FromUser)
	assert.False(t, m.Loading())
	assert.Equal(t, err.Error(), m.LastError())
}

func TestSubmitFailureClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind ErrorKind
		want string
	}{
		{
			name: "typed unauthorized",
			err:  &llm.APIError{Kind: llm.KindUnauthorized, StatusCode: 401, Message: "API key not valid"},
			kind: KindInvalidCredential,
			want: "Invalid API key. Please check your Gemini API key in Settings.",
		},
		{
			name: "typed forbidden",
			err:  &llm.APIError{Kind: llm.KindForbidden, StatusCode: 403},
			kind: KindAccessDenied,
			want: "API key doesn't have access. Enable Generative Language API in Google Cloud Console.",
		},
		{
			name: "typed not found",
			err:  &llm.APIError{Kind: llm.KindNotFound, StatusCode: 404},
			kind: KindEndpointNotFound,
			want: "API endpoint not found. Please update the app or check API configuration.",
		},
		{
			name: "typed rate limited",
			err:  &llm.APIError{Kind: llm.KindRateLimited, StatusCode: 429},
			kind: KindRateLimited,
			want: "Rate limit exceeded. Please wait and try again.",
		},
		{
			name: "typed network",
			err:  &llm.APIError{Kind: llm.KindNetworkUnreachable, Message: "dial tcp: refused"},
			kind: KindNetwork,
			want: "Network error. Please check your internet connection.",
		},
		{
			name: "typed other keeps message",
			err:  &llm.APIError{Kind: llm.KindOther, Message: "model overloaded"},
			kind: KindGeneric,
			want: "Error: model overloaded",
		},
		{
			name: "typed other falls back to text",
			err:  &llm.APIError{Kind: llm.KindOther, Message: "could not connect to model server"},
			kind: KindNetwork,
			want: "Network error. Please check your internet connection.",
		},
		{
			name: "typed other uses signature order",
			err:  &llm.APIError{Kind: llm.KindOther, Message: "quota 429 exceeded; upstream returned 401"},
			kind: KindInvalidCredential,
			want: "Invalid API key. Please check your Gemini API key in Settings.",
		},
		{
			name: "untyped first signature wins",
			err:  errors.New("403 then 401"),
			kind: KindInvalidCredential,
			want: "Invalid API key. Please check your Gemini API key in Settings.",
		},
		{
			name: "untyped rate limit",
			err:  errors.New("status 429: quota"),
			kind: KindRateLimited,
			want: "Rate limit exceeded. Please wait and try again.",
		},
		{
			name: "untyped connect",
			err:  errors.New("failed to connect"),
			kind: KindNetwork,
			want: "Network error. Please check your internet connection.",
		},
		{
			name: "untyped generic",
			err:  errors.New("something odd"),
			kind: KindGeneric,
			want: "Error: something odd",
		},
		{
			name: "empty message",
			err:  errors.New(""),
			kind: KindGeneric,
			want: "Error: Unknown error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(failWith(tt.err), withKey())
			_, err := m.Submit(context.Background(), "hello")
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
			assert.ErrorIs(t, err, tt.err)
			kind, ok := KindOf(err)
			assert.True(t, ok)
			assert.Equal(t, tt.kind, kind)
		})
	}
}

func TestSubmitResponseFallbacks(t *testing.T) {
	tests := []struct {
		name string
		resp llm.GenerateResponse
		want string
	}{
		{"candidate", llm.GenerateResponse{Candidates: []string{"text"}, ErrorMessage: "ignored"}, "text"},
		{"error payload", llm.GenerateResponse{ErrorMessage: "Response blocked: SAFETY"}, "Response blocked: SAFETY"},
		{"nothing", llm.GenerateResponse{}, FallbackReply},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{reply: func(llm.GenerateRequest) (llm.GenerateResponse, error) {
				return tt.resp, nil
			}}
			m := newTestManager(gen, withKey())
			reply, err := m.Submit(context.Background(), "hi")
			require.NoError(t, err)
			assert.Equal(t, tt.want, reply.Content)
			assert.Len(t, m.Messages(), 2)
		})
	}
}

func TestSubmitBuildsRequest(t *testing.T) {
	gen := answer("ok")
	settings := withKey()
	settings.settings.TeacherGrade = "Grade 5"
	settings.settings.TeacherSubject = "  "
	m := newTestManager(gen, settings)

	for i := range 6 {
		_, err := m.Submit(context.Background(), fmt.Sprintf("q%d", i))
		require.NoError(t, err)
	}

	last := gen.calls[len(gen.calls)-1]
	require.Len(t, last.Turns, ContextWindow)
	assert.Equal(t, models.RoleUser, last.Turns[0].Role)
	assert.Equal(t, "q1", last.Turns[0].Text)
	assert.Equal(t, models.RoleAssistant, last.Turns[1].Role)
	assert.Equal(t, "q5", last.Turns[ContextWindow-1].Text)

	assert.True(t, strings.HasSuffix(last.SystemInstruction, "\n\nThe teacher currently teaches: Grade 5"))
	assert.NotContains(t, last.SystemInstruction, "Subject specialty")
	assert.Equal(t, llm.DefaultGenerationConfig(), last.Config)
}

func TestSubmitBusy(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	gen := &fakeGenerator{reply: func(llm.GenerateRequest) (llm.GenerateResponse, error) {
		close(started)
		<-release
		return llm.GenerateResponse{Candidates: []string{"first"}}, nil
	}}
	m := newTestManager(gen, withKey())

	done := make(chan error, 1)
	go func() {
		_, err := m.Submit(context.Background(), "one")
		done <- err
	}()
	<-started

	assert.True(t, m.Loading())
	_, err := m.Submit(context.Background(), "two")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, m.Restore(nil), ErrBusy)

	close(release)
	require.NoError(t, <-done)

	msgs := m.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "one", msgs[0].Content)
	assert.Equal(t, "first", msgs[1].Content)
	assert.False(t, m.Loading())
}

func TestRecentContextIsSuffix(t *testing.T) {
	m := newTestManager(answer("a"), withKey())
	assert.Empty(t, m.RecentContext())

	for i := range 12 {
		_, err := m.Submit(context.Background(), fmt.Sprintf("m%d", i))
		require.NoError(t, err)

		all := m.Messages()
		recent := m.RecentContext()
		assert.LessOrEqual(t, len(recent), ContextWindow)
		assert.Equal(t, all[len(all)-len(recent):], recent)
	}
}

func TestClearKeepsErrorAndLoading(t *testing.T) {
	m := newTestManager(failWith(errors.New("boom")), withKey())
	_, err := m.Submit(context.Background(), "hi")
	require.Error(t, err)

	m.Clear()
	assert.Empty(t, m.Messages())
	assert.Equal(t, "Error: boom", m.LastError())

	m.ClearError()
	assert.Empty(t, m.LastError())
}

func TestSuccessClearsLastError(t *testing.T) {
	fail := true
	gen := &fakeGenerator{reply: func(llm.GenerateRequest) (llm.GenerateResponse, error) {
		if fail {
			return llm.GenerateResponse{}, errors.New("boom")
		}
		return llm.GenerateResponse{Candidates: []string{"ok"}}, nil
	}}
	m := newTestManager(gen, withKey())

	_, _ = m.Submit(context.Background(), "one")
	assert.NotEmpty(t, m.LastError())

	fail = false
	_, err := m.Submit(context.Background(), "two")
	require.NoError(t, err)
	assert.Empty(t, m.LastError())
	assert.Len(t, m.Messages(), 3)
}

func TestRestore(t *testing.T) {
	m := newTestManager(answer("a"), withKey())
	now := time.Now()
	history := []models.ChatMessage{
		models.NewChatMessage("old question", true, now),
		models.NewChatMessage("old answer", false, now),
	}

	require.NoError(t, m.Restore(history))
	history[0].Content = "mutated"

	msgs := m.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "old question", msgs[0].Content)
}

func TestSubscribe(t *testing.T) {
	m := newTestManager(answer("Hello!"), withKey())
	updates, cancel := m.Subscribe()

	_, err := m.Submit(context.Background(), "Hi")
	require.NoError(t, err)

	// Buffer holds only the latest state.
	state := <-updates
	assert.False(t, state.Loading)
	assert.Len(t, state.Messages, 2)

	cancel()
	cancel()
	_, ok := <-updates
	assert.False(t, ok)

	m.Clear()
}

func TestSubscribeEndsOnLatestState(t *testing.T) {
	m := newTestManager(answer("Hello!"), withKey())
	updates, cancel := m.Subscribe()
	defer cancel()

	now := time.Now()
	history := []models.ChatMessage{
		models.NewChatMessage("q", true, now),
		models.NewChatMessage("a", false, now),
	}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				m.Clear()
				return
			}
			_ = m.Restore(history)
		}(i)
	}
	wg.Wait()

	state := <-updates
	assert.Equal(t, m.State(), state)
}
