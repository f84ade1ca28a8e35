package settings

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/raphaelgruber/sayar/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMissingFileUsesDefaults(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "settings.yaml"), Seed{GeminiAPIKey: "seeded"}, nil)
	require.NoError(t, err)

	got, err := s.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.ProviderGemini, got.AIProvider)
	assert.Equal(t, models.DefaultOllamaURL, got.OllamaURL)
	assert.Equal(t, "seeded", got.GeminiAPIKey)
}

func TestUpdatePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	s, err := Open(path, Seed{}, nil)
	require.NoError(t, err)

	require.NoError(t, s.SetProvider(ctx, models.ProviderOpenAI))
	require.NoError(t, s.SetOpenAIAPIKey(ctx, "  sk-test  "))
	require.NoError(t, s.SetTeacherGrade(ctx, "Grade 9"))
	require.NoError(t, s.SetTheme(ctx, models.ThemeDark))

	reopened, err := Open(path, Seed{OpenAIAPIKey: "ignored"}, nil)
	require.NoError(t, err)
	got, err := reopened.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ProviderOpenAI, got.AIProvider)
	assert.Equal(t, "sk-test", got.OpenAIAPIKey)
	assert.Equal(t, "Grade 9", got.TeacherGrade)
	assert.Equal(t, models.ThemeDark, got.Theme)
	assert.Equal(t, "sk-test", got.Credential())
}

func TestUnknownValuesOnDiskFallBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ai_provider: claude\ntheme_mode: neon\nlanguage: klingon\nteacher_subject: Chemistry\n"), 0o600))

	s, err := Open(path, Seed{}, nil)
	require.NoError(t, err)
	got, _ := s.Current(context.Background())
	assert.Equal(t, models.ProviderGemini, got.AIProvider)
	assert.Equal(t, models.ThemeSystem, got.Theme)
	assert.Equal(t, models.LanguageEnglish, got.Language)
	assert.Equal(t, "Chemistry", got.TeacherSubject)
}

func TestOpenRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ai_provider: [unterminated"), 0o600))
	_, err := Open(path, Seed{}, nil)
	require.Error(t, err)
}

func TestSetByKey(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "settings.yaml"), Seed{}, nil)
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "ai_provider", "Ollama"))
	require.NoError(t, s.Set(ctx, "ollama_url", "http://gpu-box:11434"))
	require.NoError(t, s.Set(ctx, "language", "MYANMAR"))

	got, _ := s.Current(ctx)
	assert.Equal(t, models.ProviderOllama, got.AIProvider)
	assert.Equal(t, "http://gpu-box:11434", got.Credential())
	assert.Equal(t, models.LanguageMyanmar, got.Language)

	err = s.Set(ctx, "ai_provider", "claude")
	require.Error(t, err)
	err = s.Set(ctx, "font_size", "12")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "teacher_grade")
	assert.Error(t, s.SetTheme(ctx, "neon"))
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "settings.yaml"), Seed{}, nil)
	require.NoError(t, err)

	updates, cancel := s.Subscribe()
	require.NoError(t, s.SetTeacherSubject(ctx, "History"))
	require.NoError(t, s.SetTeacherGrade(ctx, "Grade 2"))

	got := <-updates
	assert.Equal(t, "History", got.TeacherSubject)
	assert.Equal(t, "Grade 2", got.TeacherGrade)

	cancel()
	_, ok := <-updates
	assert.False(t, ok)
}

func TestCurrentHonorsContext(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "settings.yaml"), Seed{}, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Current(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
