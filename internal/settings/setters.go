package settings

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/raphaelgruber/sayar/internal/models"
)

func (s *FileStore) set(ctx context.Context, fn func(*models.AppSettings)) error {
	_, err := s.Update(ctx, fn)
	return err
}

// SetProvider selects the active AI provider.
func (s *FileStore) SetProvider(ctx context.Context, p models.AIProvider) error {
	if _, ok := models.ParseAIProvider(string(p)); !ok {
		return fmt.Errorf("unknown AI provider %q", p)
	}
	return s.set(ctx, func(a *models.AppSettings) { a.AIProvider = p })
}

func (s *FileStore) SetGeminiAPIKey(ctx context.Context, key string) error {
	return s.set(ctx, func(a *models.AppSettings) { a.GeminiAPIKey = strings.TrimSpace(key) })
}

func (s *FileStore) SetOpenAIAPIKey(ctx context.Context, key string) error {
	return s.set(ctx, func(a *models.AppSettings) { a.OpenAIAPIKey = strings.TrimSpace(key) })
}

func (s *FileStore) SetOllamaURL(ctx context.Context, url string) error {
	return s.set(ctx, func(a *models.AppSettings) { a.OllamaURL = strings.TrimSpace(url) })
}

func (s *FileStore) SetTheme(ctx context.Context, theme models.ThemeMode) error {
	switch theme {
	case models.ThemeSystem, models.ThemeLight, models.ThemeDark:
	default:
		return fmt.Errorf("unknown theme %q", theme)
	}
	return s.set(ctx, func(a *models.AppSettings) { a.Theme = theme })
}

func (s *FileStore) SetLanguage(ctx context.Context, lang models.AppLanguage) error {
	switch lang {
	case models.LanguageEnglish, models.LanguageMyanmar:
	default:
		return fmt.Errorf("unknown language %q", lang)
	}
	return s.set(ctx, func(a *models.AppSettings) { a.Language = lang })
}

func (s *FileStore) SetTeacherGrade(ctx context.Context, grade string) error {
	return s.set(ctx, func(a *models.AppSettings) { a.TeacherGrade = strings.TrimSpace(grade) })
}

func (s *FileStore) SetTeacherSubject(ctx context.Context, subject string) error {
	return s.set(ctx, func(a *models.AppSettings) { a.TeacherSubject = strings.TrimSpace(subject) })
}

// setters maps settings file keys to their typed setter.
var setters = map[string]func(*FileStore, context.Context, string) error{
	"ai_provider": func(s *FileStore, ctx context.Context, v string) error {
		p, ok := models.ParseAIProvider(v)
		if !ok {
			return fmt.Errorf("unknown AI provider %q (want gemini, openai or ollama)", v)
		}
		return s.SetProvider(ctx, p)
	},
	"gemini_api_key": (*FileStore).SetGeminiAPIKey,
	"openai_api_key": (*FileStore).SetOpenAIAPIKey,
	"ollama_url":     (*FileStore).SetOllamaURL,
	"theme_mode": func(s *FileStore, ctx context.Context, v string) error {
		return s.SetTheme(ctx, models.ThemeMode(strings.ToLower(strings.TrimSpace(v))))
	},
	"language": func(s *FileStore, ctx context.Context, v string) error {
		return s.SetLanguage(ctx, models.AppLanguage(strings.ToLower(strings.TrimSpace(v))))
	},
	"teacher_grade":   (*FileStore).SetTeacherGrade,
	"teacher_subject": (*FileStore).SetTeacherSubject,
}

// Keys lists the names accepted by Set.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set updates one setting by its file key.
func (s *FileStore) Set(ctx context.Context, key, value string) error {
	fn, ok := setters[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return fmt.Errorf("unknown setting %q (valid: %s)", key, strings.Join(Keys(), ", "))
	}
	return fn(s, ctx, value)
}
