package models

import "strings"

// AIProvider names an AI backend.
type AIProvider string

const (
	ProviderGemini AIProvider = "gemini"
	ProviderOpenAI AIProvider = "openai"
	ProviderOllama AIProvider = "ollama"
)

// DisplayName returns the name shown to users in messages.
func (p AIProvider) DisplayName() string {
	switch p {
	case ProviderOpenAI:
		return "OpenAI"
	case ProviderOllama:
		return "Ollama"
	default:
		return "Gemini"
	}
}

// ParseAIProvider parses a provider name. Unknown names return false.
func ParseAIProvider(s string) (AIProvider, bool) {
	switch AIProvider(strings.ToLower(strings.TrimSpace(s))) {
	case ProviderGemini:
		return ProviderGemini, true
	case ProviderOpenAI:
		return ProviderOpenAI, true
	case ProviderOllama:
		return ProviderOllama, true
	}
	return "", false
}

// ThemeMode is the UI theme preference.
type ThemeMode string

const (
	ThemeSystem ThemeMode = "system"
	ThemeLight  ThemeMode = "light"
	ThemeDark   ThemeMode = "dark"
)

// AppLanguage is the UI language preference.
type AppLanguage string

const (
	LanguageEnglish AppLanguage = "english"
	LanguageMyanmar AppLanguage = "myanmar"
)

// DefaultOllamaURL is the local Ollama endpoint used when none is configured.
const DefaultOllamaURL = "http://localhost:11434"

// AppSettings is a snapshot of the user's preferences.
type AppSettings struct {
	AIProvider     AIProvider  `yaml:"ai_provider" json:"aiProvider"`
	GeminiAPIKey   string      `yaml:"gemini_api_key" json:"geminiApiKey"`
	OpenAIAPIKey   string      `yaml:"openai_api_key" json:"openAiApiKey"`
	OllamaURL      string      `yaml:"ollama_url" json:"ollamaUrl"`
	Theme          ThemeMode   `yaml:"theme_mode" json:"themeMode"`
	Language       AppLanguage `yaml:"language" json:"language"`
	TeacherGrade   string      `yaml:"teacher_grade" json:"teacherGrade"`
	TeacherSubject string      `yaml:"teacher_subject" json:"teacherSubject"`
}

// DefaultSettings returns the settings used before anything is saved.
func DefaultSettings() AppSettings {
	return AppSettings{
		AIProvider: ProviderGemini,
		OllamaURL:  DefaultOllamaURL,
		Theme:      ThemeSystem,
		Language:   LanguageEnglish,
	}
}

// Normalize replaces unknown or empty enum values with defaults.
func (s *AppSettings) Normalize() {
	def := DefaultSettings()
	if p, ok := ParseAIProvider(string(s.AIProvider)); ok {
		s.AIProvider = p
	} else {
		s.AIProvider = def.AIProvider
	}
	switch s.Theme {
	case ThemeSystem, ThemeLight, ThemeDark:
	default:
		s.Theme = def.Theme
	}
	switch s.Language {
	case LanguageEnglish, LanguageMyanmar:
	default:
		s.Language = def.Language
	}
	if strings.TrimSpace(s.OllamaURL) == "" {
		s.OllamaURL = def.OllamaURL
	}
}

// Credential returns the credential for the active provider.
// For Ollama this is the server URL.
func (s AppSettings) Credential() string {
	switch s.AIProvider {
	case ProviderOpenAI:
		return s.OpenAIAPIKey
	case ProviderOllama:
		return s.OllamaURL
	default:
		return s.GeminiAPIKey
	}
}

// Redacted returns a copy with API keys masked, for display.
func (s AppSettings) Redacted() AppSettings {
	s.GeminiAPIKey = maskSecret(s.GeminiAPIKey)
	s.OpenAIAPIKey = maskSecret(s.OpenAIAPIKey)
	return s
}

func maskSecret(v string) string {
	if len(v) <= 4 {
		if v == "" {
			return ""
		}
		return "****"
	}
	return strings.Repeat("*", len(v)-4) + v[len(v)-4:]
}
