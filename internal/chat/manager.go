// Package chat implements the conversation manager behind the assistant.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/raphaelgruber/sayar/internal/llm"
	"github.com/raphaelgruber/sayar/internal/models"
)

// ContextWindow is the number of trailing messages sent with each request.
const ContextWindow = 10

// FallbackReply is shown when the provider returns neither text nor an error payload.
const FallbackReply = "Sorry, I couldn't generate a response. Please try again."

// SettingsSource provides the current settings snapshot.
type SettingsSource interface {
	Current(ctx context.Context) (models.AppSettings, error)
}

// Manager owns one conversation: its history, loading flag and last error.
// Only one Submit may be in flight; a concurrent Submit fails with ErrBusy.
type Manager struct {
	generator llm.Generator
	settings  SettingsSource
	logger    *slog.Logger
	now       func() time.Time

	mu        sync.Mutex
	messages  []models.ChatMessage
	loading   bool
	lastError string

	subMu   sync.Mutex
	subs    map[int]chan models.ConversationState
	nextSub int
}

// NewManager creates an empty conversation.
func NewManager(generator llm.Generator, settings SettingsSource, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		generator: generator,
		settings:  settings,
		logger:    logger,
		now:       time.Now,
		subs:      make(map[int]chan models.ConversationState),
	}
}

// Submit sends userText to the active provider and appends the reply.
// Blank input is ignored and returns (nil, nil). Failures are returned as *Error.
func (m *Manager) Submit(ctx context.Context, userText string) (*models.ChatMessage, error) {
	if strings.TrimSpace(userText) == "" {
		return nil, nil
	}

	settings, err := m.settings.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	credential := settings.Credential()
	if strings.TrimSpace(credential) == "" {
		return nil, missingCredentialError(settings.AIProvider)
	}

	m.mu.Lock()
	if m.loading {
		m.mu.Unlock()
		return nil, busyError()
	}
	m.messages = append(m.messages, models.NewChatMessage(userText, true, m.now()))
	m.loading = true
	turns := toTurns(m.recentLocked())
	m.mu.Unlock()
	m.notify()

	resp, genErr := m.generator.Generate(ctx, llm.GenerateRequest{
		Provider:          settings.AIProvider,
		Credential:        credential,
		SystemInstruction: SystemInstruction(settings),
		Turns:             turns,
		Config:            llm.DefaultGenerationConfig(),
	})

	if genErr != nil {
		chatErr := classifyFailure(genErr, settings.AIProvider)
		m.logger.Warn("chat submit failed",
			"provider", settings.AIProvider,
			"kind", chatErr.Kind.String(),
			"error", genErr)

		m.mu.Lock()
		m.loading = false
		m.lastError = chatErr.Message
		m.mu.Unlock()
		m.notify()
		return nil, chatErr
	}

	reply, ok := resp.FirstCandidate()
	if !ok {
		reply = resp.ErrorMessage
	}
	if reply == "" {
		reply = FallbackReply
	}

	m.mu.Lock()
	msg := models.NewChatMessage(reply, false, m.now())
	m.messages = append(m.messages, msg)
	m.loading = false
	m.lastError = ""
	m.mu.Unlock()
	m.notify()

	return &msg, nil
}

// recentLocked returns a copy of the trailing context window. Caller must hold mu.
func (m *Manager) recentLocked() []models.ChatMessage {
	start := max(len(m.messages)-ContextWindow, 0)
	out := make([]models.ChatMessage, len(m.messages)-start)
	copy(out, m.messages[start:])
	return out
}

func toTurns(messages []models.ChatMessage) []llm.Turn {
	turns := make([]llm.Turn, len(messages))
	for i, msg := range messages {
		turns[i] = llm.Turn{Role: msg.Role(), Text: msg.Content}
	}
	return turns
}

// RecentContext returns the last ContextWindow messages in chronological order.
func (m *Manager) RecentContext() []models.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recentLocked()
}

// Messages returns a copy of the full history.
func (m *Manager) Messages() []models.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.ChatMessage(nil), m.messages...)
}

// Loading reports whether a Submit is in flight.
func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// LastError returns the message of the last failed Submit, or "".
func (m *Manager) LastError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastError
}

// State returns a snapshot of the conversation.
func (m *Manager) State() models.ConversationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

func (m *Manager) stateLocked() models.ConversationState {
	return models.ConversationState{
		Messages:  append([]models.ChatMessage{}, m.messages...),
		Loading:   m.loading,
		LastError: m.lastError,
	}
}

// Clear empties the history. The loading flag and last error are left as they are.
func (m *Manager) Clear() {
	m.mu.Lock()
	m.messages = nil
	m.mu.Unlock()
	m.notify()
}

// ClearError resets the last error.
func (m *Manager) ClearError() {
	m.mu.Lock()
	m.lastError = ""
	m.mu.Unlock()
	m.notify()
}

// Restore replaces the history with previously exported messages.
func (m *Manager) Restore(messages []models.ChatMessage) error {
	m.mu.Lock()
	if m.loading {
		m.mu.Unlock()
		return busyError()
	}
	m.messages = append([]models.ChatMessage(nil), messages...)
	m.mu.Unlock()
	m.notify()
	return nil
}

// Subscribe returns a channel that receives the state after every change,
// and a function that cancels the subscription. Slow readers only see the
// latest state.
func (m *Manager) Subscribe() (<-chan models.ConversationState, func()) {
	ch := make(chan models.ConversationState, 1)

	m.subMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch
	m.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.subMu.Lock()
			delete(m.subs, id)
			m.subMu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// notify snapshots under subMu so deliveries are ordered; the last send
// always carries the newest state. Lock order is subMu then mu.
func (m *Manager) notify() {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	state := m.State()
	for _, ch := range m.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- state:
		default:
		}
	}
}
