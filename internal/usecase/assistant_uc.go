// File: internal/usecase/assistant_uc.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"physical-ai-textbook/internal/domain"
	"physical-ai-textbook/internal/domain/model"
	"physical-ai-textbook/internal/domain/ports/adapter"
	"physical-ai-textbook/internal/infra/logging"
	"physical-ai-textbook/internal/infra/metrics"
)

// AssistantEngine drives one conversation against the chat endpoint. It is
// the only writer of its Conversation.
type AssistantEngine struct {
	chat adapter.ChatAPI
	tr   Translator
	log  *zerolog.Logger
	conv *model.Conversation

	mu        sync.Mutex
	sessionID string
	selected  string
	closed    bool
	metrics   bool
}

type EngineOption func(*AssistantEngine)

// WithSessionID seeds the opaque session identifier sent with each request.
func WithSessionID(id string) EngineOption {
	return func(e *AssistantEngine) { e.sessionID = strings.TrimSpace(id) }
}

// WithSelectedText sets the default selected-text context for Send.
func WithSelectedText(text string) EngineOption {
	return func(e *AssistantEngine) { e.selected = text }
}

// WithMetrics toggles prometheus counters for sends.
func WithMetrics(on bool) EngineOption {
	return func(e *AssistantEngine) { e.metrics = on }
}

func NewAssistantEngine(chat adapter.ChatAPI, tr Translator, logger *zerolog.Logger, opts ...EngineOption) *AssistantEngine {
	if logger == nil {
		logger = logging.Nop()
	}
	e := &AssistantEngine{
		chat:    chat,
		tr:      tr,
		log:     logger,
		conv:    model.NewConversation(),
		metrics: true,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Send asks the assistant a question using the default selected text.
func (e *AssistantEngine) Send(ctx context.Context, text string) bool {
	e.mu.Lock()
	sel := e.selected
	e.mu.Unlock()
	return e.SendWithSelection(ctx, text, sel)
}

// SendWithSelection appends the user message, waits for the reply and
// appends it (or the fallback text). It returns false without touching the
// conversation when text is blank, a request is already pending, or the
// engine is closed. Failures are never returned; the conversation carries them.
func (e *AssistantEngine) SendWithSelection(ctx context.Context, text, selected string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		e.log.Debug().Err(domain.ErrEngineClosed).Msg("send ignored")
		return false
	}
	sid := e.sessionID
	e.mu.Unlock()

	if !e.conv.TryBegin(model.NewMessage(model.RoleUser, text)) {
		e.count("debounced")
		return false
	}

	ctx = logging.WithSessID(ctx, sid)
	l := logging.With(ctx, e.log)
	defer logging.TraceDuration(l, "AssistantEngine.Send")()

	resp, err := e.chat.Chat(ctx, adapter.ChatRequest{
		Question:     text,
		SelectedText: selected,
		SessionID:    sid,
	})

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		// Reply arrived after teardown.
		l.Debug().Err(domain.ErrEngineClosed).Msg("late reply discarded")
		e.count("discarded")
		return true
	}

	if err != nil {
		l.Warn().Err(errors.Join(domain.ErrAssistantUnavailable, err)).Msg("assistant request failed")
		e.fail()
		return true
	}
	if resp.SessionID != "" {
		e.sessionID = resp.SessionID
	}
	e.conv.Append(model.NewMessage(model.RoleAssistant, resp.Answer))
	e.conv.SetStatus(model.RequestSucceeded)
	e.count("answered")
	return true
}

// fail appends the fallback reply. Caller holds e.mu.
func (e *AssistantEngine) fail() {
	e.conv.Append(model.NewMessage(model.RoleAssistant, e.tr.T("chat.fallback")))
	e.conv.SetStatus(model.RequestFailed)
	e.count("fallback")
}

func (e *AssistantEngine) count(outcome string) {
	if e.metrics {
		metrics.IncChatSend(outcome)
	}
}

// Conversation exposes the log for reading. Callers must not append to it.
func (e *AssistantEngine) Conversation() *model.Conversation { return e.conv }

func (e *AssistantEngine) Status() model.RequestStatus { return e.conv.Status() }

// SessionID is the identifier the backend last returned, or the seeded one.
func (e *AssistantEngine) SessionID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessionID
}

// Close tears the engine down. Replies still in flight are dropped.
func (e *AssistantEngine) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
}
