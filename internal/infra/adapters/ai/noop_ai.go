package ai

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"physical-ai-textbook/internal/domain/ports/adapter"
	"physical-ai-textbook/internal/infra/logging"
)

var _ adapter.Answerer = (*EchoAnswerer)(nil)

// EchoAnswerer is the offline answerer for local development. It repeats the
// last user message instead of calling a model.
type EchoAnswerer struct {
	delay time.Duration
	log   *zerolog.Logger
}

func NewEchoAnswerer(delay time.Duration, logger *zerolog.Logger) *EchoAnswerer {
	if logger == nil {
		logger = logging.Nop()
	}
	return &EchoAnswerer{delay: delay, log: logger}
}

func (a *EchoAnswerer) Name() string { return "echo" }

func (a *EchoAnswerer) Complete(ctx context.Context, messages []adapter.Message, opts adapter.CompletionOptions) (string, error) {
	if a.delay > 0 {
		select {
		case <-time.After(a.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	var last string
	for i := len(messages) - 1; i >= 0; i-- {
		if strings.EqualFold(messages[i].Role, "user") {
			last = messages[i].Content
			break
		}
	}
	a.log.Debug().Int("messages", len(messages)).Msg("echo answer")
	return "[echo] " + strings.TrimSpace(last), nil
}
