package ai

import (
	"context"

	"physical-ai-textbook/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.Answerer = (*limitedAnswerer)(nil)

type limitedAnswerer struct {
	inner adapter.Answerer
	sem   chan struct{}
}

// NewLimitedAnswerer caps concurrent completions. maxConcurrent <= 0 disables the cap.
func NewLimitedAnswerer(inner adapter.Answerer, maxConcurrent int) adapter.Answerer {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedAnswerer{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedAnswerer) Name() string { return l.inner.Name() }

func (l *limitedAnswerer) Complete(ctx context.Context, messages []adapter.Message, opts adapter.CompletionOptions) (string, error) {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { <-l.sem }()
	return l.inner.Complete(ctx, messages, opts)
}
