// File: internal/infra/adapters/ai/multi_adapter.go
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"physical-ai-textbook/internal/domain/ports/adapter"
	"physical-ai-textbook/internal/infra/metrics"
)

var _ adapter.Answerer = (*MultiAnswerer)(nil)

// MultiAnswerer tries the default provider first and falls back to the
// others in registration order.
type MultiAnswerer struct {
	order      []string
	byProvider map[string]adapter.Answerer
}

// NewMultiAnswerer registers answerers by Name(). Nil entries are skipped.
func NewMultiAnswerer(defaultProvider string, answerers ...adapter.Answerer) *MultiAnswerer {
	m := &MultiAnswerer{byProvider: make(map[string]adapter.Answerer, len(answerers))}
	def := strings.ToLower(defaultProvider)
	for _, a := range answerers {
		if a == nil {
			continue
		}
		name := strings.ToLower(a.Name())
		if _, dup := m.byProvider[name]; dup {
			continue
		}
		m.byProvider[name] = a
		if name == def {
			m.order = append([]string{name}, m.order...)
		} else {
			m.order = append(m.order, name)
		}
	}
	return m
}

func (m *MultiAnswerer) Name() string {
	if len(m.order) == 0 {
		return "none"
	}
	return m.order[0]
}

// Providers lists registered providers, default first.
func (m *MultiAnswerer) Providers() []string {
	return append([]string(nil), m.order...)
}

func (m *MultiAnswerer) Complete(ctx context.Context, messages []adapter.Message, opts adapter.CompletionOptions) (string, error) {
	if len(m.order) == 0 {
		return "", errors.New("ai: no answerer configured")
	}
	var errs []error
	for _, name := range m.order {
		start := time.Now()
		out, err := m.byProvider[name].Complete(ctx, messages, opts)
		metrics.ObserveAnswer(name, time.Since(start).Milliseconds(), err == nil)
		if err == nil {
			return out, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", name, err))
		if ctx.Err() != nil {
			break
		}
	}
	return "", errors.Join(errs...)
}
