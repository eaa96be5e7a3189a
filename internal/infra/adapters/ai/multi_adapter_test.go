package ai_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"physical-ai-textbook/internal/domain/ports/adapter"
	ai "physical-ai-textbook/internal/infra/adapters/ai"
)

type stubAnswerer struct {
	name  string
	out   string
	err   error
	calls atomic.Int32
	block chan struct{}
}

func (s *stubAnswerer) Name() string { return s.name }

func (s *stubAnswerer) Complete(ctx context.Context, messages []adapter.Message, opts adapter.CompletionOptions) (string, error) {
	s.calls.Add(1)
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.out, s.err
}

func TestMultiAnswerer_DefaultFirstThenFallback(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	open := &stubAnswerer{name: "openai", err: errors.New("quota")}
	gem := &stubAnswerer{name: "gemini", out: "from gemini"}

	m := ai.NewMultiAnswerer("openai", gem, open)
	if m.Name() != "openai" {
		t.Fatalf("default provider should lead, got %s", m.Name())
	}
	out, err := m.Complete(ctx, []adapter.Message{{Role: "user", Content: "q"}}, adapter.CompletionOptions{})
	if err != nil || out != "from gemini" {
		t.Fatalf("unexpected result %q %v", out, err)
	}
	if open.calls.Load() != 1 || gem.calls.Load() != 1 {
		t.Fatalf("expected both providers tried once, got open:%d gem:%d", open.calls.Load(), gem.calls.Load())
	}
}

func TestMultiAnswerer_AllFail(t *testing.T) {
	t.Parallel()
	a := &stubAnswerer{name: "a", err: errors.New("boom-a")}
	b := &stubAnswerer{name: "b", err: errors.New("boom-b")}
	_, err := ai.NewMultiAnswerer("a", a, b).Complete(context.Background(), nil, adapter.CompletionOptions{})
	if err == nil || !errors.Is(err, a.err) || !errors.Is(err, b.err) {
		t.Fatalf("expected joined errors, got %v", err)
	}

	if _, err := ai.NewMultiAnswerer("x").Complete(context.Background(), nil, adapter.CompletionOptions{}); err == nil {
		t.Fatal("empty multi answerer should fail")
	}
}

func TestEchoAnswerer(t *testing.T) {
	t.Parallel()
	e := ai.NewEchoAnswerer(0, nil)
	out, err := e.Complete(context.Background(), []adapter.Message{
		{Role: "system", Content: "be nice"},
		{Role: "user", Content: " What is ROS 2? "},
	}, adapter.CompletionOptions{})
	if err != nil || out != "[echo] What is ROS 2?" {
		t.Fatalf("unexpected echo %q %v", out, err)
	}

	slow := ai.NewEchoAnswerer(time.Hour, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := slow.Complete(ctx, nil, adapter.CompletionOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

func TestLimitedAnswerer_RespectsContext(t *testing.T) {
	t.Parallel()
	inner := &stubAnswerer{name: "slow", out: "ok", block: make(chan struct{})}
	l := ai.NewLimitedAnswerer(inner, 1)

	done := make(chan struct{})
	go func() {
		_, _ = l.Complete(context.Background(), nil, adapter.CompletionOptions{})
		close(done)
	}()
	for i := 0; i < 200 && inner.calls.Load() == 0; i++ {
		time.Sleep(time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := l.Complete(ctx, nil, adapter.CompletionOptions{}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("second call should wait for the slot and time out, got %v", err)
	}
	close(inner.block)
	<-done

	if ai.NewLimitedAnswerer(inner, 0) != adapter.Answerer(inner) {
		t.Fatal("zero limit should return the inner answerer")
	}
}
