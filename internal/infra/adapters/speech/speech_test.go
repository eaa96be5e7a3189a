//go:build !integration

package speech_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"physical-ai-textbook/internal/domain"
	"physical-ai-textbook/internal/domain/ports/adapter"
	"physical-ai-textbook/internal/infra/adapters/speech"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	mu     sync.Mutex
	result string
	err    error
	ended  chan struct{}
}

func newRecorder() *recorder { return &recorder{ended: make(chan struct{})} }

func (r *recorder) OnResult(t string) { r.mu.Lock(); r.result = t; r.mu.Unlock() }
func (r *recorder) OnError(err error) { r.mu.Lock(); r.err = err; r.mu.Unlock() }
func (r *recorder) OnEnd()            { close(r.ended) }

func (r *recorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.ended:
	case <-time.After(5 * time.Second):
		t.Fatal("capture never ended")
	}
}

func TestCommandRecognizer(t *testing.T) {
	ctx := context.Background()

	t.Run("missing binary is unsupported", func(t *testing.T) {
		if speech.NewCommandRecognizer("definitely-not-a-recognizer-binary", nil).Supported() {
			t.Error("expected unsupported")
		}
		if speech.NewCommandRecognizer("", nil).Supported() {
			t.Error("empty command must be unsupported")
		}
	})

	t.Run("first stdout line is the transcript", func(t *testing.T) {
		r := speech.NewCommandRecognizer(`printf \nservo\nignored\n`, nil)
		if !r.Supported() {
			t.Skip("printf not available")
		}
		h := newRecorder()
		if err := r.Start(ctx, h); err != nil {
			t.Fatal(err)
		}
		h.wait(t)
		h.mu.Lock()
		defer h.mu.Unlock()
		if h.result != "servo" || h.err != nil {
			t.Errorf("unexpected outcome result=%q err=%v", h.result, h.err)
		}
	})

	t.Run("failure without output reports error", func(t *testing.T) {
		r := speech.NewCommandRecognizer("false", nil)
		if !r.Supported() {
			t.Skip("false not available")
		}
		h := newRecorder()
		if err := r.Start(ctx, h); err != nil {
			t.Fatal(err)
		}
		h.wait(t)
		h.mu.Lock()
		defer h.mu.Unlock()
		if h.err == nil || h.result != "" {
			t.Errorf("expected an error, got result=%q", h.result)
		}
	})

	t.Run("stop delivers only the end", func(t *testing.T) {
		r := speech.NewCommandRecognizer("sleep 30", nil)
		if !r.Supported() {
			t.Skip("sleep not available")
		}
		h := newRecorder()
		if err := r.Start(ctx, h); err != nil {
			t.Fatal(err)
		}
		_ = r.Stop()
		h.wait(t)
		h.mu.Lock()
		defer h.mu.Unlock()
		if h.err != nil || h.result != "" {
			t.Errorf("stopped capture leaked events: result=%q err=%v", h.result, h.err)
		}
	})
}

func TestCommandSynthesizer_CancelStopsPlayback(t *testing.T) {
	s := speech.NewCommandSynthesizer("sleep 30", nil)
	if !s.Supported() {
		t.Skip("sleep not available")
	}
	u := adapter.Utterance{Text: "hello", Lang: "en-US", Rate: 1, Pitch: 1}
	if err := s.Speak(context.Background(), u); err != nil {
		t.Fatal(err)
	}
	// A second utterance replaces the first.
	if err := s.Speak(context.Background(), u); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		_ = s.Cancel()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("cancel did not stop playback")
	}
	s.Wait()
}

func TestCommandSynthesizer_ReadsStdin(t *testing.T) {
	s := speech.NewCommandSynthesizer("cat", nil)
	if !s.Supported() {
		t.Skip("cat not available")
	}
	if err := s.Speak(context.Background(), adapter.Utterance{Text: "hi"}); err != nil {
		t.Fatal(err)
	}
	s.Wait()
}

func TestUnsupported(t *testing.T) {
	var u speech.Unsupported
	if u.Supported() {
		t.Fatal("unsupported reports supported")
	}
	if err := u.Start(context.Background(), newRecorder()); !errors.Is(err, domain.ErrVoiceUnsupported) {
		t.Errorf("unexpected error %v", err)
	}
	if err := u.Speak(context.Background(), adapter.Utterance{}); !errors.Is(err, domain.ErrVoiceUnsupported) {
		t.Errorf("unexpected error %v", err)
	}
}
