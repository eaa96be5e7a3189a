// File: internal/usecase/voice_uc.go
package usecase

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"physical-ai-textbook/internal/config"
	"physical-ai-textbook/internal/domain"
	"physical-ai-textbook/internal/domain/model"
	"physical-ai-textbook/internal/domain/ports/adapter"
	"physical-ai-textbook/internal/infra/logging"
	"physical-ai-textbook/internal/infra/metrics"
)

// VoiceAdapter bridges the speech capabilities to the text input. It never
// submits anything on its own.
type VoiceAdapter struct {
	rec   adapter.SpeechRecognizer
	syn   adapter.SpeechSynthesizer
	input *model.InputField
	cfg   config.VoiceConfig
	log   *zerolog.Logger

	canRecognize bool
	canSpeak     bool
	onTranscript func(string)

	mu    sync.Mutex
	state model.VoiceState
	gen   uint64 // identifies the current capture

	speakMu sync.Mutex
}

type VoiceOption func(*VoiceAdapter)

// WithTranscriptHook is called after a transcript has been written to the input.
func WithTranscriptHook(fn func(text string)) VoiceOption {
	return func(v *VoiceAdapter) { v.onTranscript = fn }
}

// NewVoiceAdapter probes both capabilities once. Nil ports count as unsupported.
func NewVoiceAdapter(rec adapter.SpeechRecognizer, syn adapter.SpeechSynthesizer, input *model.InputField, cfg config.VoiceConfig, logger *zerolog.Logger, opts ...VoiceOption) *VoiceAdapter {
	if logger == nil {
		logger = logging.Nop()
	}
	if input == nil {
		input = &model.InputField{}
	}
	v := &VoiceAdapter{
		rec:          rec,
		syn:          syn,
		input:        input,
		cfg:          cfg,
		log:          logger,
		canRecognize: rec != nil && rec.Supported(),
		canSpeak:     syn != nil && syn.Supported(),
		state:        model.VoiceIdle,
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

func (v *VoiceAdapter) RecognitionSupported() bool { return v.canRecognize }
func (v *VoiceAdapter) SynthesisSupported() bool   { return v.canSpeak }

func (v *VoiceAdapter) State() model.VoiceState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// StartListening begins one capture. It is a no-op while already listening.
func (v *VoiceAdapter) StartListening(ctx context.Context) error {
	if !v.canRecognize {
		metrics.IncVoiceEvent("unsupported")
		return domain.ErrVoiceUnsupported
	}

	v.mu.Lock()
	if v.state == model.VoiceListening {
		v.mu.Unlock()
		return nil
	}
	v.gen++
	gen := v.gen
	v.state = model.VoiceListening
	v.mu.Unlock()

	metrics.IncVoiceEvent("start")
	if err := v.rec.Start(ctx, &capture{v: v, gen: gen}); err != nil {
		v.log.Warn().Err(err).Msg("speech recognizer failed to start")
		v.finish(gen, "error")
		return err
	}
	return nil
}

// StopListening ends the current capture immediately. Events it would still
// deliver are ignored.
func (v *VoiceAdapter) StopListening() error {
	v.mu.Lock()
	if v.state != model.VoiceListening {
		v.mu.Unlock()
		return nil
	}
	v.gen++
	v.state = model.VoiceIdle
	v.mu.Unlock()

	metrics.IncVoiceEvent("stop")
	return v.rec.Stop()
}

// Speak interrupts whatever is playing and starts text.
func (v *VoiceAdapter) Speak(ctx context.Context, text string) error {
	if !v.canSpeak {
		metrics.IncVoiceEvent("unsupported")
		return domain.ErrVoiceUnsupported
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	v.speakMu.Lock()
	defer v.speakMu.Unlock()
	if err := v.syn.Cancel(); err != nil {
		v.log.Debug().Err(err).Msg("cancel previous utterance")
	}
	metrics.IncVoiceEvent("speak")
	return v.syn.Speak(ctx, adapter.Utterance{
		Text:  text,
		Lang:  v.cfg.Lang,
		Rate:  v.cfg.Rate,
		Pitch: v.cfg.Pitch,
	})
}

// finish returns to idle if gen is still the current capture.
func (v *VoiceAdapter) finish(gen uint64, event string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.gen != gen || v.state != model.VoiceListening {
		return false
	}
	v.state = model.VoiceIdle
	metrics.IncVoiceEvent(event)
	return true
}

// capture routes recognizer callbacks for one generation.
type capture struct {
	v   *VoiceAdapter
	gen uint64
}

var _ adapter.RecognitionHandler = (*capture)(nil)

func (c *capture) OnResult(transcript string) {
	v := c.v
	v.mu.Lock()
	if v.gen != c.gen || v.state != model.VoiceListening {
		v.mu.Unlock()
		return
	}
	v.input.Set(transcript)
	v.state = model.VoiceIdle
	v.mu.Unlock()

	metrics.IncVoiceEvent("result")
	v.log.Debug().Int("chars", len(transcript)).Msg("transcript received")
	if v.onTranscript != nil {
		v.onTranscript(transcript)
	}
}

func (c *capture) OnError(err error) {
	if c.v.finish(c.gen, "error") {
		c.v.log.Info().Err(err).Msg("speech recognition error")
	}
}

func (c *capture) OnEnd() { c.v.finish(c.gen, "end") }
