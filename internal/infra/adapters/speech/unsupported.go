package speech

import (
	"context"

	"physical-ai-textbook/internal/domain"
	"physical-ai-textbook/internal/domain/ports/adapter"
)

var (
	_ adapter.SpeechRecognizer  = Unsupported{}
	_ adapter.SpeechSynthesizer = Unsupported{}
)

// Unsupported reports both capabilities as missing.
type Unsupported struct{}

func (Unsupported) Supported() bool { return false }

func (Unsupported) Start(context.Context, adapter.RecognitionHandler) error {
	return domain.ErrVoiceUnsupported
}

func (Unsupported) Stop() error { return nil }

func (Unsupported) Speak(context.Context, adapter.Utterance) error {
	return domain.ErrVoiceUnsupported
}

func (Unsupported) Cancel() error { return nil }
