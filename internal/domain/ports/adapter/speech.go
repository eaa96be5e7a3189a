package adapter

import "context"

// RecognitionHandler receives the outcome of one capture. Exactly one of
// OnResult / OnError / OnEnd is expected per capture, but callers must
// tolerate OnEnd arriving after the others.
type RecognitionHandler interface {
	OnResult(transcript string)
	OnError(err error)
	OnEnd()
}

// SpeechRecognizer is an optional platform capability.
type SpeechRecognizer interface {
	Supported() bool
	// Start begins a single non-continuous capture and returns immediately.
	Start(ctx context.Context, h RecognitionHandler) error
	Stop() error
}

// Utterance is a piece of text to be spoken.
type Utterance struct {
	Text  string
	Lang  string
	Rate  float64
	Pitch float64
}

// SpeechSynthesizer is an optional platform capability.
type SpeechSynthesizer interface {
	Supported() bool
	// Speak starts playback and returns without waiting for it to finish.
	Speak(ctx context.Context, u Utterance) error
	// Cancel stops any current playback. No-op when silent.
	Cancel() error
}
