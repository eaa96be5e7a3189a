package model

import (
	"strings"
	"sync"
)

type VoiceState string

const (
	VoiceIdle      VoiceState = "idle"
	VoiceListening VoiceState = "listening"
)

// InputField holds the current, not yet submitted, text-input value.
// Manual typing and voice recognition both write here.
type InputField struct {
	mu    sync.RWMutex
	value string
}

func (f *InputField) Set(v string) {
	f.mu.Lock()
	f.value = v
	f.mu.Unlock()
}

func (f *InputField) Value() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.value
}

// Take returns the trimmed value and clears the field.
func (f *InputField) Take() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := strings.TrimSpace(f.value)
	f.value = ""
	return v
}
