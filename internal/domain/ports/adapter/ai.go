package adapter

import "context"

// Message represents a chat message sent to a language model.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// CompletionOptions tune a single completion call.
type CompletionOptions struct {
	Temperature float64
	MaxTokens   int
}

// Answerer is the port the development backend uses to produce answers,
// personalized rewrites and translations.
type Answerer interface {
	Name() string
	Complete(ctx context.Context, messages []Message, opts CompletionOptions) (string, error)
}
