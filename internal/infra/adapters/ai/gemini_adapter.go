// File: internal/infra/adapters/ai/gemini_adapter.go
package ai

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"

	"physical-ai-textbook/internal/domain/ports/adapter"
)

var _ adapter.Answerer = (*GeminiAnswerer)(nil)

type GeminiAnswerer struct {
	client *genai.Client
	model  string
	maxOut int
}

// NewGeminiAnswerer creates a Gemini answerer using the official SDK.
func NewGeminiAnswerer(ctx context.Context, apiKey, baseURL, model string, maxOut int) (*GeminiAnswerer, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiAnswerer{client: c, model: model, maxOut: maxOut}, nil
}

func (g *GeminiAnswerer) Name() string { return "gemini" }

func (g *GeminiAnswerer) Complete(ctx context.Context, messages []adapter.Message, opts adapter.CompletionOptions) (string, error) {
	system, contents := toGenAIContents(messages)
	if len(contents) == 0 {
		return "", errors.New("gemini: no messages")
	}

	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(firstPositive(opts.MaxTokens, g.maxOut)),
	}
	if opts.Temperature > 0 {
		cfg.Temperature = genai.Ptr(float32(opts.Temperature))
	}
	if system != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", err
	}

	// Extract text
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		var b strings.Builder
		for _, p := range resp.Candidates[0].Content.Parts {
			if p != nil {
				b.WriteString(p.Text)
			}
		}
		if b.Len() > 0 {
			return b.String(), nil
		}
	}
	return "", errors.New("gemini: empty response")
}

// toGenAIContents pulls system messages out into a single instruction;
// Gemini has no system role in history.
func toGenAIContents(msgs []adapter.Message) (string, []*genai.Content) {
	var system []string
	out := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		role := genai.RoleUser
		switch strings.ToLower(m.Role) {
		case "system":
			system = append(system, m.Content)
			continue
		case "assistant", "model":
			role = genai.RoleModel
		}
		out = append(out, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}
	return strings.Join(system, "\n\n"), out
}

func firstPositive(vals ...int) int {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}
