package devserver

import (
	"fmt"
	"strings"

	"physical-ai-textbook/internal/domain/model"
	"physical-ai-textbook/internal/domain/ports/adapter"
)

const (
	chatTemperature      = 0.7
	chatMaxTokens        = 1000
	rewriteMaxTokens     = 2000
	translateTemperature = 0.5
	sourcePreviewLen     = 200
)

func experienceOr(l model.ExperienceLevel) model.ExperienceLevel {
	if l.Valid() {
		return l
	}
	return model.ExperienceIntermediate
}

// chatPrompt tailors the system prompt to the reader when one is signed in.
// The selected passage, if any, is the only context the dev backend has.
func chatPrompt(question, selected string, user *model.User) []adapter.Message {
	system := "You are an expert AI assistant for a Physical AI & Humanoid Robotics textbook."
	if user != nil {
		system += fmt.Sprintf("\n\nThe user has %s software experience and %s hardware experience. Tailor your explanations accordingly.",
			experienceOr(user.SoftwareExperience), experienceOr(user.HardwareExperience))
	}

	var b strings.Builder
	if strings.TrimSpace(selected) != "" {
		b.WriteString("Based on the following context from the textbook, answer the question.\n\nContext:\n")
		b.WriteString(selected)
		b.WriteString("\n\n")
	}
	b.WriteString("Question: ")
	b.WriteString(question)
	b.WriteString("\n\nProvide a clear, comprehensive answer. If the context doesn't contain enough information, say so.")

	return []adapter.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: b.String()},
	}
}

func personalizePrompt(content string, user model.User) []adapter.Message {
	prompt := fmt.Sprintf(`Rewrite the following educational content to match the reader's experience level:
- Software Experience: %s
- Hardware Experience: %s

Original Content:
%s

Rewrite the content to be appropriate for this experience level. Adjust technical depth, add or remove explanations, and modify examples as needed. Keep the same structure and main points.`,
		experienceOr(user.SoftwareExperience), experienceOr(user.HardwareExperience), content)
	return []adapter.Message{
		{Role: "system", Content: "You are an expert educational content adapter."},
		{Role: "user", Content: prompt},
	}
}

func translatePrompt(content string) []adapter.Message {
	prompt := fmt.Sprintf(`Translate the following educational content to Urdu. Maintain technical terms in English where appropriate, but provide Urdu explanations.

Content:
%s

Provide a natural, educational translation in Urdu.`, content)
	return []adapter.Message{
		{Role: "system", Content: "You are an expert translator specializing in technical educational content."},
		{Role: "user", Content: prompt},
	}
}

// selectionSources reports the selected passage as the single cited source.
func selectionSources(selected string) []adapter.ChatSource {
	selected = strings.TrimSpace(selected)
	if selected == "" {
		return []adapter.ChatSource{}
	}
	preview := selected
	if r := []rune(preview); len(r) > sourcePreviewLen {
		preview = string(r[:sourcePreviewLen]) + "..."
	}
	return []adapter.ChatSource{{
		Text:     preview,
		Score:    1,
		Metadata: map[string]any{"source": "selected_text"},
	}}
}
