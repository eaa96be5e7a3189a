package adapter

import (
	"context"
	"fmt"

	"physical-ai-textbook/internal/domain/model"
)

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	Message string     `json:"message,omitempty"`
	Token   string     `json:"token"`
	User    model.User `json:"user"`
}

// ChatRequest is the body of POST /api/chat. SelectedText and SessionID
// pass through opaquely.
type ChatRequest struct {
	Question     string `json:"question"`
	SelectedText string `json:"selected_text,omitempty"`
	SessionID    string `json:"session_id,omitempty"`
}

// ChatSource is one retrieved context chunk the backend cites.
type ChatSource struct {
	Text     string         `json:"text"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type ChatResponse struct {
	Answer    string       `json:"answer"`
	Sources   []ChatSource `json:"sources,omitempty"`
	SessionID string       `json:"session_id,omitempty"`
}

type PersonalizeRequest struct {
	Content  string `json:"content"`
	PagePath string `json:"page_path"`
}

type PersonalizeResponse struct {
	PersonalizedContent string `json:"personalized_content"`
}

type TranslateRequest struct {
	Content string `json:"content"`
}

type TranslateResponse struct {
	TranslatedContent string `json:"translated_content"`
}

// AuthAPI covers the /api/auth endpoints.
type AuthAPI interface {
	Signup(ctx context.Context, p model.SignupProfile) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	// Me validates the stored bearer token and returns its user.
	Me(ctx context.Context) (*model.User, error)
}

// ChatAPI is the assistant endpoint.
type ChatAPI interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ContentAPI covers personalization and translation.
type ContentAPI interface {
	Personalize(ctx context.Context, req PersonalizeRequest) (*PersonalizeResponse, error)
	Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error)
}

// Backend is the full contract consumed by the client.
type Backend interface {
	AuthAPI
	ChatAPI
	ContentAPI
}

// HTTPError is a non-2xx backend response. Detail carries the optional
// {"detail": ...} field.
type HTTPError struct {
	Method string
	Path   string
	Status int
	Detail string
}

func (e *HTTPError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: http %d: %s", e.Method, e.Path, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s %s: http %d", e.Method, e.Path, e.Status)
}
