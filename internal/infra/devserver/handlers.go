package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"physical-ai-textbook/internal/domain"
	"physical-ai-textbook/internal/domain/model"
	"physical-ai-textbook/internal/domain/ports/adapter"
	"physical-ai-textbook/internal/domain/ports/repository"
	"physical-ai-textbook/internal/infra/logging"
	"physical-ai-textbook/internal/infra/metrics"
	red "physical-ai-textbook/internal/infra/redis"
)

const maxBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDetail mirrors FastAPI's {"detail": "..."} error body.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(v); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return false
	}
	return true
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Physical AI Textbook API",
		"status":  "running",
		"version": "1.0.0",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "ai": s.ai.Name()})
}

func (s *Server) authResponse(w http.ResponseWriter, msg string, u model.User) {
	tok, err := s.issuer.Mint(u.ID, u.Email)
	if err != nil {
		s.log.Error().Err(err).Msg("mint token")
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, adapter.AuthResponse{Message: msg, Token: tok, User: u})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var p model.SignupProfile
	if !decode(w, r, &p) {
		return
	}
	p.Email = strings.TrimSpace(p.Email)
	p.Name = strings.TrimSpace(p.Name)
	if err := p.Validate(); err != nil {
		metrics.IncAuthAttempt("signup", "invalid")
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if !strings.Contains(p.Email, "@") {
		metrics.IncAuthAttempt("signup", "invalid")
		writeDetail(w, http.StatusUnprocessableEntity, "value is not a valid email address")
		return
	}

	hash, err := HashPassword(p.Password)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Password is not acceptable")
		return
	}
	acct := &repository.Account{
		User: model.User{
			Email:              p.Email,
			Name:               p.Name,
			SoftwareExperience: p.SoftwareExperience,
			HardwareExperience: p.HardwareExperience,
		},
		PasswordHash: hash,
	}
	if err := s.accounts.Create(r.Context(), acct); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			metrics.IncAuthAttempt("signup", "duplicate")
			writeDetail(w, http.StatusBadRequest, "Email already registered")
			return
		}
		s.log.Error().Err(err).Msg("create account")
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	metrics.IncAuthAttempt("signup", "ok")
	s.authResponse(w, "User created successfully", acct.User)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req adapter.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	ctx := r.Context()
	l := logging.With(ctx, s.log)

	if s.limiter != nil {
		ok, err := s.limiter.Allow(ctx, red.LoginAttemptKey(req.Email), s.cfg.LoginLimit, s.cfg.LoginWindow)
		if err != nil {
			l.Warn().Err(err).Msg("login limiter unavailable; allowing")
		} else if !ok {
			metrics.IncAuthAttempt("login", "throttled")
			writeDetail(w, http.StatusTooManyRequests, "Too many login attempts. Please try again later.")
			return
		}
	}

	acct, err := s.accounts.FindByEmail(ctx, req.Email)
	if err != nil || !CheckPassword(acct.PasswordHash, req.Password) {
		metrics.IncAuthAttempt("login", "rejected")
		l.Info().Str("email", logging.Redact(req.Email, false)).Msg("login rejected")
		writeDetail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	metrics.IncAuthAttempt("login", "ok")
	s.authResponse(w, "Login successful", acct.User)
}

// currentUser returns nil for a missing or invalid bearer, like the original
// optional dependency.
func (s *Server) currentUser(ctx context.Context, r *http.Request) *model.User {
	claims, err := s.issuer.ParseFromRequest(r)
	if err != nil {
		return nil
	}
	acct, err := s.accounts.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil
	}
	return &acct.User
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u := s.currentUser(r.Context(), r)
	if u == nil {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req adapter.ChatRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "question is required")
		return
	}
	ctx := r.Context()
	sid := req.SessionID
	if sid == "" {
		sid = uuid.NewString()
	}
	ctx = logging.WithSessID(ctx, sid)
	user := s.currentUser(ctx, r)
	if user != nil {
		ctx = logging.WithUserID(ctx, user.ID)
	}

	answer, err := s.ai.Complete(ctx, chatPrompt(req.Question, req.SelectedText, user),
		adapter.CompletionOptions{Temperature: chatTemperature, MaxTokens: chatMaxTokens})
	if err != nil {
		logging.With(ctx, s.log).Error().Err(err).Msg("chat completion failed")
		writeDetail(w, http.StatusInternalServerError, "Failed to generate answer")
		return
	}
	writeJSON(w, http.StatusOK, adapter.ChatResponse{
		Answer:    answer,
		Sources:   selectionSources(req.SelectedText),
		SessionID: sid,
	})
}

func (s *Server) handlePersonalize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := s.currentUser(ctx, r)
	if user == nil {
		writeDetail(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	var req adapter.PersonalizeRequest
	if !decode(w, r, &req) {
		return
	}
	out, err := s.ai.Complete(ctx, personalizePrompt(req.Content, *user),
		adapter.CompletionOptions{Temperature: chatTemperature, MaxTokens: rewriteMaxTokens})
	if err != nil {
		logging.With(ctx, s.log).Error().Err(err).Str("page", req.PagePath).Msg("personalize failed")
		writeDetail(w, http.StatusInternalServerError, "Failed to personalize content")
		return
	}
	writeJSON(w, http.StatusOK, adapter.PersonalizeResponse{PersonalizedContent: out})
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req adapter.TranslateRequest
	if !decode(w, r, &req) {
		return
	}
	ctx := r.Context()
	out, err := s.ai.Complete(ctx, translatePrompt(req.Content),
		adapter.CompletionOptions{Temperature: translateTemperature, MaxTokens: rewriteMaxTokens})
	if err != nil {
		logging.With(ctx, s.log).Error().Err(err).Msg("translate failed")
		writeDetail(w, http.StatusInternalServerError, "Failed to translate content")
		return
	}
	writeJSON(w, http.StatusOK, adapter.TranslateResponse{TranslatedContent: out})
}
