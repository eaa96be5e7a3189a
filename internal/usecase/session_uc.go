// File: internal/usecase/session_uc.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"physical-ai-textbook/internal/domain"
	"physical-ai-textbook/internal/domain/model"
	"physical-ai-textbook/internal/domain/ports/adapter"
	"physical-ai-textbook/internal/domain/ports/repository"
	"physical-ai-textbook/internal/infra/logging"
	"physical-ai-textbook/internal/infra/metrics"
)

// Translator resolves user-visible strings.
type Translator interface {
	T(key string, args ...interface{}) string
}

// SessionReader is the read-only handle handed to every consumer of the
// current user.
type SessionReader interface {
	State() model.SessionState
	User() *model.User
	Ready() <-chan struct{}
}

// Compile-time check
var _ SessionReader = (*SessionManager)(nil)

// SessionManager owns the session token and the current user. It is the
// only writer of the token store.
type SessionManager struct {
	tokens repository.TokenStore
	auth   adapter.AuthAPI
	tr     Translator
	log    *zerolog.Logger

	mu      sync.RWMutex
	phase   model.SessionPhase
	user    *model.User
	epoch   uint64 // bumped by login, signup and logout
	started bool

	ready     chan struct{}
	readyOnce sync.Once
}

func NewSessionManager(tokens repository.TokenStore, auth adapter.AuthAPI, tr Translator, logger *zerolog.Logger) *SessionManager {
	if logger == nil {
		logger = logging.Nop()
	}
	return &SessionManager{
		tokens: tokens,
		auth:   auth,
		tr:     tr,
		log:    logger,
		phase:  model.SessionUninitialized,
		ready:  make(chan struct{}),
	}
}

// Start runs the startup validation once. Later calls return immediately.
// It never returns an error: an invalid or unreadable token simply ends in
// the anonymous phase.
func (s *SessionManager) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	epoch := s.epoch
	s.mu.Unlock()

	defer logging.TraceDuration(s.log, "SessionManager.Start")()

	tok, ok, err := s.tokens.Get(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("token store unreadable; starting anonymous")
	}
	if err != nil || !ok {
		s.resolve(epoch, nil, "no_token")
		return
	}

	s.mu.Lock()
	if s.epoch == epoch && s.phase == model.SessionUninitialized {
		s.phase = model.SessionValidating
	}
	s.mu.Unlock()

	user, err := s.auth.Me(ctx)
	if err == nil && user.IsZero() {
		err = errors.New("empty user in response")
	}
	if err != nil {
		if ctx.Err() != nil {
			// Torn down mid-flight; the token may still be valid.
			s.log.Debug().Err(err).Msg("session validation abandoned")
			s.resolve(epoch, nil, "abandoned")
			return
		}
		s.log.Info().Err(errors.Join(domain.ErrSessionInvalid, err)).Msg("stored session rejected")
		s.invalidate(ctx, epoch, tok)
		return
	}
	s.resolve(epoch, user, "validated")
}

// resolve finishes startup validation unless a login/signup/logout already
// superseded it.
func (s *SessionManager) resolve(epoch uint64, user *model.User, cause string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch == epoch {
		s.setLocked(user, cause)
	}
	s.markReady()
}

func (s *SessionManager) invalidate(ctx context.Context, epoch uint64, tok string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch == epoch {
		if cur, ok, _ := s.tokens.Get(ctx); ok && cur == tok {
			if err := s.tokens.Clear(ctx); err != nil {
				s.log.Warn().Err(err).Msg("failed to clear rejected token")
			}
		}
		s.setLocked(nil, "invalid_token")
	}
	s.markReady()
}

// setLocked moves to authenticated or anonymous. Caller holds s.mu.
func (s *SessionManager) setLocked(user *model.User, cause string) {
	if user != nil {
		cp := *user
		s.user = &cp
		s.phase = model.SessionAuthenticated
	} else {
		s.user = nil
		s.phase = model.SessionAnonymous
	}
	metrics.IncSessionTransition(string(s.phase), cause)
	s.log.Debug().Str("phase", string(s.phase)).Str("cause", cause).Msg("session transition")
}

func (s *SessionManager) markReady() {
	s.readyOnce.Do(func() { close(s.ready) })
}

// Login submits credentials. On failure it returns *domain.AuthError whose
// Message is the backend detail or a generic localized text.
func (s *SessionManager) Login(ctx context.Context, email, password string) (*model.User, error) {
	resp, err := s.auth.Login(ctx, adapter.LoginRequest{Email: strings.TrimSpace(email), Password: password})
	if err != nil {
		return nil, s.authError("login", "auth.login_failed", err)
	}
	return s.establish(ctx, "login", "auth.login_failed", resp)
}

// Signup creates an account and signs it in.
func (s *SessionManager) Signup(ctx context.Context, p model.SignupProfile) (*model.User, error) {
	p.Email = strings.TrimSpace(p.Email)
	p.Name = strings.TrimSpace(p.Name)
	if err := p.Validate(); err != nil {
		ae := &domain.AuthError{Op: "signup", Message: s.tr.T("auth.signup_failed"), Err: err}
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			ae.Message = s.tr.T(validationKey(verr.Field))
		}
		return nil, ae
	}
	resp, err := s.auth.Signup(ctx, p)
	if err != nil {
		return nil, s.authError("signup", "auth.signup_failed", err)
	}
	return s.establish(ctx, "signup", "auth.signup_failed", resp)
}

func (s *SessionManager) establish(ctx context.Context, op, fallbackKey string, resp *adapter.AuthResponse) (*model.User, error) {
	if resp == nil || resp.Token == "" || resp.User.IsZero() {
		return nil, &domain.AuthError{Op: op, Message: s.tr.T(fallbackKey), Err: errors.New("response without token or user")}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.tokens.Set(ctx, resp.Token); err != nil {
		return nil, &domain.AuthError{Op: op, Message: s.tr.T(fallbackKey), Err: err}
	}
	s.epoch++
	s.setLocked(&resp.User, op)
	s.markReady()

	s.log.Info().Int64("user_id", resp.User.ID).Str("email", logging.Redact(resp.User.Email, false)).Str("op", op).Msg("signed in")
	cp := *s.user
	return &cp, nil
}

// Logout clears the token and the user. Calling it while anonymous is a no-op
// apart from the (idempotent) token removal.
func (s *SessionManager) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.tokens.Clear(ctx)
	if s.user == nil && s.phase == model.SessionAnonymous {
		return err
	}
	s.epoch++
	s.setLocked(nil, "logout")
	s.markReady()
	return err
}

func (s *SessionManager) authError(op, fallbackKey string, err error) *domain.AuthError {
	ae := &domain.AuthError{Op: op, Message: s.tr.T(fallbackKey), Err: err}
	var herr *adapter.HTTPError
	if errors.As(err, &herr) {
		ae.Status = herr.Status
		if herr.Detail != "" {
			ae.Message = herr.Detail
		}
	}
	s.log.Debug().Err(err).Str("op", op).Int("status", ae.Status).Msg("authentication rejected")
	return ae
}

func validationKey(field string) string {
	switch field {
	case "email":
		return "auth.email_required"
	case "name":
		return "auth.name_required"
	case "password":
		return "auth.password_required"
	default:
		return "auth.experience_invalid"
	}
}

func (s *SessionManager) State() model.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := model.SessionState{Phase: s.phase, Ready: s.isReady()}
	if s.user != nil {
		cp := *s.user
		st.User = &cp
	}
	return st
}

func (s *SessionManager) User() *model.User { return s.State().User }

func (s *SessionManager) IsAuthenticated() bool { return s.State().User != nil }

// Ready is closed exactly once, when the session first reaches a terminal phase.
func (s *SessionManager) Ready() <-chan struct{} { return s.ready }

func (s *SessionManager) isReady() bool {
	select {
	case <-s.ready:
		return true
	default:
		return false
	}
}
