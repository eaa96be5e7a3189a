// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"physical-ai-textbook/internal/domain/model"
	"physical-ai-textbook/internal/domain/ports/adapter"
	"physical-ai-textbook/internal/infra/i18n"
)

func testTranslator(t *testing.T) Translator {
	t.Helper()
	tr, err := i18n.Default("en")
	if err != nil {
		t.Fatalf("load translator: %v", err)
	}
	return tr
}

// memTokens is a token store that records every write.
type memTokens struct {
	mu     sync.Mutex
	token  string
	has    bool
	getErr error
	clears int
}

func newMemTokens(tok string) *memTokens {
	return &memTokens{token: tok, has: tok != ""}
}

func (m *memTokens) Get(ctx context.Context) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	return m.token, m.has, nil
}

func (m *memTokens) Set(ctx context.Context, tok string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.has = tok, tok != ""
	return nil
}

func (m *memTokens) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.has = "", false
	m.clears++
	return nil
}

func (m *memTokens) Clears() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clears
}

// fakeBackend implements adapter.Backend with canned responses.
type fakeBackend struct {
	mu sync.Mutex

	meUser  *model.User
	meErr   error
	meGate  chan struct{} // when set, Me blocks until closed or ctx done
	meCalls int

	authResp *adapter.AuthResponse
	authErr  error

	chatResp *adapter.ChatResponse
	chatErr  error
	chatGate chan struct{}
	chatReqs []adapter.ChatRequest

	personalizeResp *adapter.PersonalizeResponse
	translateResp   *adapter.TranslateResponse
	contentErr      error
}

var _ adapter.Backend = (*fakeBackend)(nil)

func (f *fakeBackend) Signup(ctx context.Context, p model.SignupProfile) (*adapter.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authResp, f.authErr
}

func (f *fakeBackend) Login(ctx context.Context, req adapter.LoginRequest) (*adapter.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authResp, f.authErr
}

func (f *fakeBackend) Me(ctx context.Context) (*model.User, error) {
	f.mu.Lock()
	f.meCalls++
	gate := f.meGate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.meErr != nil {
		return nil, f.meErr
	}
	if f.meUser == nil {
		return nil, errors.New("no user configured")
	}
	cp := *f.meUser
	return &cp, nil
}

func (f *fakeBackend) MeCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.meCalls
}

func (f *fakeBackend) Chat(ctx context.Context, req adapter.ChatRequest) (*adapter.ChatResponse, error) {
	f.mu.Lock()
	f.chatReqs = append(f.chatReqs, req)
	gate := f.chatGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.chatErr != nil {
		return nil, f.chatErr
	}
	cp := *f.chatResp
	return &cp, nil
}

func (f *fakeBackend) ChatRequests() []adapter.ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]adapter.ChatRequest(nil), f.chatReqs...)
}

func (f *fakeBackend) Personalize(ctx context.Context, req adapter.PersonalizeRequest) (*adapter.PersonalizeResponse, error) {
	if f.contentErr != nil {
		return nil, f.contentErr
	}
	return f.personalizeResp, nil
}

func (f *fakeBackend) Translate(ctx context.Context, req adapter.TranslateRequest) (*adapter.TranslateResponse, error) {
	if f.contentErr != nil {
		return nil, f.contentErr
	}
	return f.translateResp, nil
}

// fakeRecognizer hands the handler back to the test so it can fire events.
type fakeRecognizer struct {
	mu        sync.Mutex
	supported bool
	startErr  error
	handlers  []adapter.RecognitionHandler
	stops     int
}

func (r *fakeRecognizer) Supported() bool { return r.supported }

func (r *fakeRecognizer) Start(ctx context.Context, h adapter.RecognitionHandler) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.startErr != nil {
		return r.startErr
	}
	r.handlers = append(r.handlers, h)
	return nil
}

func (r *fakeRecognizer) Stop() error {
	r.mu.Lock()
	r.stops++
	r.mu.Unlock()
	return nil
}

func (r *fakeRecognizer) Starts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handlers)
}

func (r *fakeRecognizer) Handler(i int) adapter.RecognitionHandler {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handlers[i]
}

type fakeSynthesizer struct {
	mu        sync.Mutex
	supported bool
	calls     []string // "cancel" or "speak:<text>"
	last      adapter.Utterance
}

func (s *fakeSynthesizer) Supported() bool { return s.supported }

func (s *fakeSynthesizer) Speak(ctx context.Context, u adapter.Utterance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "speak:"+u.Text)
	s.last = u
	return nil
}

func (s *fakeSynthesizer) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "cancel")
	return nil
}

func (s *fakeSynthesizer) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// staticSession is a SessionReader with a fixed user.
type staticSession struct{ user *model.User }

func (s staticSession) State() model.SessionState {
	if s.user == nil {
		return model.SessionState{Phase: model.SessionAnonymous, Ready: true}
	}
	return model.SessionState{Phase: model.SessionAuthenticated, User: s.user, Ready: true}
}
func (s staticSession) User() *model.User { return s.user }
func (s staticSession) Ready() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
