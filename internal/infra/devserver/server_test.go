//go:build !integration

package devserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"physical-ai-textbook/internal/config"
	"physical-ai-textbook/internal/domain/ports/adapter"
	"physical-ai-textbook/internal/infra/devserver"
)

//
// -------------------- test helpers --------------------
//

// recordingAnswerer returns a fixed reply and remembers the prompt.
type recordingAnswerer struct {
	reply string
	last  []adapter.Message
}

func (a *recordingAnswerer) Name() string { return "recording" }

func (a *recordingAnswerer) Complete(ctx context.Context, msgs []adapter.Message, opts adapter.CompletionOptions) (string, error) {
	a.last = msgs
	return a.reply, nil
}

func testConfig() config.DevServerConfig {
	return config.DevServerConfig{JWTSecret: "test-secret", TokenTTL: time.Hour, LoginWindow: time.Minute}
}

func newServer(t *testing.T, cfg config.DevServerConfig, ai adapter.Answerer, limiter devserver.LoginLimiter) http.Handler {
	t.Helper()
	s, err := devserver.New(cfg, devserver.NewMemoryAccounts(), ai, limiter, nil)
	if err != nil {
		t.Fatal(err)
	}
	return s.Handler()
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	out := map[string]any{}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

var ada = map[string]string{
	"email":               "ada@example.com",
	"name":                "Ada",
	"password":            "hunter22",
	"software_experience": "advanced",
	"hardware_experience": "beginner",
}

//
// -------------------- tests --------------------
//

func TestAuth_AllPaths(t *testing.T) {
	h := newServer(t, testConfig(), &recordingAnswerer{reply: "ok"}, nil)

	var token string
	t.Run("signup returns token and user", func(t *testing.T) {
		rec, body := do(t, h, http.MethodPost, "/api/auth/signup", "", ada)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		token, _ = body["token"].(string)
		user, _ := body["user"].(map[string]any)
		if token == "" || user["email"] != "ada@example.com" || user["id"].(float64) != 1 {
			t.Fatalf("unexpected body %v", body)
		}
		if body["message"] != "User created successfully" {
			t.Errorf("unexpected message %v", body["message"])
		}
	})

	t.Run("duplicate email is 400", func(t *testing.T) {
		rec, body := do(t, h, http.MethodPost, "/api/auth/signup", "", ada)
		if rec.Code != http.StatusBadRequest || body["detail"] != "Email already registered" {
			t.Fatalf("unexpected %d %v", rec.Code, body)
		}
	})

	t.Run("invalid experience is 422", func(t *testing.T) {
		bad := map[string]string{"email": "x@y.z", "name": "X", "password": "p", "software_experience": "guru", "hardware_experience": "beginner"}
		rec, _ := do(t, h, http.MethodPost, "/api/auth/signup", "", bad)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
	})

	t.Run("login with wrong password is 401", func(t *testing.T) {
		rec, body := do(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ada@example.com", "password": "nope"})
		if rec.Code != http.StatusUnauthorized || body["detail"] != "Invalid credentials" {
			t.Fatalf("unexpected %d %v", rec.Code, body)
		}
	})

	t.Run("login is case-insensitive on email", func(t *testing.T) {
		rec, body := do(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ADA@example.com", "password": "hunter22"})
		if rec.Code != http.StatusOK || body["message"] != "Login successful" {
			t.Fatalf("unexpected %d %v", rec.Code, body)
		}
	})

	t.Run("me with and without token", func(t *testing.T) {
		rec, body := do(t, h, http.MethodGet, "/api/auth/me", token, nil)
		if rec.Code != http.StatusOK || body["name"] != "Ada" || body["software_experience"] != "advanced" {
			t.Fatalf("unexpected %d %v", rec.Code, body)
		}
		rec, body = do(t, h, http.MethodGet, "/api/auth/me", "", nil)
		if rec.Code != http.StatusUnauthorized || body["detail"] != "Not authenticated" {
			t.Fatalf("unexpected %d %v", rec.Code, body)
		}
		rec, _ = do(t, h, http.MethodGet, "/api/auth/me", "not-a-jwt", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for garbage token, got %d", rec.Code)
		}
	})
}

func TestExpiredTokenIsRejected(t *testing.T) {
	issuer := devserver.NewTokenIssuer("s", -time.Minute)
	tok, err := issuer.Mint(1, "a@b.com")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := issuer.Parse(tok); err == nil {
		t.Fatal("expired token must not parse")
	}
	if _, err := devserver.NewTokenIssuer("other", time.Hour).Parse(tok); err == nil {
		t.Fatal("token signed with another secret must not parse")
	}
}

func TestChat(t *testing.T) {
	ai := &recordingAnswerer{reply: "Hi there"}
	h := newServer(t, testConfig(), ai, nil)

	t.Run("anonymous chat gets a session id", func(t *testing.T) {
		rec, body := do(t, h, http.MethodPost, "/api/chat", "", map[string]string{"question": "Hello"})
		if rec.Code != http.StatusOK || body["answer"] != "Hi there" || body["session_id"] == "" {
			t.Fatalf("unexpected %d %v", rec.Code, body)
		}
		if strings.Contains(ai.last[0].Content, "software experience") {
			t.Error("anonymous prompt must not be tailored")
		}
	})

	t.Run("session id and selection pass through", func(t *testing.T) {
		rec, body := do(t, h, http.MethodPost, "/api/chat", "", map[string]string{"question": "Why?", "selected_text": "Servos hold position.", "session_id": "s-1"})
		if rec.Code != http.StatusOK || body["session_id"] != "s-1" {
			t.Fatalf("unexpected %d %v", rec.Code, body)
		}
		if srcs, _ := body["sources"].([]any); len(srcs) != 1 {
			t.Errorf("expected the selection as source, got %v", body["sources"])
		}
		if !strings.Contains(ai.last[1].Content, "Servos hold position.") {
			t.Error("selected text missing from prompt")
		}
	})

	t.Run("signed-in prompt is tailored", func(t *testing.T) {
		_, signup := do(t, h, http.MethodPost, "/api/auth/signup", "", ada)
		tok := signup["token"].(string)
		do(t, h, http.MethodPost, "/api/chat", tok, map[string]string{"question": "What is ROS?"})
		if !strings.Contains(ai.last[0].Content, "advanced software experience and beginner hardware experience") {
			t.Errorf("unexpected system prompt %q", ai.last[0].Content)
		}
	})

	t.Run("empty question is 422", func(t *testing.T) {
		rec, _ := do(t, h, http.MethodPost, "/api/chat", "", map[string]string{"question": " "})
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
	})
}

func TestContentEndpoints(t *testing.T) {
	ai := &recordingAnswerer{reply: "rewritten"}
	h := newServer(t, testConfig(), ai, nil)

	rec, body := do(t, h, http.MethodPost, "/api/personalize", "", map[string]string{"content": "c", "page_path": "/docs/intro"})
	if rec.Code != http.StatusUnauthorized || body["detail"] != "Authentication required" {
		t.Fatalf("unexpected %d %v", rec.Code, body)
	}

	_, signup := do(t, h, http.MethodPost, "/api/auth/signup", "", ada)
	tok := signup["token"].(string)
	rec, body = do(t, h, http.MethodPost, "/api/personalize", tok, map[string]string{"content": "c", "page_path": "/docs/intro"})
	if rec.Code != http.StatusOK || body["personalized_content"] != "rewritten" {
		t.Fatalf("unexpected %d %v", rec.Code, body)
	}

	rec, body = do(t, h, http.MethodPost, "/api/translate", "", map[string]string{"content": "c"})
	if rec.Code != http.StatusOK || body["translated_content"] != "rewritten" {
		t.Fatalf("unexpected %d %v", rec.Code, body)
	}
	if !strings.Contains(ai.last[1].Content, "Urdu") {
		t.Error("translate prompt should target Urdu")
	}
}

func TestLoginThrottling(t *testing.T) {
	cfg := testConfig()
	cfg.LoginLimit = 2
	h := newServer(t, cfg, &recordingAnswerer{}, devserver.NewMemoryLimiter())

	creds := map[string]string{"email": "who@example.com", "password": "x"}
	for i := 0; i < 2; i++ {
		if rec, _ := do(t, h, http.MethodPost, "/api/auth/login", "", creds); rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i, rec.Code)
		}
	}
	if rec, _ := do(t, h, http.MethodPost, "/api/auth/login", "", creds); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestHealthAndRequestID(t *testing.T) {
	h := newServer(t, testConfig(), &recordingAnswerer{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Header().Get("X-Request-ID") != "req-42" {
		t.Fatalf("unexpected %d id=%q", rec.Code, rec.Header().Get("X-Request-ID"))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics endpoint returned %d", rec.Code)
	}
}

func TestNew_RequiresSecret(t *testing.T) {
	if _, err := devserver.New(config.DevServerConfig{}, devserver.NewMemoryAccounts(), &recordingAnswerer{}, nil, nil); err == nil {
		t.Fatal("expected an error without jwt secret")
	}
}
