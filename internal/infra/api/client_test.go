//go:build !integration

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"physical-ai-textbook/internal/domain/model"
	"physical-ai-textbook/internal/domain/ports/adapter"
	"physical-ai-textbook/internal/infra/api"
	"physical-ai-textbook/internal/infra/tokenstore"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_BearerHandling(t *testing.T) {
	var gotAuth []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = append(gotAuth, r.Header.Get("Authorization"))
		if r.Header.Get("X-Request-ID") == "" {
			t.Errorf("missing X-Request-ID on %s", r.URL.Path)
		}
		switch r.URL.Path {
		case "/api/auth/login":
			writeJSON(w, 200, map[string]any{"token": "fresh", "user": map[string]any{"id": 1, "email": "a@b.com"}})
		case "/api/chat":
			writeJSON(w, 200, map[string]any{"answer": "hi"})
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	store := tokenstore.NewMemoryStore("stale")
	c := api.NewClient(srv.URL, time.Second, store, nil)

	t.Run("login never sends a bearer", func(t *testing.T) {
		if _, err := c.Login(ctx, adapter.LoginRequest{Email: "a@b.com", Password: "pw"}); err != nil {
			t.Fatal(err)
		}
		if gotAuth[len(gotAuth)-1] != "" {
			t.Errorf("expected no Authorization on login, got %q", gotAuth[len(gotAuth)-1])
		}
	})

	t.Run("authenticated call attaches current token", func(t *testing.T) {
		if _, err := c.Chat(ctx, adapter.ChatRequest{Question: "q"}); err != nil {
			t.Fatal(err)
		}
		if got := gotAuth[len(gotAuth)-1]; got != "Bearer stale" {
			t.Errorf("expected Bearer stale, got %q", got)
		}
	})

	t.Run("cleared token is not attached", func(t *testing.T) {
		_ = store.Clear(ctx)
		if _, err := c.Chat(ctx, adapter.ChatRequest{Question: "q"}); err != nil {
			t.Fatal(err)
		}
		if got := gotAuth[len(gotAuth)-1]; got != "" {
			t.Errorf("expected no Authorization after clear, got %q", got)
		}
	})
}

func TestClient_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			writeJSON(w, 401, map[string]any{"detail": "Invalid credentials"})
		case "/api/auth/signup":
			writeJSON(w, 422, map[string]any{"detail": []map[string]any{{"msg": "value is not a valid email address"}}})
		case "/api/auth/me":
			w.WriteHeader(500)
			_, _ = w.Write([]byte("<html>boom</html>"))
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	c := api.NewClient(srv.URL, time.Second, tokenstore.NewMemoryStore("t"), nil)

	t.Run("string detail", func(t *testing.T) {
		_, err := c.Login(ctx, adapter.LoginRequest{Email: "a@b.com", Password: "bad"})
		detail, status, ok := api.Detail(err)
		if !ok || status != 401 || detail != "Invalid credentials" {
			t.Errorf("unexpected error mapping: %v (detail=%q status=%d)", err, detail, status)
		}
	})

	t.Run("validation list detail", func(t *testing.T) {
		_, err := c.Signup(ctx, model.SignupProfile{Email: "x"})
		detail, status, _ := api.Detail(err)
		if status != 422 || detail != "value is not a valid email address" {
			t.Errorf("unexpected detail %q status %d", detail, status)
		}
	})

	t.Run("non-json body has empty detail", func(t *testing.T) {
		_, err := c.Me(ctx)
		var herr *adapter.HTTPError
		if !errors.As(err, &herr) || herr.Status != 500 || herr.Detail != "" {
			t.Errorf("unexpected error %v", err)
		}
	})

	t.Run("transport failure is not an HTTPError", func(t *testing.T) {
		dead := api.NewClient("http://127.0.0.1:1", 200*time.Millisecond, nil, nil)
		_, err := dead.Chat(ctx, adapter.ChatRequest{Question: "q"})
		if err == nil {
			t.Fatal("expected an error")
		}
		if _, _, ok := api.Detail(err); ok {
			t.Error("transport failure should not look like an HTTP status error")
		}
	})
}

func TestClient_DecodesPayloads(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		switch r.URL.Path {
		case "/api/auth/me":
			writeJSON(w, 200, map[string]any{"id": 7, "email": "a@b.com", "name": "Ada", "software_experience": "advanced", "hardware_experience": "beginner"})
		case "/api/chat":
			if _, present := body["selected_text"]; present {
				t.Errorf("empty selected_text should be omitted")
			}
			writeJSON(w, 200, map[string]any{"answer": "42", "session_id": body["session_id"], "sources": []any{}})
		case "/api/personalize":
			writeJSON(w, 200, map[string]any{"personalized_content": "easy " + body["content"].(string)})
		case "/api/translate":
			writeJSON(w, 200, map[string]any{"translated_content": "ur:" + body["content"].(string)})
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	c := api.NewClient(srv.URL+"/", time.Second, tokenstore.NewMemoryStore("t"), nil)

	u, err := c.Me(ctx)
	if err != nil || u.ID != 7 || u.SoftwareExperience != model.ExperienceAdvanced {
		t.Fatalf("unexpected user %+v err=%v", u, err)
	}
	chat, err := c.Chat(ctx, adapter.ChatRequest{Question: "q", SessionID: "s-1"})
	if err != nil || chat.Answer != "42" || chat.SessionID != "s-1" {
		t.Fatalf("unexpected chat %+v err=%v", chat, err)
	}
	p, err := c.Personalize(ctx, adapter.PersonalizeRequest{Content: "text", PagePath: "/docs/intro"})
	if err != nil || p.PersonalizedContent != "easy text" {
		t.Fatalf("unexpected personalize %+v err=%v", p, err)
	}
	tr, err := c.Translate(ctx, adapter.TranslateRequest{Content: "text"})
	if err != nil || tr.TranslatedContent != "ur:text" {
		t.Fatalf("unexpected translate %+v err=%v", tr, err)
	}
}
