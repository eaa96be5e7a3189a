// Package api is the HTTP transport to the textbook backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"physical-ai-textbook/internal/domain/model"
	"physical-ai-textbook/internal/domain/ports/adapter"
	"physical-ai-textbook/internal/domain/ports/repository"
	"physical-ai-textbook/internal/infra/logging"
	"physical-ai-textbook/internal/infra/metrics"
)

// Compile-time assurance the client satisfies the backend port
var _ adapter.Backend = (*Client)(nil)

const maxErrorBody = 64 << 10

// Client talks JSON to the backend. The bearer token is read from the token
// source on every request so a cleared token is never attached.
type Client struct {
	base   string
	http   *http.Client
	tokens repository.TokenSource
	log    *zerolog.Logger
	dev    bool
}

type Option func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

// WithDev disables token redaction in logs.
func WithDev(dev bool) Option { return func(c *Client) { c.dev = dev } }

func NewClient(baseURL string, timeout time.Duration, tokens repository.TokenSource, logger *zerolog.Logger, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = logging.Nop()
	}
	c := &Client{
		base:   strings.TrimRight(baseURL, "/"),
		http:   &http.Client{Timeout: timeout},
		tokens: tokens,
		log:    logger,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Signup(ctx context.Context, p model.SignupProfile) (*adapter.AuthResponse, error) {
	var out adapter.AuthResponse
	if err := c.do(ctx, "signup", http.MethodPost, "/api/auth/signup", false, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, req adapter.LoginRequest) (*adapter.AuthResponse, error) {
	var out adapter.AuthResponse
	if err := c.do(ctx, "login", http.MethodPost, "/api/auth/login", false, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var out model.User
	if err := c.do(ctx, "me", http.MethodGet, "/api/auth/me", true, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Chat(ctx context.Context, req adapter.ChatRequest) (*adapter.ChatResponse, error) {
	var out adapter.ChatResponse
	if err := c.do(ctx, "chat", http.MethodPost, "/api/chat", true, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Personalize(ctx context.Context, req adapter.PersonalizeRequest) (*adapter.PersonalizeResponse, error) {
	var out adapter.PersonalizeResponse
	if err := c.do(ctx, "personalize", http.MethodPost, "/api/personalize", true, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Translate(ctx context.Context, req adapter.TranslateRequest) (*adapter.TranslateResponse, error) {
	var out adapter.TranslateResponse
	if err := c.do(ctx, "translate", http.MethodPost, "/api/translate", true, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, endpoint, method, path string, auth bool, in, out any) error {
	reqID := logging.TraceIDFrom(ctx)
	if reqID == "" {
		reqID = uuid.NewString()
		ctx = logging.WithTraceID(ctx, reqID)
	}
	l := logging.With(ctx, c.log)
	defer logging.TraceDuration(l, "Client."+endpoint)()

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", endpoint, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth && c.tokens != nil {
		tok, ok, terr := c.tokens.Get(ctx)
		switch {
		case terr != nil:
			l.Warn().Err(terr).Str("endpoint", endpoint).Msg("token store unreadable; sending unauthenticated")
		case ok:
			req.Header.Set("Authorization", "Bearer "+tok)
			l.Trace().Str("token", logging.Redact(tok, c.dev)).Msg("bearer attached")
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveBackendCall(endpoint, 0, time.Since(start).Milliseconds())
		l.Debug().Err(err).Str("endpoint", endpoint).Msg("backend unreachable")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	metrics.ObserveBackendCall(endpoint, resp.StatusCode, time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		herr := &adapter.HTTPError{Method: method, Path: path, Status: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		herr.Detail = parseDetail(raw)
		l.Debug().Int("status", resp.StatusCode).Str("detail", herr.Detail).Str("endpoint", endpoint).Msg("backend error")
		return herr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// parseDetail extracts the {"detail": ...} field. FastAPI validation errors
// carry a list of {"msg": ...} objects instead of a string.
func parseDetail(raw []byte) string {
	var env struct {
		Detail json.RawMessage `json:"detail"`
	}
	if len(raw) == 0 || json.Unmarshal(raw, &env) != nil || len(env.Detail) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(env.Detail, &s) == nil {
		return s
	}
	var list []struct {
		Msg string `json:"msg"`
	}
	if json.Unmarshal(env.Detail, &list) == nil {
		msgs := make([]string, 0, len(list))
		for _, it := range list {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

// Detail returns the backend's error detail when err wraps an HTTPError.
func Detail(err error) (string, int, bool) {
	var herr *adapter.HTTPError
	if errors.As(err, &herr) {
		return herr.Detail, herr.Status, true
	}
	return "", 0, false
}
