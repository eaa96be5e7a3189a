package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"physical-ai-textbook/internal/domain/ports/repository"
)

var _ repository.TokenStore = (*FileStore)(nil)

// Sealer encrypts the token at rest. security.TokenCipher implements it.
type Sealer interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}

// FileStore keeps the session token in a small JSON file inside the user's
// profile directory.
type FileStore struct {
	path   string
	sealer Sealer
	mu     sync.Mutex
}

type tokenFile struct {
	Token  string `json:"token,omitempty"`
	Sealed string `json:"sealed,omitempty"`
}

type FileOption func(*FileStore)

// WithSealer stores the token encrypted. Plain files written earlier are
// still readable.
func WithSealer(s Sealer) FileOption { return func(f *FileStore) { f.sealer = s } }

func NewFileStore(path string, opts ...FileOption) *FileStore {
	s := &FileStore{path: path}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Get(ctx context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read token file: %w", err)
	}
	var tf tokenFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return "", false, fmt.Errorf("decode token file: %w", err)
	}
	if tf.Sealed != "" {
		if s.sealer == nil {
			return "", false, errors.New("token file is sealed but no key is configured")
		}
		tok, err := s.sealer.Open(tf.Sealed)
		if err != nil {
			return "", false, fmt.Errorf("open sealed token: %w", err)
		}
		tf.Token = tok
	}
	if tf.Token == "" {
		return "", false, nil
	}
	return tf.Token, true, nil
}

func (s *FileStore) Set(ctx context.Context, token string) error {
	if token == "" {
		return s.Clear(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tf := tokenFile{Token: token}
	if s.sealer != nil {
		sealed, err := s.sealer.Seal(token)
		if err != nil {
			return fmt.Errorf("seal token: %w", err)
		}
		tf = tokenFile{Sealed: sealed}
	}
	data, err := json.MarshalIndent(tf, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return os.Rename(tmp, s.path)
}

func (s *FileStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}
