package devserver

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"physical-ai-textbook/internal/domain"
	"physical-ai-textbook/internal/domain/ports/repository"
)

var _ repository.AccountRepository = (*MemoryAccounts)(nil)

// MemoryAccounts keeps accounts for the lifetime of the process.
type MemoryAccounts struct {
	mu      sync.RWMutex
	nextID  int64
	byID    map[int64]*repository.Account
	byEmail map[string]int64
}

func NewMemoryAccounts() *MemoryAccounts {
	return &MemoryAccounts{
		byID:    make(map[int64]*repository.Account),
		byEmail: make(map[string]int64),
	}
}

func emailKey(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

func (m *MemoryAccounts) Create(ctx context.Context, a *repository.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := emailKey(a.User.Email)
	if _, ok := m.byEmail[key]; ok {
		return domain.ErrAlreadyExists
	}
	m.nextID++
	a.User.ID = m.nextID
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	cp := *a
	m.byID[cp.User.ID] = &cp
	m.byEmail[key] = cp.User.ID
	return nil
}

func (m *MemoryAccounts) FindByEmail(ctx context.Context, email string) (*repository.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byEmail[emailKey(email)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *m.byID[id]
	return &cp, nil
}

func (m *MemoryAccounts) FindByID(ctx context.Context, id int64) (*repository.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

// HashPassword uses bcrypt at the default cost.
func HashPassword(pw string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
}

func CheckPassword(hash []byte, pw string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(pw)) == nil
}
