package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/projetocarbone/roma-backend/internal/model"
)

// The memory stores back the standalone variant that runs without MySQL
// and double as test fixtures. Unlike the single-threaded platform this
// design came from, requests here run on separate goroutines, so every
// store guards its state with a mutex.

// MemoryUserStore implements UserStore over a mutex-guarded slice.
type MemoryUserStore struct {
	mu     sync.Mutex
	nextID uint64
	users  []model.User
}

func NewMemoryUserStore() *MemoryUserStore { return &MemoryUserStore{nextID: 1} }

func (s *MemoryUserStore) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(strings.TrimSpace(u.Email))
	for _, e := range s.users {
		if e.Email == email {
			return ErrEmailExists
		}
	}
	now := time.Now().UTC()
	u.Email = email
	u.ID = s.nextID
	u.CreatedAt = now
	u.UpdatedAt = now
	s.nextID++
	s.users = append(s.users, *u)
	return nil
}

// Seed inserts a user with a pre-hashed password. Main uses it to give
// the standalone variant a known login.
func (s *MemoryUserStore) Seed(nome, email, senhaHash string) error {
	return s.Create(context.Background(), &model.User{
		Nome:         nome,
		Email:        email,
		SenhaHash:    senhaHash,
		Notificacoes: true,
	})
}

func (s *MemoryUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, ErrNotFound
}

func (s *MemoryUserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.find(id)
	if u == nil {
		return model.User{}, ErrNotFound
	}
	return *u, nil
}

func (s *MemoryUserStore) UpdateProfile(_ context.Context, id uint64, nome, telefone, empresa, cargo string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.find(id)
	if u == nil {
		return model.User{}, ErrNotFound
	}
	if nome != "" {
		u.Nome = nome
	}
	if telefone != "" {
		u.Telefone = telefone
	}
	if empresa != "" {
		u.Empresa = empresa
	}
	if cargo != "" {
		u.Cargo = cargo
	}
	u.UpdatedAt = time.Now().UTC()
	return *u, nil
}

func (s *MemoryUserStore) UpdateSettings(_ context.Context, id uint64, notificacoes, autenticacao2FA, modoEscuro bool) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.find(id)
	if u == nil {
		return model.User{}, ErrNotFound
	}
	u.Notificacoes = notificacoes
	u.Autenticacao2FA = autenticacao2FA
	u.ModoEscuro = modoEscuro
	u.UpdatedAt = time.Now().UTC()
	return *u, nil
}

func (s *MemoryUserStore) UpdatePassword(_ context.Context, id uint64, senhaHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.find(id)
	if u == nil {
		return ErrNotFound
	}
	u.SenhaHash = senhaHash
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryUserStore) UpdateAvatar(_ context.Context, id uint64, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.find(id)
	if u == nil {
		return ErrNotFound
	}
	u.FotoPerfil = url
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryUserStore) SetResetToken(_ context.Context, id uint64, token string, expiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.find(id)
	if u == nil {
		return ErrNotFound
	}
	u.ResetToken = &token
	u.ResetTokenExpiry = &expiry
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryUserStore) GetByResetToken(_ context.Context, token string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		u := &s.users[i]
		if u.ResetToken != nil && *u.ResetToken == token {
			if u.ResetTokenExpiry == nil || time.Now().UTC().After(*u.ResetTokenExpiry) {
				return model.User{}, ErrExpired
			}
			return *u, nil
		}
	}
	return model.User{}, ErrNotFound
}

func (s *MemoryUserStore) ResetPassword(_ context.Context, id uint64, senhaHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.find(id)
	if u == nil {
		return ErrNotFound
	}
	u.SenhaHash = senhaHash
	u.ResetToken = nil
	u.ResetTokenExpiry = nil
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// find returns a pointer into the backing slice; callers must hold mu.
func (s *MemoryUserStore) find(id uint64) *model.User {
	for i := range s.users {
		if s.users[i].ID == id {
			return &s.users[i]
		}
	}
	return nil
}

// MemoryTokenStore implements TokenStore over a map keyed by token hash.
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]model.RefreshToken
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[string]model.RefreshToken)}
}

func (s *MemoryTokenStore) StoreRefresh(_ context.Context, userID uint64, tokenHash string, exp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[tokenHash] = model.RefreshToken{
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: exp,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

func (s *MemoryTokenStore) ValidateRefresh(_ context.Context, tokenHash string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[tokenHash]
	if !ok || t.RevokedAt != nil {
		return 0, ErrNotFound
	}
	if time.Now().UTC().After(t.ExpiresAt) {
		return 0, ErrExpired
	}
	return t.UserID, nil
}

func (s *MemoryTokenStore) RevokeByHash(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tokens[tokenHash]; ok && t.RevokedAt == nil {
		now := time.Now().UTC()
		t.RevokedAt = &now
		s.tokens[tokenHash] = t
	}
	return nil
}

func (s *MemoryTokenStore) RevokeAllForUser(_ context.Context, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	for hash, t := range s.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt = &now
			s.tokens[hash] = t
		}
	}
	return nil
}

// MemoryActivityStore implements ActivityStore over an append-only slice.
type MemoryActivityStore struct {
	mu     sync.Mutex
	nextID uint64
	items  []model.Activity
}

func NewMemoryActivityStore() *MemoryActivityStore { return &MemoryActivityStore{nextID: 1} }

func (s *MemoryActivityStore) Append(_ context.Context, a *model.Activity) error {
	if !a.Action.Valid() {
		return fmt.Errorf("unknown activity action %q", a.Action)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.nextID
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	s.nextID++
	s.items = append(s.items, *a)
	return nil
}

func (s *MemoryActivityStore) ListByUser(_ context.Context, userID uint64, offset, limit int) ([]model.Activity, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mine := make([]model.Activity, 0)
	for _, a := range s.items {
		if a.UserID == userID {
			mine = append(mine, a)
		}
	}
	sort.Slice(mine, func(i, j int) bool {
		if mine[i].CreatedAt.Equal(mine[j].CreatedAt) {
			return mine[i].ID > mine[j].ID
		}
		return mine[i].CreatedAt.After(mine[j].CreatedAt)
	})
	total := len(mine)
	if offset >= total {
		return []model.Activity{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return mine[offset:end], total, nil
}
