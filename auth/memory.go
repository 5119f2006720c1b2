package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"nstore-backend/models"
)

// MemoryService is a single-admin auth backend kept in process memory.
// It is used when the storefront runs without MongoDB.
type MemoryService struct {
	tokens *Tokens
	admin  models.Admin
	hub    *hub

	mu      sync.RWMutex
	current *models.Session
}

func NewMemoryService(tokens *Tokens, email, password string) (*MemoryService, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return &MemoryService{
		tokens: tokens,
		admin: models.Admin{
			ID:        "admin",
			Email:     strings.ToLower(strings.TrimSpace(email)),
			Password:  string(hashedPassword),
			CreatedAt: time.Now(),
		},
		hub: newHub(),
	}, nil
}

func (m *MemoryService) CurrentSession(context.Context) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current.Expired(m.tokens.now()) {
		return nil, nil
	}
	s := *m.current
	return &s, nil
}

func (m *MemoryService) Subscribe(fn func(*models.Session)) func() {
	return m.hub.subscribe(fn)
}

func (m *MemoryService) SignIn(_ context.Context, email, password string) (*models.Session, error) {
	if strings.ToLower(strings.TrimSpace(email)) != m.admin.Email {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(m.admin.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	s, err := m.tokens.Issue(m.admin)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()

	m.hub.publish(s)
	return s, nil
}

func (m *MemoryService) SignOut(context.Context) error {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()

	m.hub.publish(nil)
	return nil
}

func (m *MemoryService) Close() error {
	m.hub.stop()
	return nil
}
