package auth

import (
	"fmt"
	"time"

	"github.com/o1egl/paseto"

	"nstore-backend/models"
)

const tokenFooter = "nstore-admin"

// DefaultSessionTTL mengikuti masa berlaku token admin.
const DefaultSessionTTL = 24 * time.Hour

// Tokens menerbitkan dan memverifikasi token PASETO v2 (local).
type Tokens struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewTokens(key []byte, ttl time.Duration) (*Tokens, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("PASETO secret key must be 32 bytes, got %d", len(key))
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Tokens{key: key, ttl: ttl, now: time.Now}, nil
}

// Issue membuat sesi baru untuk admin.
func (t *Tokens) Issue(admin models.Admin) (*models.Session, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	jsonToken := paseto.JSONToken{
		Subject:    admin.ID,
		IssuedAt:   now,
		Expiration: exp,
	}
	jsonToken.Set("email", admin.Email)

	token, err := paseto.NewV2().Encrypt(t.key, jsonToken, tokenFooter)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &models.Session{
		Token:     token,
		AdminID:   admin.ID,
		Email:     admin.Email,
		IssuedAt:  now,
		ExpiresAt: exp,
	}, nil
}

// Parse mendekripsi token dan memastikan token belum kedaluwarsa.
func (t *Tokens) Parse(token string) (*models.Session, error) {
	var jsonToken paseto.JSONToken
	var footer string
	if err := paseto.NewV2().Decrypt(token, t.key, &jsonToken, &footer); err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}
	if footer != tokenFooter {
		return nil, fmt.Errorf("invalid session token footer %q", footer)
	}
	if err := jsonToken.Validate(paseto.ValidAt(t.now())); err != nil {
		return nil, fmt.Errorf("session token rejected: %w", err)
	}
	return &models.Session{
		Token:     token,
		AdminID:   jsonToken.Subject,
		Email:     jsonToken.Get("email"),
		IssuedAt:  jsonToken.IssuedAt,
		ExpiresAt: jsonToken.Expiration,
	}, nil
}
