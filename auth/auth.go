// Package auth is the client side of the hosted authentication service:
// it verifies admin credentials, issues PASETO session tokens, reports the
// currently active session and pushes session changes to subscribers.
package auth

import (
	"context"
	"errors"

	"nstore-backend/models"
)

var (
	// ErrInvalidCredentials is returned by SignIn when the email or
	// password is wrong. Its text is the reason shown on the login form.
	ErrInvalidCredentials = errors.New("Invalid login credentials")
	ErrAdminExists        = errors.New("admin already exists")
)

// Service is the capability set the storefront consumes from the auth
// backend.
type Service interface {
	// CurrentSession returns the active session, or nil when there is none.
	CurrentSession(ctx context.Context) (*models.Session, error)
	// Subscribe registers fn for session changes. fn receives nil on
	// sign-out or expiry. The returned function removes the subscription.
	Subscribe(fn func(*models.Session)) (unsubscribe func())
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	SignOut(ctx context.Context) error
}
