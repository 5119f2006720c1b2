package models

import (
	"time"
)

// Admin mendefinisikan struktur untuk pengguna admin.
type Admin struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginRequest mendefinisikan struktur untuk permintaan login.
type LoginRequest struct {
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required"`
}

// Session adalah sesi login yang diterbitkan oleh layanan auth.
type Session struct {
	Token     string    `json:"token"`
	AdminID   string    `json:"admin_id"`
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired melaporkan apakah sesi sudah kedaluwarsa pada waktu now.
func (s *Session) Expired(now time.Time) bool {
	return s == nil || !now.Before(s.ExpiresAt)
}
