// Package session menyimpan status sesi admin untuk seluruh proses dan
// menentukan apakah halaman admin yang dilindungi boleh ditampilkan.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"nstore-backend/apperr"
	"nstore-backend/auth"
	"nstore-backend/models"
)

type State int

const (
	StateUninitialized State = iota
	StateChecking
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateChecking:
		return "checking"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	}
	return "unknown"
}

// Snapshot adalah pembacaan store yang konsisten.
type Snapshot struct {
	State   State
	Session *models.Session
}

// Loading bernilai true sampai pengecekan awal selesai. Selama Loading,
// "belum login" tidak boleh dianggap final.
func (s Snapshot) Loading() bool {
	return s.State == StateUninitialized || s.State == StateChecking
}

func (s Snapshot) Authenticated() bool {
	return s.State == StateAuthenticated
}

const startupCheckTimeout = 10 * time.Second

// Store adalah satu-satunya sumber kebenaran untuk "apakah admin sedang
// login". Status diambil ulang dari layanan auth saat start dan dijaga
// tetap terbaru lewat satu langganan notifikasi perubahan sesi.
type Store struct {
	svc auth.Service
	log *slog.Logger

	mu      sync.RWMutex
	state   State
	session *models.Session

	startOnce   sync.Once
	closeOnce   sync.Once
	ready       chan struct{}
	readyOnce   sync.Once
	unsubscribe func()
	ctx         context.Context
	cancel      context.CancelFunc
}

func New(svc auth.Service, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Store{
		svc:    svc,
		log:    logger.With("component", "session"),
		state:  StateUninitialized,
		ready:  make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start berlangganan perubahan sesi lalu menjalankan pengecekan awal.
// Hanya panggilan pertama yang berpengaruh. Langganan didaftarkan sebelum
// pengecekan sehingga tidak ada perubahan yang terlewat di antaranya.
func (s *Store) Start() {
	s.startOnce.Do(func() {
		s.mu.Lock()
		s.state = StateChecking
		s.mu.Unlock()

		s.unsubscribe = s.svc.Subscribe(s.onChange)
		go s.check()
	})
}

func (s *Store) check() {
	ctx, cancel := context.WithTimeout(s.ctx, startupCheckTimeout)
	defer cancel()

	current, err := s.svc.CurrentSession(ctx)
	if err != nil {
		s.log.Warn("startup session check failed", "error", err)
		current = nil
	}
	if s.ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	// A push may already have settled the store; the startup result still
	// applies because it arrived last.
	s.apply(current)
	s.mu.Unlock()

	s.markReady()
	s.log.Debug("startup session check settled", "authenticated", current != nil)
}

func (s *Store) onChange(current *models.Session) {
	if s.ctx.Err() != nil {
		return
	}
	s.mu.Lock()
	s.apply(current)
	s.mu.Unlock()

	s.markReady()
	s.log.Debug("session change received", "authenticated", current != nil)
}

// apply must be called with mu held.
func (s *Store) apply(current *models.Session) {
	if current == nil {
		s.state = StateUnauthenticated
		s.session = nil
		return
	}
	s.state = StateAuthenticated
	s.session = current
}

func (s *Store) markReady() {
	s.readyOnce.Do(func() { close(s.ready) })
}

// Snapshot mengembalikan status saat ini dan menjalankan store pada akses
// pertama.
func (s *Store) Snapshot() Snapshot {
	s.Start()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{State: s.state, Session: s.session}
}

// Ready ditutup setelah store keluar dari status loading.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// WaitReady menunggu sampai store selesai memuat atau ctx berakhir.
func (s *Store) WaitReady(ctx context.Context) error {
	s.Start()
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Login memverifikasi kredensial ke layanan auth. Penolakan dikembalikan
// sebagai error Authentication berisi alasan dari layanan, dan store tetap
// belum login.
func (s *Store) Login(ctx context.Context, email, password string) error {
	s.Start()

	current, err := s.svc.SignIn(ctx, email, password)
	if err != nil || current == nil {
		s.mu.Lock()
		s.apply(nil)
		s.mu.Unlock()
		s.markReady()

		if errors.Is(err, auth.ErrInvalidCredentials) {
			return apperr.AuthenticationErr(err.Error(), err)
		}
		if err == nil {
			err = errors.New("auth service returned no session")
		}
		return apperr.NetworkErr("Gagal login, periksa kembali email dan password.", err)
	}

	s.mu.Lock()
	s.apply(current)
	s.mu.Unlock()
	s.markReady()

	s.log.Info("admin signed in", "email", current.Email)
	return nil
}

// Logout meminta layanan auth mengakhiri sesi dan selalu membuat store
// kembali belum login. Error yang dikembalikan hanya berarti sign-out di
// layanan gagal.
func (s *Store) Logout(ctx context.Context) error {
	s.Start()

	remoteErr := s.svc.SignOut(ctx)

	s.mu.Lock()
	s.apply(nil)
	s.mu.Unlock()
	s.markReady()

	if remoteErr != nil {
		s.log.Warn("remote sign-out failed", "error", remoteErr)
		return apperr.NetworkErr("Sesi lokal sudah diakhiri, tetapi server auth tidak merespons.", remoteErr)
	}
	s.log.Info("admin signed out")
	return nil
}

// Close melepas langganan perubahan sesi. Aman dipanggil lebih dari sekali
// maupun sebelum Start.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		s.startOnce.Do(func() {})
		s.cancel()
		if s.unsubscribe != nil {
			s.unsubscribe()
		}
	})
}
