package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nstore-backend/apperr"
	"nstore-backend/auth"
	"nstore-backend/models"
)

type fakeAuth struct {
	mu          sync.Mutex
	subscribers map[int]func(*models.Session)
	nextID      int
	subscribes  int

	// release unblocks CurrentSession when set.
	release    chan struct{}
	current    *models.Session
	currentErr error

	signInErr  error
	signOutErr error
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{subscribers: map[int]func(*models.Session){}}
}

func (f *fakeAuth) CurrentSession(ctx context.Context) (*models.Session, error) {
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current, f.currentErr
}

func (f *fakeAuth) Subscribe(fn func(*models.Session)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribes++
	id := f.nextID
	f.nextID++
	f.subscribers[id] = fn
	return func() {
		f.mu.Lock()
		delete(f.subscribers, id)
		f.mu.Unlock()
	}
}

func (f *fakeAuth) SignIn(_ context.Context, email, password string) (*models.Session, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	if password != "password" {
		return nil, auth.ErrInvalidCredentials
	}
	return &models.Session{Token: "t", Email: email, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (f *fakeAuth) SignOut(context.Context) error { return f.signOutErr }

func (f *fakeAuth) push(s *models.Session) {
	f.mu.Lock()
	fns := make([]func(*models.Session), 0, len(f.subscribers))
	for _, fn := range f.subscribers {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}

func (f *fakeAuth) subscriberCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers)
}

func activeSession() *models.Session {
	return &models.Session{Token: "t", Email: "admin@nstore.com", ExpiresAt: time.Now().Add(time.Hour)}
}

func waitReady(t *testing.T, s *Store) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.WaitReady(ctx))
}

func TestStoreStartsUninitialized(t *testing.T) {
	s := New(newFakeAuth(), nil)
	defer s.Close()

	s.mu.RLock()
	assert.Equal(t, StateUninitialized, s.state)
	s.mu.RUnlock()
}

func TestStoreLoadingUntilCheckSettles(t *testing.T) {
	f := newFakeAuth()
	f.release = make(chan struct{})
	f.current = activeSession()
	s := New(f, nil)
	defer s.Close()

	snap := s.Snapshot()
	assert.Equal(t, StateChecking, snap.State)
	assert.True(t, snap.Loading())
	assert.False(t, snap.Authenticated())

	close(f.release)
	waitReady(t, s)

	snap = s.Snapshot()
	assert.False(t, snap.Loading())
	assert.True(t, snap.Authenticated())
	assert.Equal(t, StateAuthenticated, snap.State)
}

func TestStoreCheckWithoutSession(t *testing.T) {
	s := New(newFakeAuth(), nil)
	defer s.Close()

	waitReady(t, s)
	snap := s.Snapshot()
	assert.Equal(t, StateUnauthenticated, snap.State)
	assert.Nil(t, snap.Session)
}

func TestStoreCheckFailureSettlesUnauthenticated(t *testing.T) {
	f := newFakeAuth()
	f.currentErr = errors.New("connection refused")
	s := New(f, nil)
	defer s.Close()

	waitReady(t, s)
	assert.Equal(t, StateUnauthenticated, s.Snapshot().State)
}

func TestStorePushChangesState(t *testing.T) {
	f := newFakeAuth()
	s := New(f, nil)
	defer s.Close()
	waitReady(t, s)

	f.push(activeSession())
	assert.True(t, s.Snapshot().Authenticated())

	f.push(nil)
	assert.Equal(t, StateUnauthenticated, s.Snapshot().State)
}

func TestStoreLastWriterWins(t *testing.T) {
	f := newFakeAuth()
	f.release = make(chan struct{})
	s := New(f, nil)
	defer s.Close()
	s.Start()

	// push arrives while the startup check is still in flight
	f.push(activeSession())
	assert.True(t, s.Snapshot().Authenticated())

	// the startup check (no session) arrives last and wins
	close(f.release)
	require.Eventually(t, func() bool {
		return s.Snapshot().State == StateUnauthenticated
	}, 2*time.Second, 5*time.Millisecond)
}

func TestStoreSubscribesOnce(t *testing.T) {
	f := newFakeAuth()
	s := New(f, nil)

	for i := 0; i < 10; i++ {
		s.Start()
		s.Snapshot()
	}
	waitReady(t, s)

	f.mu.Lock()
	assert.Equal(t, 1, f.subscribes)
	f.mu.Unlock()
	assert.Equal(t, 1, f.subscriberCount())

	s.Close()
	s.Close()
	assert.Equal(t, 0, f.subscriberCount())
}

func TestStoreCloseBeforeStart(t *testing.T) {
	f := newFakeAuth()
	s := New(f, nil)
	s.Close()
	s.Start()

	f.mu.Lock()
	assert.Equal(t, 0, f.subscribes)
	f.mu.Unlock()
}

func TestStoreLogin(t *testing.T) {
	s := New(newFakeAuth(), nil)
	defer s.Close()
	waitReady(t, s)

	require.NoError(t, s.Login(context.Background(), "admin@nstore.com", "password"))
	snap := s.Snapshot()
	assert.True(t, snap.Authenticated())
	assert.Equal(t, "admin@nstore.com", snap.Session.Email)
}

func TestStoreLoginRejected(t *testing.T) {
	f := newFakeAuth()
	f.current = activeSession()
	s := New(f, nil)
	defer s.Close()
	waitReady(t, s)
	require.True(t, s.Snapshot().Authenticated())

	err := s.Login(context.Background(), "admin@nstore.com", "nope")
	require.Error(t, err)
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.Authentication, ae.Kind)
	assert.Equal(t, auth.ErrInvalidCredentials.Error(), ae.PublicMsg)
	assert.Equal(t, StateUnauthenticated, s.Snapshot().State)
}

func TestStoreLoginUnreachable(t *testing.T) {
	f := newFakeAuth()
	f.signInErr = errors.New("dial tcp: i/o timeout")
	s := New(f, nil)
	defer s.Close()

	err := s.Login(context.Background(), "admin@nstore.com", "password")
	assert.True(t, apperr.Is(err, apperr.Network))
	assert.False(t, s.Snapshot().Authenticated())
}

func TestStoreLogoutWhenRemoteFails(t *testing.T) {
	f := newFakeAuth()
	f.current = activeSession()
	f.signOutErr = errors.New("network down")
	s := New(f, nil)
	defer s.Close()
	waitReady(t, s)
	require.True(t, s.Snapshot().Authenticated())

	err := s.Logout(context.Background())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Network))
	assert.False(t, s.Snapshot().Authenticated())
	assert.Equal(t, StateUnauthenticated, s.Snapshot().State)
}

func TestStoreLogoutSucceeds(t *testing.T) {
	f := newFakeAuth()
	f.current = activeSession()
	s := New(f, nil)
	defer s.Close()
	waitReady(t, s)

	require.NoError(t, s.Logout(context.Background()))
	assert.False(t, s.Snapshot().Authenticated())
}

func TestStoreIgnoresPushAfterClose(t *testing.T) {
	f := newFakeAuth()
	s := New(f, nil)
	waitReady(t, s)

	handlers := make([]func(*models.Session), 0, 1)
	f.mu.Lock()
	for _, fn := range f.subscribers {
		handlers = append(handlers, fn)
	}
	f.mu.Unlock()
	require.Len(t, handlers, 1)

	s.Close()
	handlers[0](activeSession())
	assert.False(t, s.Snapshot().Authenticated())
}

func TestStoreWithMemoryService(t *testing.T) {
	tokens, err := auth.NewTokens([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	require.NoError(t, err)
	svc, err := auth.NewMemoryService(tokens, "admin@nstore.com", "password")
	require.NoError(t, err)
	defer svc.Close()

	s := New(svc, nil)
	defer s.Close()
	waitReady(t, s)
	assert.False(t, s.Snapshot().Authenticated())

	// a sign-in made directly against the service reaches the store
	_, err = svc.SignIn(context.Background(), "admin@nstore.com", "password")
	require.NoError(t, err)
	assert.True(t, s.Snapshot().Authenticated())

	require.NoError(t, s.Logout(context.Background()))
	assert.False(t, s.Snapshot().Authenticated())
}
