package auth

import (
	"sync"
	"time"

	"nstore-backend/models"
)

// hub fans session changes out to subscribers and pushes a nil session
// when the last published session expires.
type hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(*models.Session)
	expiry *time.Timer
	now    func() time.Time
}

func newHub() *hub {
	return &hub{subs: make(map[int]func(*models.Session)), now: time.Now}
}

func (h *hub) subscribe(fn func(*models.Session)) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

func (h *hub) subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// publish delivers s to every subscriber outside the lock.
func (h *hub) publish(s *models.Session) {
	h.arm(s)

	h.mu.Lock()
	fns := make([]func(*models.Session), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

// arm schedules an expiry push for s, replacing any earlier schedule.
func (h *hub) arm(s *models.Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.expiry != nil {
		h.expiry.Stop()
		h.expiry = nil
	}
	if s == nil {
		return
	}
	wait := s.ExpiresAt.Sub(h.now())
	if wait < 0 {
		wait = 0
	}
	h.expiry = time.AfterFunc(wait, func() { h.publish(nil) })
}

func (h *hub) stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.expiry != nil {
		h.expiry.Stop()
		h.expiry = nil
	}
}
