package session

import (
	"context"

	"nstore-backend/auth"
)

type Decision int

const (
	// DecisionChecking renders the "checking session" placeholder.
	DecisionChecking Decision = iota
	DecisionRender
	DecisionRedirect
)

func (d Decision) String() string {
	switch d {
	case DecisionChecking:
		return "checking"
	case DecisionRender:
		return "render"
	case DecisionRedirect:
		return "redirect"
	}
	return "unknown"
}

// Decide adalah aturan akses halaman admin. Selama loading hasilnya selalu
// checking. Setelah itu salah satu sinyal sesi sudah cukup untuk render.
func Decide(loading, authenticated, secondary bool) Decision {
	switch {
	case loading:
		return DecisionChecking
	case authenticated || secondary:
		return DecisionRender
	default:
		return DecisionRedirect
	}
}

// Snapshotter adalah sisi baca dari Store.
type Snapshotter interface {
	Snapshot() Snapshot
}

// Probe menanyakan langsung ke layanan auth apakah ada sesi aktif.
type Probe func(ctx context.Context) (bool, error)

// ProbeFrom membuat Probe dari query CurrentSession sesaat.
func ProbeFrom(svc auth.Service) Probe {
	return func(ctx context.Context) (bool, error) {
		s, err := svc.CurrentSession(ctx)
		if err != nil {
			return false, err
		}
		return s != nil, nil
	}
}

type Guard struct {
	store Snapshotter
	probe Probe
}

type GuardOption func(*Guard)

// WithProbe menambahkan sinyal sesi kedua. Sinyal ini hanya dipakai saat
// store sudah selesai dengan status belum login. Error dianggap "tidak ada
// sesi".
func WithProbe(p Probe) GuardOption {
	return func(g *Guard) { g.probe = p }
}

func NewGuard(store Snapshotter, opts ...GuardOption) *Guard {
	g := &Guard{store: store}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Guard) Check(ctx context.Context) Decision {
	snap := g.store.Snapshot()
	if snap.Loading() {
		return DecisionChecking
	}

	secondary := false
	if !snap.Authenticated() && g.probe != nil {
		ok, err := g.probe(ctx)
		secondary = err == nil && ok
	}
	return Decide(false, snap.Authenticated(), secondary)
}
