package gateway

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"nstore-backend/models"
)

// MemoryProducts adalah ProductStore di memori untuk development dan test.
// Data selalu disalin saat masuk dan keluar.
type MemoryProducts struct {
	mu       sync.RWMutex
	products map[string]models.Product
	now      func() time.Time
}

func NewMemoryProducts(seed ...models.Product) *MemoryProducts {
	m := &MemoryProducts{
		products: make(map[string]models.Product, len(seed)),
		now:      time.Now,
	}
	for _, p := range seed {
		if p.ID == "" {
			p.ID = primitive.NewObjectID().Hex()
		}
		m.products[p.ID] = clone(p)
	}
	return m
}

// SetClock mengganti jam untuk created_at/updated_at.
func (m *MemoryProducts) SetClock(now func() time.Time) {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
}

func (m *MemoryProducts) List(_ context.Context, includeSold bool) ([]models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Product, 0, len(m.products))
	for _, p := range m.products {
		if !includeSold && p.Status != models.StatusReady {
			continue
		}
		out = append(out, clone(p))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryProducts) Get(_ context.Context, id string) (*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	p = clone(p)
	return &p, nil
}

func (m *MemoryProducts) Create(_ context.Context, in models.ProductInput) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	p := apply(models.Product{
		ID:        primitive.NewObjectID().Hex(),
		CreatedAt: now,
	}, in, now)
	m.products[p.ID] = p
	p = clone(p)
	return &p, nil
}

func (m *MemoryProducts) Update(_ context.Context, id string, in models.ProductInput) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	p := apply(existing, in, m.now().UTC())
	m.products[id] = p
	p = clone(p)
	return &p, nil
}

func (m *MemoryProducts) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[id]; !ok {
		return ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func apply(p models.Product, in models.ProductInput, now time.Time) models.Product {
	p.Name = in.Name
	p.Category = in.Category
	p.Price = in.Price
	p.Description = in.Description
	p.Status = in.Status
	p.Images = append([]string{}, in.Images...)
	p.Thumbnail = nil
	if in.Thumbnail != nil {
		t := *in.Thumbnail
		p.Thumbnail = &t
	}
	p.UpdatedAt = now
	return p
}

func clone(p models.Product) models.Product {
	p.Images = append([]string{}, p.Images...)
	if p.Thumbnail != nil {
		t := *p.Thumbnail
		p.Thumbnail = &t
	}
	return p
}
