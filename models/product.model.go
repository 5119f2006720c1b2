package models

import (
	"strings"
	"time"
)

// Status menandai ketersediaan produk.
type Status string

const (
	StatusReady Status = "Ready"
	StatusSold  Status = "Sold"
)

// ParseStatus menerima "ready"/"sold" tanpa memperhatikan huruf besar kecil.
func ParseStatus(s string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ready":
		return StatusReady, true
	case "sold":
		return StatusSold, true
	}
	return "", false
}

// Product mendefinisikan struktur untuk produk.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category,omitempty"`
	Price       int64     `json:"price"`
	Description string    `json:"description,omitempty"`
	Status      Status    `json:"status"`
	Images      []string  `json:"images"`
	Thumbnail   *string   `json:"thumbnail"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Input mengembalikan field produk yang bisa diubah oleh admin.
func (p Product) Input() ProductInput {
	return ProductInput{
		Name:        p.Name,
		Category:    p.Category,
		Price:       p.Price,
		Description: p.Description,
		Status:      p.Status,
		Images:      append([]string(nil), p.Images...),
		Thumbnail:   p.Thumbnail,
	}
}

// ProductInput adalah field yang dikirim saat membuat atau memperbarui produk.
type ProductInput struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Price       int64    `json:"price"`
	Description string   `json:"description"`
	Status      Status   `json:"status"`
	Images      []string `json:"images"`
	Thumbnail   *string  `json:"thumbnail"`
}

// SyncThumbnail menyamakan thumbnail dengan gambar pertama.
// Daftar gambar kosong selalu menghasilkan thumbnail nil.
func (in *ProductInput) SyncThumbnail() {
	if in.Images == nil {
		in.Images = []string{}
	}
	in.Thumbnail = ThumbnailOf(in.Images)
}

// ThumbnailOf mengembalikan gambar pertama, atau nil jika tidak ada gambar.
func ThumbnailOf(images []string) *string {
	if len(images) == 0 {
		return nil
	}
	first := images[0]
	return &first
}

// Stats mendefinisikan struktur untuk statistik katalog.
type Stats struct {
	TotalProducts int   `json:"total_products"`
	ReadyProducts int   `json:"ready_products"`
	SoldProducts  int   `json:"sold_products"`
	ReadyValue    int64 `json:"ready_value"`
}

// ComputeStats menghitung statistik dari daftar produk.
func ComputeStats(products []Product) Stats {
	var s Stats
	for _, p := range products {
		s.TotalProducts++
		if p.Status == StatusSold {
			s.SoldProducts++
			continue
		}
		s.ReadyProducts++
		s.ReadyValue += p.Price
	}
	return s
}
