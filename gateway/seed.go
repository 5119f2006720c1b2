package gateway

import (
	"time"

	"nstore-backend/models"
)

// DemoCatalog mengembalikan produk demo untuk driver memori, dari yang
// terbaru relatif terhadap base.
func DemoCatalog(base time.Time) []models.Product {
	items := []struct {
		name, category, description string
		price                       int64
		status                      models.Status
		images                      []string
	}{
		{
			"iPhone 14 Pro", "iPhone",
			"The ultimate iPhone.\n- A16 Bionic chip\n- Pro camera system\n- All-day battery life",
			14_999_000, models.StatusReady,
			[]string{"https://picsum.photos/seed/iphone14pro/800/600", "https://picsum.photos/seed/iphone14pro2/800/600", "https://picsum.photos/seed/iphone14pro3/800/600"},
		},
		{
			"Samsung Galaxy S23 Ultra", "Android",
			"The new standard of premium smartphones.\n- Integrated S Pen\n- Pro-grade Camera\n- Powerful gaming performance",
			16_499_000, models.StatusReady,
			[]string{"https://picsum.photos/seed/s23ultra/800/600", "https://picsum.photos/seed/s23ultra2/800/600"},
		},
		{
			`MacBook Pro 14"`, "Laptop",
			"Mind-blowing performance.\n- M2 Pro Chip\n- Stunning Liquid Retina XDR display\n- Up to 18 hours of battery life",
			27_999_000, models.StatusReady,
			[]string{"https://picsum.photos/seed/macbook14/800/600", "https://picsum.photos/seed/macbook14-2/800/600"},
		},
		{
			"Google Pixel 7 Pro", "Android",
			"The all-pro phone, powered by Google.\n- Google Tensor G2\n- Pro-level camera system\n- Adaptive Battery can last over 24 hours",
			11_499_000, models.StatusSold,
			[]string{"https://picsum.photos/seed/pixel7pro/800/600"},
		},
		{
			"iPhone 13", "iPhone",
			"As amazing as ever.\n- A15 Bionic chip\n- Advanced dual-camera system\n- Super Retina XDR display",
			8_999_000, models.StatusReady,
			[]string{"https://picsum.photos/seed/iphone13/800/600"},
		},
	}

	out := make([]models.Product, 0, len(items))
	for i, it := range items {
		created := base.Add(-time.Duration(i) * time.Hour)
		out = append(out, models.Product{
			Name:        it.name,
			Category:    it.category,
			Price:       it.price,
			Description: it.description,
			Status:      it.status,
			Images:      it.images,
			Thumbnail:   models.ThumbnailOf(it.images),
			CreatedAt:   created,
			UpdatedAt:   created,
		})
	}
	return out
}
