package catalog

import "github.com/fairyhunter13/storefront-service/internal/store"

type seedProduct struct {
	Title       string
	Description string
	Price       float64
	Category    string
	InStock     bool
	Image       string
	Rating      float64
}

// seedProducts populates an empty catalog on first run, in this order.
var seedProducts = []seedProduct{
	{
		Title:       "AeroMesh Sneakers",
		Description: "Breathable, lightweight trainers for all-day comfort",
		Price:       129.0,
		Category:    "shoes",
		InStock:     true,
		Image:       "https://images.unsplash.com/photo-1542291026-7eec264c27ff?q=80&w=1200&auto=format&fit=crop",
		Rating:      4.7,
	},
	{
		Title:       "Minimalist Backpack",
		Description: "Slim, water-resistant pack with padded laptop sleeve",
		Price:       89.0,
		Category:    "bags",
		InStock:     true,
		Image:       "https://images.unsplash.com/photo-1517433670267-08bbd4be890f?q=80&w=1200&auto=format&fit=crop",
		Rating:      4.6,
	},
	{
		Title:       "Supima Tee",
		Description: "Ultra-soft premium cotton crew neck",
		Price:       39.0,
		Category:    "apparel",
		InStock:     true,
		Image:       "https://images.unsplash.com/photo-1512436991641-6745cdb1723f?q=80&w=1200&auto=format&fit=crop",
		Rating:      4.6,
	},
	{
		Title:       "Smartwatch Pro",
		Description: "Fitness + notifications with 7-day battery",
		Price:       199.0,
		Category:    "wearables",
		InStock:     true,
		Image:       "https://images.unsplash.com/photo-1524805444758-089113d48a6d?q=80&w=1200&auto=format&fit=crop",
		Rating:      4.5,
	},
}

func (p seedProduct) document() store.Document {
	return store.Document{
		"title":       p.Title,
		"description": p.Description,
		"price":       p.Price,
		"category":    p.Category,
		"in_stock":    p.InStock,
		"image":       p.Image,
		"rating":      p.Rating,
	}
}
