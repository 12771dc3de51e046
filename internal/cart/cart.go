package cart

import "github.com/westmarin/yacht-store-backend/internal/catalog"

// Line is one product in a cart. Lines are unique per (owner key, product);
// adding an already-carted product merges quantities instead of inserting.
type Line struct {
	ID        int    `json:"lineId"`
	OwnerKey  string `json:"-"`
	ProductID int    `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Item is a cart line joined with live product data for display.
type Item struct {
	LineID     int    `json:"lineId"`
	ProductID  int    `json:"productId"`
	Name       string `json:"productName"`
	PriceCents int64  `json:"priceCents"`
	ImageURL   string `json:"imageUrl,omitempty"`
	Stock      int    `json:"stock"`
	Quantity   int    `json:"quantity"`
}

func itemFrom(l Line, p catalog.Product) Item {
	return Item{
		LineID:     l.ID,
		ProductID:  l.ProductID,
		Name:       p.Name,
		PriceCents: p.PriceCents,
		ImageURL:   p.ImageURL,
		Stock:      p.Stock,
		Quantity:   l.Quantity,
	}
}
