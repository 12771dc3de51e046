package catalog

// Product is the storefront catalog entry consumed by cart and checkout.
// Prices are integer cents. Stock is the sellable quantity; it is only ever
// debited by the payment reconciler, never at checkout.
type Product struct {
	ID          int      `json:"productId"`
	Name        string   `json:"productName"`
	Description string   `json:"productDesc,omitempty"`
	PriceCents  int64    `json:"priceCents"`
	Stock       int      `json:"stock"`
	Active      bool     `json:"active"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	ImageURLs   []string `json:"imageUrls,omitempty"`
}

// ShippingMethod is a deliverable option selected at checkout. Its cost is
// snapshotted onto the order; the method itself stays referenced by id.
type ShippingMethod struct {
	ID         int    `json:"shippingMethodId"`
	Name       string `json:"name"`
	PriceCents int64  `json:"priceCents"`
	Active     bool   `json:"active"`
}
