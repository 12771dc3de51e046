package catalog

import (
	"errors"
	"sync"
)

var (
	ErrNotFound               = errors.New("product not found")
	ErrShippingMethodNotFound = errors.New("shipping method not found")
)

type Repository interface {
	ListProducts() ([]Product, error)
	GetProduct(id int) (Product, error)
	ListProductsByIDs(ids []int) ([]Product, error)
	GetShippingMethod(id int) (ShippingMethod, error)
	ListShippingMethods() ([]ShippingMethod, error)
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu       sync.RWMutex
	products map[int]Product
	shipping map[int]ShippingMethod
}

func NewInMemoryRepository(products []Product, shipping []ShippingMethod) *InMemoryRepository {
	r := &InMemoryRepository{
		products: make(map[int]Product, len(products)),
		shipping: make(map[int]ShippingMethod, len(shipping)),
	}
	for _, p := range products {
		r.products[p.ID] = p
	}
	for _, m := range shipping {
		r.shipping[m.ID] = m
	}
	return r
}

func (r *InMemoryRepository) ListProducts() ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, nil
}

func (r *InMemoryRepository) GetProduct(id int) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (r *InMemoryRepository) ListProductsByIDs(ids []int) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) GetShippingMethod(id int) (ShippingMethod, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.shipping[id]
	if !ok {
		return ShippingMethod{}, ErrShippingMethodNotFound
	}
	return m, nil
}

func (r *InMemoryRepository) ListShippingMethods() ([]ShippingMethod, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ShippingMethod, 0, len(r.shipping))
	for _, m := range r.shipping {
		out = append(out, m)
	}
	return out, nil
}

// DebitStock lowers a product's stock by qty, floored at zero. The postgres
// path runs the equivalent UPDATE inside the reconciliation transaction; this
// method lets in-memory order repositories share the same semantics.
func (r *InMemoryRepository) DebitStock(productID, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[productID]
	if !ok {
		return ErrNotFound
	}
	p.Stock -= qty
	if p.Stock < 0 {
		p.Stock = 0
	}
	r.products[productID] = p
	return nil
}
