package cart

import (
	"errors"
	"sync"
)

var (
	ErrLineNotFound = errors.New("cart line not found")
	ErrNotOwner     = errors.New("cart line belongs to another owner")
)

// Repository persists cart lines. Merging, ownership and stock checks live in
// the service; the repository only stores.
type Repository interface {
	Lines(ownerKey string) ([]Line, error)
	GetLine(lineID int) (Line, error)
	FindLine(ownerKey string, productID int) (Line, error)
	Insert(line Line) (Line, error)
	UpdateQuantity(lineID, qty int) error
	Delete(lineID int) error
	Clear(ownerKey string) error
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu     sync.RWMutex
	lines  []Line
	nextID int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1}
}

func (r *InMemoryRepository) Lines(ownerKey string) ([]Line, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Line, 0)
	for _, l := range r.lines {
		if l.OwnerKey == ownerKey {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) GetLine(lineID int) (Line, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, l := range r.lines {
		if l.ID == lineID {
			return l, nil
		}
	}
	return Line{}, ErrLineNotFound
}

func (r *InMemoryRepository) FindLine(ownerKey string, productID int) (Line, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, l := range r.lines {
		if l.OwnerKey == ownerKey && l.ProductID == productID {
			return l, nil
		}
	}
	return Line{}, ErrLineNotFound
}

func (r *InMemoryRepository) Insert(line Line) (Line, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	line.ID = r.nextID
	r.nextID++
	r.lines = append(r.lines, line)
	return line, nil
}

func (r *InMemoryRepository) UpdateQuantity(lineID, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, l := range r.lines {
		if l.ID == lineID {
			r.lines[i].Quantity = qty
			return nil
		}
	}
	return ErrLineNotFound
}

func (r *InMemoryRepository) Delete(lineID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, l := range r.lines {
		if l.ID == lineID {
			r.lines = append(r.lines[:i], r.lines[i+1:]...)
			return nil
		}
	}
	return ErrLineNotFound
}

// Seed inserts lines directly, bypassing service validation. Tests use it to
// set up carts that no longer match current stock.
func (r *InMemoryRepository) Seed(lines ...Line) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range lines {
		l.ID = r.nextID
		r.nextID++
		r.lines = append(r.lines, l)
	}
	return nil
}

func (r *InMemoryRepository) Clear(ownerKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.lines[:0]
	for _, l := range r.lines {
		if l.OwnerKey != ownerKey {
			kept = append(kept, l)
		}
	}
	r.lines = kept
	return nil
}
