package cart

import (
	"errors"

	"github.com/westmarin/yacht-store-backend/internal/catalog"
)

var (
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrProductUnavailable = errors.New("product unavailable")
	ErrInsufficientStock  = errors.New("insufficient stock")
)

// ServiceInterface is consumed by the order service at checkout.
type ServiceInterface interface {
	Lines(ownerKey string) ([]Line, error)
	Clear(ownerKey string) error
}

// Service orchestrates cart operations, validating against live catalog data.
type Service struct {
	repo    Repository
	catalog catalog.ServiceInterface
}

func NewService(repo Repository, cat catalog.ServiceInterface) *Service {
	return &Service{repo: repo, catalog: cat}
}

// Add puts qty of a product into the owner's cart. An existing line for the
// same product merges quantities; the merged quantity is validated against
// current stock.
func (s *Service) Add(ownerKey string, productID, qty int) (Line, error) {
	if qty <= 0 {
		return Line{}, ErrInvalidQuantity
	}

	p, err := s.catalog.GetProduct(productID)
	if err != nil {
		if err == catalog.ErrNotFound {
			return Line{}, ErrProductUnavailable
		}
		return Line{}, err
	}
	if !p.Active {
		return Line{}, ErrProductUnavailable
	}

	existing, err := s.repo.FindLine(ownerKey, productID)
	if err != nil && err != ErrLineNotFound {
		return Line{}, err
	}

	merged := qty
	if err == nil {
		merged += existing.Quantity
	}
	if merged > p.Stock {
		return Line{}, ErrInsufficientStock
	}

	if err == ErrLineNotFound {
		return s.repo.Insert(Line{OwnerKey: ownerKey, ProductID: productID, Quantity: qty})
	}
	if err := s.repo.UpdateQuantity(existing.ID, merged); err != nil {
		return Line{}, err
	}
	existing.Quantity = merged
	return existing, nil
}

// SetQuantity updates a line's quantity. A quantity of zero or less deletes
// the line; that is the defined semantics, not an error.
func (s *Service) SetQuantity(ownerKey string, lineID, qty int) error {
	line, err := s.ownedLine(ownerKey, lineID)
	if err != nil {
		return err
	}

	if qty <= 0 {
		return s.repo.Delete(line.ID)
	}

	p, err := s.catalog.GetProduct(line.ProductID)
	if err != nil {
		if err == catalog.ErrNotFound {
			return ErrProductUnavailable
		}
		return err
	}
	if qty > p.Stock {
		return ErrInsufficientStock
	}
	return s.repo.UpdateQuantity(line.ID, qty)
}

func (s *Service) Remove(ownerKey string, lineID int) error {
	line, err := s.ownedLine(ownerKey, lineID)
	if err != nil {
		return err
	}
	return s.repo.Delete(line.ID)
}

func (s *Service) Clear(ownerKey string) error {
	return s.repo.Clear(ownerKey)
}

func (s *Service) Lines(ownerKey string) ([]Line, error) {
	return s.repo.Lines(ownerKey)
}

// Get returns the cart joined with live product data. Lines whose product no
// longer exists are dropped from the result, tolerating catalog deletions.
func (s *Service) Get(ownerKey string) ([]Item, error) {
	lines, err := s.repo.Lines(ownerKey)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(lines))
	for _, l := range lines {
		p, err := s.catalog.GetProduct(l.ProductID)
		if err == catalog.ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		items = append(items, itemFrom(l, p))
	}
	return items, nil
}

func (s *Service) ownedLine(ownerKey string, lineID int) (Line, error) {
	line, err := s.repo.GetLine(lineID)
	if err != nil {
		return Line{}, err
	}
	if line.OwnerKey != ownerKey {
		return Line{}, ErrNotOwner
	}
	return line, nil
}
