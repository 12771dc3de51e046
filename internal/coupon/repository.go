package coupon

import "sync"

type Repository interface {
	GetByCode(code string) (Coupon, error)
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu      sync.RWMutex
	coupons map[string]*Coupon
}

func NewInMemoryRepository(seed []Coupon) *InMemoryRepository {
	r := &InMemoryRepository{coupons: make(map[string]*Coupon, len(seed))}
	for i := range seed {
		cp := seed[i]
		cp.Code = NormalizeCode(cp.Code)
		r.coupons[cp.Code] = &cp
	}
	return r
}

func (r *InMemoryRepository) GetByCode(code string) (Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cp, ok := r.coupons[NormalizeCode(code)]
	if !ok {
		return Coupon{}, ErrNotFound
	}
	return *cp, nil
}

// ReserveUsage increments a coupon's usage count if the usage limit allows
// one more redemption. It backs the order repository's in-memory
// transaction the same way the conditional UPDATE does in Postgres.
func (r *InMemoryRepository) ReserveUsage(couponID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cp := range r.coupons {
		if cp.ID == couponID {
			if cp.UsageLimit > 0 && cp.UsageCount >= cp.UsageLimit {
				return ErrExhausted
			}
			cp.UsageCount++
			return nil
		}
	}
	return ErrNotFound
}

// UsageCount reports the current usage count, for tests.
func (r *InMemoryRepository) UsageCount(couponID int) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, cp := range r.coupons {
		if cp.ID == couponID {
			return cp.UsageCount
		}
	}
	return 0
}
