package account

import (
	"errors"
	"sync"
)

var (
	ErrNotFound           = errors.New("account not found")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type Repository interface {
	GetByID(id int) (Account, error)
	GetByEmail(email string) (Account, error)
	Create(acc Account) (Account, error)
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu       sync.RWMutex
	accounts []Account
	nextID   int
}

func NewInMemoryRepository(seed []Account) *InMemoryRepository {
	repo := &InMemoryRepository{accounts: make([]Account, 0, len(seed)), nextID: 1}
	for _, acc := range seed {
		repo.accounts = append(repo.accounts, acc)
		if acc.ID >= repo.nextID {
			repo.nextID = acc.ID + 1
		}
	}
	return repo
}

func (r *InMemoryRepository) GetByID(id int) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, acc := range r.accounts {
		if acc.ID == id {
			return acc, nil
		}
	}
	return Account{}, ErrNotFound
}

func (r *InMemoryRepository) GetByEmail(email string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, acc := range r.accounts {
		if acc.Email == email {
			return acc, nil
		}
	}
	return Account{}, ErrNotFound
}

func (r *InMemoryRepository) Create(acc Account) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.Email == acc.Email {
			return Account{}, ErrEmailExists
		}
	}
	acc.ID = r.nextID
	r.nextID++
	if acc.Role == "" {
		acc.Role = RoleCustomer
	}
	r.accounts = append(r.accounts, acc)
	return acc, nil
}
