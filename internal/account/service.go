package account

import "golang.org/x/crypto/bcrypt"

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(id int) (Account, error) {
	return s.repo.GetByID(id)
}

func (s *Service) Register(acc Account) (Account, error) {
	if _, err := s.repo.GetByEmail(acc.Email); err == nil {
		return Account{}, ErrEmailExists
	} else if err != ErrNotFound {
		return Account{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(acc.Password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, err
	}

	acc.Password = string(hashed)
	acc.Role = RoleCustomer
	return s.repo.Create(acc)
}

func (s *Service) Authenticate(email, password string) (Account, error) {
	acc, err := s.repo.GetByEmail(email)
	if err != nil {
		return Account{}, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(acc.Password), []byte(password)) != nil {
		return Account{}, ErrInvalidCredentials
	}

	return acc, nil
}
