package catalog

// ServiceInterface is what cart and order depend on; it keeps their tests
// free of this package's repositories.
type ServiceInterface interface {
	ListProducts() ([]Product, error)
	GetProduct(id int) (Product, error)
	ListProductsByIDs(ids []int) ([]Product, error)
	GetShippingMethod(id int) (ShippingMethod, error)
	ListShippingMethods() ([]ShippingMethod, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListProducts() ([]Product, error) {
	return s.repo.ListProducts()
}

func (s *Service) GetProduct(id int) (Product, error) {
	return s.repo.GetProduct(id)
}

func (s *Service) ListProductsByIDs(ids []int) ([]Product, error) {
	return s.repo.ListProductsByIDs(ids)
}

func (s *Service) GetShippingMethod(id int) (ShippingMethod, error) {
	return s.repo.GetShippingMethod(id)
}

func (s *Service) ListShippingMethods() ([]ShippingMethod, error) {
	return s.repo.ListShippingMethods()
}

var _ ServiceInterface = (*Service)(nil)
