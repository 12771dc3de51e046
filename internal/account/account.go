package account

// Account is a registered customer or back-office operator. Admins are
// provisioned by setting the role column out of band; there is no endpoint
// that elevates a role.
type Account struct {
	ID        int    `json:"accountId"`
	Email     string `json:"email"`
	Password  string `json:"password,omitempty"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)
