package auth

// Role identifies the dashboard a user belongs to.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleDealer     Role = "dealer"
	RoleRestaurant Role = "restaurant"
	RoleCompany    Role = "company"
	RoleCorporate  Role = "corporate"
	RoleMarketing  Role = "marketing"
)

// IsValid returns true if the role is a recognized dashboard role.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleDealer, RoleRestaurant, RoleCompany, RoleCorporate, RoleMarketing:
		return true
	}
	return false
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}
