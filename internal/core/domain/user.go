package domain

// Role is the access tier a session is entitled to.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
	RoleSales Role = "sales"
)

// Backend user_type values.
const (
	UserTypeAdmin   = "admin"
	UserTypeStaff   = "staff"
	UserTypeSales   = "sales"
	UserTypeStudent = "student"
)

// User is the account record returned by the backend on login/register.
type User struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	Username    string `json:"username,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	UserType    string `json:"user_type"`
	IsSuperuser bool   `json:"is_superuser"`
	IsStaff     bool   `json:"is_staff"`
}

// DeriveRole maps a user record to its role:
// superuser or user_type admin is admin, user_type sales is sales, anything else is staff.
func DeriveRole(u User) Role {
	switch {
	case u.IsSuperuser || u.UserType == UserTypeAdmin:
		return RoleAdmin
	case u.UserType == UserTypeSales:
		return RoleSales
	default:
		return RoleStaff
	}
}

// DisplayName prefers the first name, then the email, then the username.
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "":
		return u.FirstName
	case u.Email != "":
		return u.Email
	default:
		return u.Username
	}
}

// HomePath returns the dashboard route for a role.
func HomePath(r Role) string {
	switch r {
	case RoleAdmin:
		return "/admin/dashboard"
	case RoleSales:
		return "/sales/dashboard"
	default:
		return "/staff/dashboard"
	}
}

// LoginPath is where unauthenticated clients are sent.
const LoginPath = "/login"
