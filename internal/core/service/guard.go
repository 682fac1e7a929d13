package service

import "github.com/moneykrishna/taskdesk/internal/core/domain"

// CanAccess reports whether the session may enter a section guarded by required.
// The staff predicate also admits is_staff accounts, as the backend does.
func CanAccess(required domain.Role, s *domain.Session) bool {
	if s == nil {
		return false
	}
	u := s.User()
	switch required {
	case domain.RoleAdmin:
		return u.IsSuperuser || u.UserType == domain.UserTypeAdmin
	case domain.RoleStaff:
		return u.UserType == domain.UserTypeStaff || u.IsStaff
	case domain.RoleSales:
		return u.UserType == domain.UserTypeSales
	}
	return false
}

// Decision is the outcome of a guard check.
type Decision struct {
	Allowed  bool
	Redirect string
	Reason   string
}

// Decide resolves where a caller lands for a guarded section. Callers without
// a session go to the login page; callers with the wrong role go to their own
// home, unless that home is the very section denying them.
func Decide(required domain.Role, s *domain.Session) Decision {
	if s == nil {
		return Decision{Redirect: domain.LoginPath, Reason: "no session"}
	}
	if CanAccess(required, s) {
		return Decision{Allowed: true}
	}
	if s.Role() == required {
		return Decision{Redirect: domain.LoginPath, Reason: "role " + string(s.Role()) + " not admitted to its own section"}
	}
	return Decision{Redirect: domain.HomePath(s.Role()), Reason: "requires " + string(required)}
}
