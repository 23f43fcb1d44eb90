package domain

// Role enumerates portal principal roles. The set is closed: tokens
// carrying any other value are rejected at verification.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleTeacher Role = "TEACHER"
	RoleAdmin   Role = "ADMIN"
	RoleParent  Role = "PARENT"
)

// Roles lists every member of the closed enumeration.
func Roles() []Role {
	return []Role{RoleStudent, RoleTeacher, RoleAdmin, RoleParent}
}

// Valid reports whether r is a member of the closed enumeration.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin, RoleParent:
		return true
	}
	return false
}

// ParseRole normalizes a stored or transmitted role value.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	if r.Valid() {
		return r, true
	}
	return "", false
}
