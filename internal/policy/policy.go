// Package policy holds the static role-permission table. It is the
// single source of role→route and role→action knowledge: every other
// component queries it rather than redeclaring the mapping.
package policy

import "github.com/spec-kit/school-portal/internal/domain"

// Resources known to the portal.
const (
	ResourceContacts = "contacts"
	ResourceMessages = "messages"
	ResourceUsers    = "users"
	ResourceProfile  = "profile"
)

// Actions over resources.
const (
	ActionRead   = "read"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// PublicEntryRoute is where unauthenticated principals are sent.
const PublicEntryRoute = "/"

type permission struct {
	resource string
	action   string
}

// The table is built once at package init and never mutated, so it is
// safe to read from concurrently handled requests without locking.
var permissions = map[domain.Role]map[permission]struct{}{
	domain.RoleStudent: permSet(
		permission{ResourceContacts, ActionRead},
		permission{ResourceMessages, ActionRead},
		permission{ResourceProfile, ActionRead},
		permission{ResourceProfile, ActionUpdate},
	),
	domain.RoleParent: permSet(
		permission{ResourceContacts, ActionRead},
		permission{ResourceMessages, ActionRead},
		permission{ResourceProfile, ActionRead},
		permission{ResourceProfile, ActionUpdate},
	),
	domain.RoleTeacher: permSet(
		permission{ResourceContacts, ActionRead},
		permission{ResourceMessages, ActionRead},
		permission{ResourceMessages, ActionCreate},
		permission{ResourceUsers, ActionRead},
		permission{ResourceProfile, ActionRead},
		permission{ResourceProfile, ActionUpdate},
	),
	domain.RoleAdmin: permSet(
		permission{ResourceContacts, ActionRead},
		permission{ResourceContacts, ActionCreate},
		permission{ResourceContacts, ActionUpdate},
		permission{ResourceContacts, ActionDelete},
		permission{ResourceMessages, ActionRead},
		permission{ResourceMessages, ActionCreate},
		permission{ResourceUsers, ActionRead},
		permission{ResourceUsers, ActionCreate},
		permission{ResourceUsers, ActionUpdate},
		permission{ResourceUsers, ActionDelete},
		permission{ResourceProfile, ActionRead},
		permission{ResourceProfile, ActionUpdate},
	),
}

var landingRoutes = map[domain.Role]string{
	domain.RoleStudent: "/student",
	domain.RoleTeacher: "/teacher",
	domain.RoleAdmin:   "/admin",
	domain.RoleParent:  "/parent",
}

func permSet(perms ...permission) map[permission]struct{} {
	set := make(map[permission]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// Permits reports whether the role may perform action on resource. It
// is total: an unrecognized role or unlisted pair yields false, never
// a panic.
func Permits(role domain.Role, resource, action string) bool {
	set, ok := permissions[role]
	if !ok {
		return false
	}
	_, ok = set[permission{resource, action}]
	return ok
}

// RoutesFor returns the default landing route for a role, used to
// redirect a misrouted but authenticated principal to their own
// dashboard. Unknown roles land at the public entry point.
func RoutesFor(role domain.Role) string {
	if route, ok := landingRoutes[role]; ok {
		return route
	}
	return PublicEntryRoute
}
