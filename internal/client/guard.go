package client

import (
	"github.com/spec-kit/school-portal/internal/domain"
	"github.com/spec-kit/school-portal/internal/policy"
)

// GuardState is the outcome of a guard evaluation.
type GuardState int

const (
	// StateChecking means the session is not yet resolved. Protected
	// content must never render in this state.
	StateChecking GuardState = iota
	// StateAllowed renders the wrapped content unmodified.
	StateAllowed
	// StateDenied means authenticated but not permitted; the decision
	// carries the caller's own landing route as the redirect action.
	StateDenied
	// StateUnauthenticated means the guard requires authentication and
	// none is present; redirect to the public entry point.
	StateUnauthenticated
)

func (s GuardState) String() string {
	switch s {
	case StateChecking:
		return "checking"
	case StateAllowed:
		return "allowed"
	case StateDenied:
		return "denied"
	case StateUnauthenticated:
		return "unauthenticated"
	}
	return "unknown"
}

// Decision is what a guarded subtree should do. Evaluate never performs
// navigation itself; RedirectTo is the action offered to the caller.
type Decision struct {
	State      GuardState
	RedirectTo string
}

// Guard wraps a UI subtree with an authorization check mirroring the
// server's role gates. Re-evaluate whenever session state changes; the
// decision is pure in its inputs, so no polling is needed.
type Guard struct {
	// AllowedRoles limits access; empty means any authenticated role.
	AllowedRoles []domain.Role
	// PublicOnly inverts the authenticated branch: login-style screens
	// bounce authenticated users to their own dashboard.
	PublicOnly bool
}

// Evaluate maps the session onto a rendering decision. All degradation
// is toward denial or checking: an indeterminate session never grants
// access.
func (g Guard) Evaluate(session *Session) Decision {
	if session == nil || !session.Resolved() {
		return Decision{State: StateChecking}
	}

	if g.PublicOnly {
		if identity := session.Identity(); identity != nil {
			return Decision{State: StateDenied, RedirectTo: policy.RoutesFor(identity.Role)}
		}
		return Decision{State: StateAllowed}
	}

	identity := session.Identity()
	if identity == nil {
		return Decision{State: StateUnauthenticated, RedirectTo: policy.PublicEntryRoute}
	}

	if len(g.AllowedRoles) == 0 {
		return Decision{State: StateAllowed}
	}
	for _, role := range g.AllowedRoles {
		if identity.Role == role {
			return Decision{State: StateAllowed}
		}
	}
	return Decision{State: StateDenied, RedirectTo: policy.RoutesFor(identity.Role)}
}
