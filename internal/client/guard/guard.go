// Package guard decides whether a protected screen may render for the
// current session state. The decision is recomputed from scratch on every
// navigation; it keeps no memory of prior outcomes.
package guard

import (
	"slices"

	"github.com/hopespring/backoffice/internal/client/models"
	"github.com/hopespring/backoffice/internal/client/session"
)

// Decision is the outcome of evaluating a protected screen.
type Decision int

const (
	// ShowLoading: hydration has not finished; render a neutral placeholder
	// and nothing else, so a restored session is not flash-redirected.
	ShowLoading Decision = iota

	// RedirectLogin: send the user to the login screen, replacing the
	// current history entry so back-navigation cannot return here. This is
	// an expected condition, not an error.
	RedirectLogin

	// Render: the wrapped screen renders unchanged.
	Render
)

func (d Decision) String() string {
	switch d {
	case ShowLoading:
		return "loading"
	case RedirectLogin:
		return "redirect-login"
	case Render:
		return "render"
	default:
		return "unknown"
	}
}

// Evaluate applies the decision procedure, in precedence order:
// boot-loading wins over everything, an absent identity redirects, a
// non-empty role list the identity's role is not in redirects, and
// otherwise the screen renders. A nil or empty role list means any
// authenticated identity is sufficient.
func Evaluate(st session.State, requiredRoles []models.Role) Decision {
	if st.BootLoading {
		return ShowLoading
	}
	if !st.LoggedIn() {
		return RedirectLogin
	}
	if len(requiredRoles) > 0 && !slices.Contains(requiredRoles, st.Identity.Role) {
		return RedirectLogin
	}
	return Render
}

// Guard binds the decision procedure to a session store so call sites do
// not pass state around. The store is injected, never reached for globally.
type Guard struct {
	store *session.Store
}

func New(store *session.Store) *Guard {
	return &Guard{store: store}
}

// Check evaluates the current session state against the screen's role list.
func (g *Guard) Check(requiredRoles ...models.Role) Decision {
	return Evaluate(g.store.Snapshot(), requiredRoles)
}
