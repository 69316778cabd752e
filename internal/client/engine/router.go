package engine

import (
	"dailydash/internal/client/state"
	"dailydash/internal/domain"
)

// NextView maps an authentication result onto the screen to show. Pure
// so routing is testable without any wiring.
func NextView(u *domain.User) state.View {
	switch {
	case u == nil:
		return state.ViewUnauthenticated
	case u.Role == domain.RoleAdmin:
		return state.ViewAdminDashboard
	case !u.HasPreferences():
		return state.ViewNeedsPreferences
	default:
		return state.ViewReaderDashboard
	}
}
