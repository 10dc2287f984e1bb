// Package guard gates access to the terminal's views by authentication and
// role, mirroring the client-side route surface.
package guard

import (
	"barpos/internal/model"
	"barpos/internal/session"
)

// Client-side route surface.
const (
	RouteLogin         = "/login"
	RouteBarman        = "/barman"
	RouteOrdersCash    = "/barman/orders-cash"
	RouteStockBar      = "/barman/stock-bar"
	RouteReplenishment = "/barman/replenishment"
)

// RequireAuth allows any authenticated session. Denied access redirects to
// the login view.
func RequireAuth(s session.State) (bool, string) {
	if s.IsAuthenticated {
		return true, ""
	}
	return false, RouteLogin
}

// RequireBarman allows authenticated sessions with the barman role; everyone
// else is sent back to login.
func RequireBarman(s session.State) (bool, string) {
	if s.IsAuthenticated && s.Role == model.RoleBarman {
		return true, ""
	}
	return false, RouteLogin
}
