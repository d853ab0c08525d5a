// Package authz gates views on the current session. Access rules live in one
// capability table instead of per-view conditionals.
package authz

import (
	"github.com/fastorder/storefront/internal/enum"
	"github.com/fastorder/storefront/internal/session"
)

// View names every reachable screen of the storefront.
type View string

const (
	ViewCatalog            View = "catalog"
	ViewLogin              View = "login"
	ViewRegister           View = "register"
	ViewCart               View = "cart"
	ViewOrders             View = "orders"
	ViewScannedOrders      View = "scanned-orders"
	ViewTicket             View = "ticket"
	ViewAdminFoods         View = "admin-foods"
	ViewAdminOrders        View = "admin-orders"
	ViewAdminUsers         View = "admin-users"
	ViewAdminScannedOrders View = "admin-scanned-orders"
	ViewAdminScan          View = "admin-scan"
)

// access lists which roles may open a view. An empty Roles list with
// Public=true means anyone, logged in or not.
type access struct {
	Public bool
	Roles  []string
}

// table is the single source of truth for view gating. The cart is user-only:
// admins order on behalf of nobody and are never shown the end-user cart.
var table = map[View]access{
	ViewCatalog:  {Public: true},
	ViewLogin:    {Public: true},
	ViewRegister: {Public: true},

	ViewCart:          {Roles: []string{enum.RoleUser}},
	ViewOrders:        {Roles: []string{enum.RoleUser, enum.RoleAdmin}},
	ViewScannedOrders: {Roles: []string{enum.RoleUser, enum.RoleAdmin}},
	ViewTicket:        {Roles: []string{enum.RoleUser, enum.RoleAdmin}},

	ViewAdminFoods:         {Roles: []string{enum.RoleAdmin}},
	ViewAdminOrders:        {Roles: []string{enum.RoleAdmin}},
	ViewAdminUsers:         {Roles: []string{enum.RoleAdmin}},
	ViewAdminScannedOrders: {Roles: []string{enum.RoleAdmin}},
	ViewAdminScan:          {Roles: []string{enum.RoleAdmin}},
}

// Allowed reports whether the session may open view. A nil session means not
// logged in. Unknown views are never allowed.
func Allowed(view View, sess *session.Session) bool {
	a, ok := table[view]
	if !ok {
		return false
	}
	if a.Public {
		return true
	}
	if sess == nil {
		return false
	}
	for _, role := range a.Roles {
		if sess.Role == role {
			return true
		}
	}
	return false
}

// Views returns every view the session may open, in a stable order. The menu
// loop uses this to build its prompt.
func Views(sess *session.Session) []View {
	ordered := []View{
		ViewCatalog, ViewLogin, ViewRegister,
		ViewCart, ViewOrders, ViewScannedOrders, ViewTicket,
		ViewAdminFoods, ViewAdminOrders, ViewAdminUsers,
		ViewAdminScannedOrders, ViewAdminScan,
	}
	var out []View
	for _, v := range ordered {
		if Allowed(v, sess) {
			out = append(out, v)
		}
	}
	return out
}
