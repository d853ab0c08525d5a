package authz_test

import (
	"testing"

	"github.com/fastorder/storefront/internal/authz"
	"github.com/fastorder/storefront/internal/enum"
	"github.com/fastorder/storefront/internal/session"
)

var (
	anon  *session.Session
	user  = &session.Session{UserID: 1, Name: "Linh", Role: enum.RoleUser}
	admin = &session.Session{UserID: 2, Name: "Minh", Role: enum.RoleAdmin}
)

func TestPublicViews(t *testing.T) {
	for _, v := range []authz.View{authz.ViewCatalog, authz.ViewLogin, authz.ViewRegister} {
		if !authz.Allowed(v, anon) {
			t.Errorf("%s: anonymous must be allowed", v)
		}
		if !authz.Allowed(v, user) {
			t.Errorf("%s: user must be allowed", v)
		}
	}
}

func TestAnonymousDeniedProtectedViews(t *testing.T) {
	protected := []authz.View{
		authz.ViewCart, authz.ViewOrders, authz.ViewScannedOrders, authz.ViewTicket,
		authz.ViewAdminFoods, authz.ViewAdminOrders, authz.ViewAdminUsers,
		authz.ViewAdminScannedOrders, authz.ViewAdminScan,
	}
	for _, v := range protected {
		if authz.Allowed(v, anon) {
			t.Errorf("%s: anonymous must be denied", v)
		}
	}
}

func TestUserViews(t *testing.T) {
	for _, v := range []authz.View{authz.ViewCart, authz.ViewOrders, authz.ViewScannedOrders, authz.ViewTicket} {
		if !authz.Allowed(v, user) {
			t.Errorf("%s: user must be allowed", v)
		}
	}
	for _, v := range []authz.View{authz.ViewAdminFoods, authz.ViewAdminOrders, authz.ViewAdminUsers, authz.ViewAdminScan} {
		if authz.Allowed(v, user) {
			t.Errorf("%s: user must be denied", v)
		}
	}
}

func TestAdminNeverSeesUserCart(t *testing.T) {
	if authz.Allowed(authz.ViewCart, admin) {
		t.Error("cart: admin must be denied")
	}
	for _, v := range []authz.View{
		authz.ViewAdminFoods, authz.ViewAdminOrders, authz.ViewAdminUsers,
		authz.ViewAdminScannedOrders, authz.ViewAdminScan, authz.ViewOrders,
	} {
		if !authz.Allowed(v, admin) {
			t.Errorf("%s: admin must be allowed", v)
		}
	}
}

func TestUnknownViewDenied(t *testing.T) {
	if authz.Allowed(authz.View("nope"), admin) {
		t.Error("unknown view must be denied")
	}
}

func TestViewsListsOnlyAllowed(t *testing.T) {
	for _, v := range authz.Views(user) {
		if !authz.Allowed(v, user) {
			t.Errorf("Views returned %s which Allowed denies", v)
		}
		if v == authz.ViewAdminFoods {
			t.Error("user view list must not contain admin views")
		}
	}
	for _, v := range authz.Views(admin) {
		if v == authz.ViewCart {
			t.Error("admin view list must not contain the cart")
		}
	}
}
