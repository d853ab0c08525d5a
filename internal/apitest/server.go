// Package apitest is an in-memory FastOrder backend used by tests. It
// implements every endpoint the storefront consumes with the same status
// code contract as the real service, plus fault injection for rate limiting
// and payment failures.
package apitest

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastorder/storefront/internal/auth"
	"github.com/fastorder/storefront/internal/enum"
	"github.com/fastorder/storefront/internal/model"
)

const tokenTTL = time.Hour

type account struct {
	model.User
	hashedPassword []byte
}

type orderRecord struct {
	model.Order
	userID int64
}

// Server is the fake backend. All state lives behind one mutex; handlers are
// small enough that contention does not matter in tests.
type Server struct {
	mu sync.Mutex

	secret string
	nextID int64

	accounts   map[int64]*account
	byEmail    map[string]int64
	categories []model.Category
	foods      map[int64]*model.Food
	foodIDs    []int64
	orders     map[int64]*orderRecord
	orderIDs   []int64
	payments   map[int64]model.Payment
	tickets    map[int64]model.Ticket

	// Fault injection.
	rateLimitRemaining int
	paymentFailures    int

	hub  *hub
	http *httptest.Server
}

// New starts a fake backend and registers its shutdown with t.Cleanup.
func New(t *testing.T) *Server {
	t.Helper()

	s := &Server{
		secret:   "apitest-secret",
		accounts: make(map[int64]*account),
		byEmail:  make(map[string]int64),
		foods:    make(map[int64]*model.Food),
		orders:   make(map[int64]*orderRecord),
		payments: make(map[int64]model.Payment),
		tickets:  make(map[int64]model.Ticket),
		hub:      newHub(),
	}
	go s.hub.run()

	s.http = httptest.NewServer(s.router())
	t.Cleanup(func() {
		s.http.Close()
		s.hub.stop()
	})
	return s
}

// URL is the backend base URL for api.New.
func (s *Server) URL() string { return s.http.URL }

func (s *Server) router() chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
	}))
	r.Use(s.injectFaults)

	r.Route("/api", func(r chi.Router) {
		// Public
		r.Post("/login", s.login)
		r.Post("/register", s.register)
		r.Get("/categories", s.listCategories)
		r.Get("/foods", s.listFoods)

		// Authenticated
		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Post("/orders", s.placeOrder)
			r.Get("/orders", s.listOrders)
			r.Delete("/orders/{id}/cancel", s.cancelOrder)
			r.Get("/scanned-orders", s.listScannedOrders)

			r.Post("/payments", s.createPayment)
			r.Get("/payments/order/{id}", s.paymentByOrder)
			r.Get("/tickets/{id}", s.getTicket)

			// Admin
			r.Group(func(r chi.Router) {
				r.Use(s.requireAdmin)

				r.Post("/foods", s.createFood)
				r.Put("/foods/{id}", s.updateFood)
				r.Delete("/foods/{id}", s.deleteFood)

				r.Get("/admin/orders", s.adminListOrders)
				r.Get("/admin/orders/{id}", s.adminGetOrder)
				r.Put("/admin/orders/{id}/status", s.adminUpdateOrderStatus)
				r.Get("/admin/foods-confirmed", s.confirmedFoods)
				r.Get("/admin/scanned-orders", s.adminListScannedOrders)
				r.Post("/admin/scan-qr", s.scanQR)

				r.Get("/users", s.listUsers)
				r.Put("/users/{id}/role", s.updateUserRole)
				r.Delete("/users/{id}", s.deleteUser)
			})
		})
	})

	r.Get("/ws/orders", s.serveWS)

	return r
}

// ── Fault injection ──

// RateLimitNext makes the next n requests fail with 429.
func (s *Server) RateLimitNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rateLimitRemaining = n
}

// FailPayments makes the next n payment attempts fail with 500.
func (s *Server) FailPayments(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paymentFailures = n
}

func (s *Server) injectFaults(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		limited := s.rateLimitRemaining > 0
		if limited {
			s.rateLimitRemaining--
		}
		s.mu.Unlock()

		if limited {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ── Auth middleware ──

type contextKey string

const claimsKey contextKey = "claims"

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing authorization header"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid authorization format"})
			return
		}

		claims, err := auth.ValidateToken(s.secret, parts[1])
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFromContext(r.Context())
		if claims == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
			return
		}
		if claims.Role != enum.RoleAdmin {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "insufficient permissions"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func claimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// ── Seeding helpers ──

// SeedCategory registers a category and returns it.
func (s *Server) SeedCategory(name string) model.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := model.Category{ID: s.id(), Name: name}
	s.categories = append(s.categories, c)
	return c
}

// SeedFood registers an available menu item.
func (s *Server) SeedFood(name string, price int64, categoryID int64) model.Food {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := model.Food{
		ID:          s.id(),
		Name:        name,
		Price:       decimal.NewFromInt(price),
		IsAvailable: true,
		CategoryID:  categoryID,
	}
	for _, c := range s.categories {
		if c.ID == categoryID {
			f.CategoryName = c.Name
		}
	}
	s.foods[f.ID] = &f
	s.foodIDs = append(s.foodIDs, f.ID)
	return f
}

// SeedUser registers an account with a bcrypt-hashed password.
func (s *Server) SeedUser(name, email, password, role string) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		log.Printf("ERROR: hash seed password: %v", err)
	}
	a := &account{
		User:           model.User{ID: s.id(), Name: name, Email: email, Role: role},
		hashedPassword: hashed,
	}
	s.accounts[a.ID] = a
	s.byEmail[email] = a.ID
	return a.User
}

// Order returns a snapshot of an order for assertions.
func (s *Server) Order(id int64) (model.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.orders[id]
	if !ok {
		return model.Order{}, false
	}
	return rec.Order, true
}

// TicketCode returns the issued ticket code for an order, if any.
func (s *Server) TicketCode(orderID int64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tk, ok := s.tickets[orderID]
	return tk.TicketCode, ok
}

// id allocates the next id. Caller must hold mu.
func (s *Server) id() int64 {
	s.nextID++
	return s.nextID
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}
