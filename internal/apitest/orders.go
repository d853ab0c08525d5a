package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/fastorder/storefront/internal/enum"
	"github.com/fastorder/storefront/internal/model"
)

// allowedTransitions guards admin status updates. Scanned and cancelled are
// terminal.
var allowedTransitions = map[string][]string{
	enum.OrderStatusPending:   {enum.OrderStatusConfirmed, enum.OrderStatusCancelled},
	enum.OrderStatusConfirmed: {enum.OrderStatusCompleted, enum.OrderStatusCancelled, enum.OrderStatusScanned},
	enum.OrderStatusCompleted: {enum.OrderStatusScanned},
}

func transitionAllowed(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s *Server) placeOrder(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	var req struct {
		Items []struct {
			FoodID   int64 `json:"food_id"`
			Quantity int   `json:"quantity"`
		} `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "order must contain at least one item"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	items := make([]model.OrderItem, 0, len(req.Items))
	for _, in := range req.Items {
		if in.Quantity < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "item quantity must be at least 1"})
			return
		}
		f, ok := s.foods[in.FoodID]
		if !ok || !f.IsAvailable {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": fmt.Sprintf("food not available: %d", in.FoodID),
			})
			return
		}
		items = append(items, model.OrderItem{
			ID:        s.id(),
			FoodID:    f.ID,
			Name:      f.Name,
			Quantity:  in.Quantity,
			UnitPrice: f.Price,
		})
		total = total.Add(f.Price.Mul(decimal.NewFromInt(int64(in.Quantity))))
	}

	acct := s.accounts[claims.UserID]
	rec := &orderRecord{
		Order: model.Order{
			ID:           s.id(),
			Status:       enum.OrderStatusPending,
			TotalPrice:   total,
			CreatedAt:    time.Now(),
			CustomerName: claims.Name,
			Items:        items,
		},
		userID: claims.UserID,
	}
	if acct != nil {
		rec.Email = acct.Email
	}
	s.orders[rec.ID] = rec
	s.orderIDs = append(s.orderIDs, rec.ID)

	s.hub.broadcast(orderEvent(rec.ID, rec.Status))

	writeJSON(w, http.StatusCreated, map[string]int64{"order_id": rec.ID})
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	s.mu.Lock()
	out := make([]model.Order, 0)
	for i := len(s.orderIDs) - 1; i >= 0; i-- {
		rec := s.orders[s.orderIDs[i]]
		if rec.userID == claims.UserID {
			out = append(out, rec.Order)
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) cancelOrder(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	s.mu.Lock()
	rec, ok := s.orders[id]
	if !ok || rec.userID != claims.UserID {
		s.mu.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return
	}
	if rec.Status != enum.OrderStatusPending {
		s.mu.Unlock()
		writeJSON(w, http.StatusConflict, map[string]string{"error": "only pending orders can be cancelled"})
		return
	}
	rec.Status = enum.OrderStatusCancelled
	s.mu.Unlock()

	s.hub.broadcast(orderEvent(id, enum.OrderStatusCancelled))

	writeJSON(w, http.StatusOK, map[string]string{"message": "order cancelled"})
}

func (s *Server) listScannedOrders(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	s.mu.Lock()
	out := make([]model.Order, 0)
	for i := len(s.orderIDs) - 1; i >= 0; i-- {
		rec := s.orders[s.orderIDs[i]]
		if rec.userID == claims.UserID && rec.Status == enum.OrderStatusScanned {
			out = append(out, rec.Order)
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

// ── Admin ──

func (s *Server) adminListOrders(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]model.Order, 0, len(s.orderIDs))
	for i := len(s.orderIDs) - 1; i >= 0; i-- {
		out = append(out, s.orders[s.orderIDs[i]].Order)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) adminGetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	s.mu.Lock()
	rec, ok := s.orders[id]
	if !ok {
		s.mu.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return
	}
	out := rec.Order
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) adminUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	s.mu.Lock()
	rec, ok := s.orders[id]
	if !ok {
		s.mu.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return
	}
	if !transitionAllowed(rec.Status, req.Status) {
		s.mu.Unlock()
		writeJSON(w, http.StatusConflict, map[string]string{
			"error": fmt.Sprintf("cannot change status from %s to %s", rec.Status, req.Status),
		})
		return
	}
	rec.Status = req.Status
	out := rec.Order
	s.mu.Unlock()

	s.hub.broadcast(orderEvent(id, req.Status))

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) adminListScannedOrders(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]model.Order, 0)
	for i := len(s.orderIDs) - 1; i >= 0; i-- {
		rec := s.orders[s.orderIDs[i]]
		if rec.Status == enum.OrderStatusScanned {
			out = append(out, rec.Order)
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}
