package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fastorder/storefront/internal/enum"
	"github.com/fastorder/storefront/internal/model"
)

func (s *Server) createPayment(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	var req struct {
		OrderID int64           `json:"order_id"`
		Method  string          `json:"method"`
		Amount  decimal.Decimal `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Method != enum.PaymentMethodCash && req.Method != enum.PaymentMethodOnline {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payment method"})
		return
	}

	s.mu.Lock()
	rec, ok := s.orders[req.OrderID]
	if !ok || rec.userID != claims.UserID {
		s.mu.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return
	}
	if rec.Status != enum.OrderStatusPending {
		s.mu.Unlock()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "order is not awaiting payment"})
		return
	}
	if !req.Amount.Equal(rec.TotalPrice) {
		s.mu.Unlock()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "amount does not match order total"})
		return
	}

	if s.paymentFailures > 0 {
		s.paymentFailures--
		s.mu.Unlock()
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "payment provider unavailable"})
		return
	}

	now := time.Now()
	payment := model.Payment{
		ID:      s.id(),
		OrderID: rec.ID,
		Method:  req.Method,
		Amount:  req.Amount,
		Status:  enum.PaymentStatusCompleted,
		PaidAt:  &now,
	}
	s.payments[rec.ID] = payment
	rec.Status = enum.OrderStatusConfirmed
	s.tickets[rec.ID] = model.Ticket{
		OrderID:    rec.ID,
		TicketCode: uuid.NewString(),
		IssuedAt:   now,
	}
	s.mu.Unlock()

	s.hub.broadcast(orderEvent(payment.OrderID, enum.OrderStatusConfirmed))

	writeJSON(w, http.StatusCreated, payment)
}

func (s *Server) paymentByOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	s.mu.Lock()
	payment, ok := s.payments[id]
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "payment not found"})
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

func (s *Server) getTicket(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	s.mu.Lock()
	ticket, ok := s.tickets[id]
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "ticket not found"})
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

func (s *Server) scanQR(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TicketCode string `json:"ticket_code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TicketCode == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "ticket_code is required"})
		return
	}

	s.mu.Lock()
	var rec *orderRecord
	for oid, ticket := range s.tickets {
		if ticket.TicketCode == req.TicketCode {
			rec = s.orders[oid]
			break
		}
	}
	if rec == nil {
		s.mu.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "ticket not found"})
		return
	}
	if rec.Status == enum.OrderStatusScanned {
		s.mu.Unlock()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "ticket already used"})
		return
	}
	rec.Status = enum.OrderStatusScanned
	orderID := rec.ID
	s.mu.Unlock()

	s.hub.broadcast(orderEvent(orderID, enum.OrderStatusScanned))

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  fmt.Sprintf("Ticket accepted for order #%d", orderID),
		"order_id": orderID,
	})
}
