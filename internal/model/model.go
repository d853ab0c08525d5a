// Package model holds the wire types exchanged with the FastOrder backend.
// Monetary values are decimals and serialize as JSON strings.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category is a food category.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Food is a menu item.
type Food struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	ImgURL       string          `json:"img_url"`
	IsAvailable  bool            `json:"is_available"`
	CategoryID   int64           `json:"category_id"`
	CategoryName string          `json:"category_name,omitempty"`
}

// OrderItem is one line of a placed order.
type OrderItem struct {
	ID        int64           `json:"id"`
	FoodID    int64           `json:"food_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Order is the client's read-only projection of a server-owned order.
// CustomerName and Email are only populated on admin endpoints.
type Order struct {
	ID           int64           `json:"id"`
	Status       string          `json:"status"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	CreatedAt    time.Time       `json:"created_at"`
	CustomerName string          `json:"customer_name,omitempty"`
	Email        string          `json:"email,omitempty"`
	Items        []OrderItem     `json:"items,omitempty"`
}

// Payment records one payment attempt against an order.
type Payment struct {
	ID      int64           `json:"id"`
	OrderID int64           `json:"order_id"`
	Method  string          `json:"method"`
	Amount  decimal.Decimal `json:"amount"`
	Status  string          `json:"status"`
	PaidAt  *time.Time      `json:"paid_at"`
}

// Ticket proves a paid order; TicketCode is rendered as a QR code and
// redeemed at the pickup counter.
type Ticket struct {
	OrderID    int64     `json:"order_id"`
	TicketCode string    `json:"ticket_code"`
	IssuedAt   time.Time `json:"issued_at"`
}

// User is an account as returned by the backend.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ConfirmedFood aggregates quantities ordered per food across pending and
// confirmed orders (admin dashboard).
type ConfirmedFood struct {
	FoodID        int64  `json:"food_id"`
	Name          string `json:"name"`
	TotalQuantity int    `json:"total_quantity"`
}
