package api

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fastorder/storefront/internal/model"
)

// Credentials is the login/register response.
type Credentials struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// OrderItemInput is one line of an order placement request.
type OrderItemInput struct {
	FoodID   int64 `json:"food_id"`
	Quantity int   `json:"quantity"`
}

// FoodInput is the create/update payload for a menu item.
type FoodInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImgURL      string          `json:"img_url"`
	IsAvailable bool            `json:"is_available"`
	CategoryID  int64           `json:"category_id"`
}

// PaymentInput is the payment creation payload.
type PaymentInput struct {
	OrderID int64           `json:"order_id"`
	Method  string          `json:"method"`
	Amount  decimal.Decimal `json:"amount"`
}

// ScanResult is the backend's verdict on a scanned ticket code.
type ScanResult struct {
	Message string `json:"message"`
	OrderID int64  `json:"order_id,omitempty"`
}

// ── Auth ──

func (c *Client) Login(ctx context.Context, email, password string) (Credentials, error) {
	var creds Credentials
	err := c.do(ctx, "POST", "/api/login", map[string]string{
		"email":    email,
		"password": password,
	}, &creds)
	return creds, err
}

func (c *Client) Register(ctx context.Context, name, email, password, phone string) (Credentials, error) {
	var creds Credentials
	err := c.do(ctx, "POST", "/api/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
		"phone":    phone,
	}, &creds)
	return creds, err
}

// ── Catalog ──

func (c *Client) Categories(ctx context.Context) ([]model.Category, error) {
	var out []model.Category
	err := c.do(ctx, "GET", "/api/categories", nil, &out)
	return out, err
}

// Foods lists the menu, optionally filtered by category (0 = all).
func (c *Client) Foods(ctx context.Context, categoryID int64) ([]model.Food, error) {
	path := "/api/foods"
	if categoryID != 0 {
		path = fmt.Sprintf("/api/foods?category_id=%d", categoryID)
	}
	var out []model.Food
	err := c.do(ctx, "GET", path, nil, &out)
	return out, err
}

func (c *Client) CreateFood(ctx context.Context, in FoodInput) (model.Food, error) {
	var out model.Food
	err := c.do(ctx, "POST", "/api/foods", in, &out)
	return out, err
}

func (c *Client) UpdateFood(ctx context.Context, id int64, in FoodInput) (model.Food, error) {
	var out model.Food
	err := c.do(ctx, "PUT", fmt.Sprintf("/api/foods/%d", id), in, &out)
	return out, err
}

func (c *Client) DeleteFood(ctx context.Context, id int64) error {
	return c.do(ctx, "DELETE", fmt.Sprintf("/api/foods/%d", id), nil, nil)
}

// ── Orders ──

// PlaceOrder submits the cart lines and returns the new order id.
func (c *Client) PlaceOrder(ctx context.Context, items []OrderItemInput) (int64, error) {
	var out struct {
		OrderID int64 `json:"order_id"`
	}
	err := c.do(ctx, "POST", "/api/orders", map[string]interface{}{"items": items}, &out)
	return out.OrderID, err
}

func (c *Client) Orders(ctx context.Context) ([]model.Order, error) {
	var out []model.Order
	err := c.do(ctx, "GET", "/api/orders", nil, &out)
	return out, err
}

func (c *Client) CancelOrder(ctx context.Context, orderID int64) error {
	return c.do(ctx, "DELETE", fmt.Sprintf("/api/orders/%d/cancel", orderID), nil, nil)
}

func (c *Client) ScannedOrders(ctx context.Context) ([]model.Order, error) {
	var out []model.Order
	err := c.do(ctx, "GET", "/api/scanned-orders", nil, &out)
	return out, err
}

// ── Payments & tickets ──

func (c *Client) CreatePayment(ctx context.Context, in PaymentInput) (model.Payment, error) {
	var out model.Payment
	err := c.do(ctx, "POST", "/api/payments", in, &out)
	return out, err
}

func (c *Client) PaymentByOrder(ctx context.Context, orderID int64) (model.Payment, error) {
	var out model.Payment
	err := c.do(ctx, "GET", fmt.Sprintf("/api/payments/order/%d", orderID), nil, &out)
	return out, err
}

func (c *Client) Ticket(ctx context.Context, orderID int64) (model.Ticket, error) {
	var out model.Ticket
	err := c.do(ctx, "GET", fmt.Sprintf("/api/tickets/%d", orderID), nil, &out)
	return out, err
}

// ── Admin ──

func (c *Client) AdminOrders(ctx context.Context) ([]model.Order, error) {
	var out []model.Order
	err := c.do(ctx, "GET", "/api/admin/orders", nil, &out)
	return out, err
}

func (c *Client) AdminOrder(ctx context.Context, orderID int64) (model.Order, error) {
	var out model.Order
	err := c.do(ctx, "GET", fmt.Sprintf("/api/admin/orders/%d", orderID), nil, &out)
	return out, err
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID int64, status string) (model.Order, error) {
	var out model.Order
	err := c.do(ctx, "PUT", fmt.Sprintf("/api/admin/orders/%d/status", orderID),
		map[string]string{"status": status}, &out)
	return out, err
}

// ConfirmedFoods aggregates ordered quantities per food across pending and
// confirmed orders.
func (c *Client) ConfirmedFoods(ctx context.Context) ([]model.ConfirmedFood, error) {
	var out []model.ConfirmedFood
	err := c.do(ctx, "GET", "/api/admin/foods-confirmed", nil, &out)
	return out, err
}

func (c *Client) AdminScannedOrders(ctx context.Context) ([]model.Order, error) {
	var out []model.Order
	err := c.do(ctx, "GET", "/api/admin/scanned-orders", nil, &out)
	return out, err
}

// ScanQR submits a decoded ticket code for validation.
func (c *Client) ScanQR(ctx context.Context, ticketCode string) (ScanResult, error) {
	var out ScanResult
	err := c.do(ctx, "POST", "/api/admin/scan-qr", map[string]string{"ticket_code": ticketCode}, &out)
	return out, err
}

// ── Users ──

func (c *Client) Users(ctx context.Context) ([]model.User, error) {
	var out []model.User
	err := c.do(ctx, "GET", "/api/users", nil, &out)
	return out, err
}

func (c *Client) UpdateUserRole(ctx context.Context, userID int64, role string) (model.User, error) {
	var out model.User
	err := c.do(ctx, "PUT", fmt.Sprintf("/api/users/%d/role", userID),
		map[string]string{"role": role}, &out)
	return out, err
}

func (c *Client) DeleteUser(ctx context.Context, userID int64) error {
	return c.do(ctx, "DELETE", fmt.Sprintf("/api/users/%d", userID), nil, nil)
}
