package enum

// ── Roles (carried in the user payload and JWT claims) ──

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ── Order state machine (server-authoritative; the client only requests
// pay/cancel and re-fetches) ──

const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
	OrderStatusScanned   = "scanned"
)

// ── Payments ──

const (
	PaymentMethodCash   = "cash"
	PaymentMethodOnline = "online"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)
