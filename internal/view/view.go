package view

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/fastorder/storefront/internal/api"
	"github.com/fastorder/storefront/internal/cart"
	"github.com/fastorder/storefront/internal/session"
	"github.com/fastorder/storefront/internal/ticket"
)

// Views renders every storefront screen to a writer.
type Views struct {
	api       *api.Client
	cart      *cart.Cart
	session   *session.Manager
	ticketDir string
}

// New wires the view layer.
func New(client *api.Client, c *cart.Cart, sess *session.Manager, ticketDir string) *Views {
	return &Views{api: client, cart: c, session: sess, ticketDir: ticketDir}
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

// Catalog shows the menu, optionally filtered by category (0 = all).
func (v *Views) Catalog(ctx context.Context, w io.Writer, categoryID int64) error {
	categories, err := v.api.Categories(ctx)
	if err != nil {
		return err
	}
	foods, err := v.api.Foods(ctx, categoryID)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "Menu")
	if len(categories) > 0 {
		fmt.Fprint(w, "Categories:")
		for _, c := range categories {
			fmt.Fprintf(w, " [%d] %s", c.ID, c.Name)
		}
		fmt.Fprintln(w)
	}

	tw := table(w)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tCATEGORY")
	for _, f := range foods {
		if !f.IsAvailable {
			continue
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", f.ID, f.Name, f.Price.StringFixed(0), f.CategoryName)
	}
	return tw.Flush()
}

// Cart shows the current cart contents and total.
func (v *Views) Cart(w io.Writer) error {
	lines := v.cart.Lines()
	if len(lines) == 0 {
		fmt.Fprintln(w, "Your cart is empty.")
		return nil
	}

	tw := table(w)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tPRICE\tSUBTOTAL")
	for _, line := range lines {
		subtotal := line.UnitPrice.Mul(decimalFromInt(line.Quantity))
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n",
			line.FoodID, line.Name, line.Quantity, line.UnitPrice.StringFixed(0), subtotal.StringFixed(0))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "Total: %s\n", v.cart.Total().StringFixed(0))
	return nil
}

// Orders shows the customer's order history, newest first.
func (v *Views) Orders(ctx context.Context, w io.Writer) error {
	orders, err := v.api.Orders(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Fprintln(w, "No orders yet.")
		return nil
	}

	tw := table(w)
	fmt.Fprintln(tw, "ORDER\tSTATUS\tTOTAL\tPLACED")
	for _, o := range orders {
		fmt.Fprintf(tw, "#%d\t%s\t%s\t%s\n",
			o.ID, o.Status, o.TotalPrice.StringFixed(0), o.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

// Ticket shows the payment and ticket for a paid order and saves the QR
// image next to the state file.
func (v *Views) Ticket(ctx context.Context, w io.Writer, orderID int64) error {
	payment, err := v.api.PaymentByOrder(ctx, orderID)
	if err != nil {
		return err
	}
	tk, err := v.api.Ticket(ctx, orderID)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Order #%d\n", orderID)
	fmt.Fprintf(w, "Paid %s via %s (%s)\n", payment.Amount.StringFixed(0), payment.Method, payment.Status)
	fmt.Fprintf(w, "Ticket code: %s\n", tk.TicketCode)

	path, err := ticket.SaveQR(v.ticketDir, tk.TicketCode, orderID)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "QR saved to %s\n", path)
	return nil
}

// ScannedOrders shows the customer's redeemed tickets.
func (v *Views) ScannedOrders(ctx context.Context, w io.Writer) error {
	orders, err := v.api.ScannedOrders(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Fprintln(w, "No scanned tickets yet.")
		return nil
	}

	tw := table(w)
	fmt.Fprintln(tw, "ORDER\tTOTAL\tPLACED")
	for _, o := range orders {
		fmt.Fprintf(tw, "#%d\t%s\t%s\n", o.ID, o.TotalPrice.StringFixed(0), o.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}
