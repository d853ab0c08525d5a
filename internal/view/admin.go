package view

import (
	"context"
	"fmt"
	"io"

	"github.com/fastorder/storefront/internal/scan"
)

// AdminFoods shows the full menu, including unavailable items.
func (v *Views) AdminFoods(ctx context.Context, w io.Writer) error {
	foods, err := v.api.Foods(ctx, 0)
	if err != nil {
		return err
	}

	tw := table(w)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tCATEGORY\tAVAILABLE")
	for _, f := range foods {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%t\n",
			f.ID, f.Name, f.Price.StringFixed(0), f.CategoryName, f.IsAvailable)
	}
	return tw.Flush()
}

// ConfirmedFoods shows what the kitchen still has to prepare.
func (v *Views) ConfirmedFoods(ctx context.Context, w io.Writer) error {
	foods, err := v.api.ConfirmedFoods(ctx)
	if err != nil {
		return err
	}
	if len(foods) == 0 {
		fmt.Fprintln(w, "Nothing to prepare.")
		return nil
	}

	tw := table(w)
	fmt.Fprintln(tw, "FOOD\tQUANTITY")
	for _, f := range foods {
		fmt.Fprintf(tw, "%s\t%d\n", f.Name, f.TotalQuantity)
	}
	return tw.Flush()
}

// AdminOrders shows every order with customer details.
func (v *Views) AdminOrders(ctx context.Context, w io.Writer) error {
	orders, err := v.api.AdminOrders(ctx)
	if err != nil {
		return err
	}

	tw := table(w)
	fmt.Fprintln(tw, "ORDER\tCUSTOMER\tSTATUS\tTOTAL\tPLACED")
	for _, o := range orders {
		fmt.Fprintf(tw, "#%d\t%s\t%s\t%s\t%s\n",
			o.ID, o.CustomerName, o.Status, o.TotalPrice.StringFixed(0), o.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

// AdminOrderDetail shows one order with its items.
func (v *Views) AdminOrderDetail(ctx context.Context, w io.Writer, orderID int64) error {
	o, err := v.api.AdminOrder(ctx, orderID)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Order #%d by %s (%s)\n", o.ID, o.CustomerName, o.Status)
	tw := table(w)
	fmt.Fprintln(tw, "ITEM\tQTY\tPRICE")
	for _, item := range o.Items {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", item.Name, item.Quantity, item.UnitPrice.StringFixed(0))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "Total: %s\n", o.TotalPrice.StringFixed(0))
	return nil
}

// AdminUsers shows every account.
func (v *Views) AdminUsers(ctx context.Context, w io.Writer) error {
	users, err := v.api.Users(ctx)
	if err != nil {
		return err
	}

	tw := table(w)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE")
	for _, u := range users {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role)
	}
	return tw.Flush()
}

// AdminScannedOrders shows every redeemed ticket.
func (v *Views) AdminScannedOrders(ctx context.Context, w io.Writer) error {
	orders, err := v.api.AdminScannedOrders(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Fprintln(w, "No scanned tickets yet.")
		return nil
	}

	tw := table(w)
	fmt.Fprintln(tw, "ORDER\tCUSTOMER\tEMAIL\tTOTAL")
	for _, o := range orders {
		fmt.Fprintf(tw, "#%d\t%s\t%s\t%s\n", o.ID, o.CustomerName, o.Email, o.TotalPrice.StringFixed(0))
	}
	return tw.Flush()
}

// Scan runs one scanning session and prints the verdict. Camera and decode
// failures become operator-facing messages rather than errors.
func (v *Views) Scan(ctx context.Context, w io.Writer, workflow *scan.Workflow, deviceID string) error {
	fmt.Fprintln(w, "Point the camera at the ticket QR code.")

	result, err := workflow.Run(ctx, deviceID)
	if err != nil {
		if msg := scan.UserMessage(err); msg != "" && !isAPIError(err) {
			fmt.Fprintln(w, msg)
			return nil
		}
		return err
	}

	fmt.Fprintln(w, result.Message)
	return nil
}
