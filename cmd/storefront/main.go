// Command storefront is the FastOrder terminal client: browse the menu,
// build a cart, check out and pay, show the ticket QR, and run the admin
// screens including ticket scanning.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/fastorder/storefront/internal/api"
	"github.com/fastorder/storefront/internal/authz"
	"github.com/fastorder/storefront/internal/cart"
	"github.com/fastorder/storefront/internal/checkout"
	"github.com/fastorder/storefront/internal/config"
	"github.com/fastorder/storefront/internal/scan"
	"github.com/fastorder/storefront/internal/session"
	"github.com/fastorder/storefront/internal/storage"
	"github.com/fastorder/storefront/internal/view"
	"github.com/fastorder/storefront/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	store, err := storage.OpenFile(cfg.StatePath)
	if err != nil {
		log.Fatalf("open state file: %v", err)
	}

	sess := session.NewManager(store)
	crt := cart.New(store)

	client := api.New(cfg.APIBaseURL, sess,
		api.WithTimeout(cfg.HTTPTimeout),
		api.WithRetryPolicy(api.RetryPolicy{
			MaxAttempts: cfg.RetryAttempts,
			Delay:       cfg.RetryDelay,
		}),
	)
	app := &app{
		cfg:     cfg,
		api:     client,
		cart:    crt,
		session: sess,
		views:   view.New(client, crt, sess, cfg.TicketDir),
		scanner: scan.NewWorkflow(
			scan.NewDirProvider(cfg.TicketDir),
			scan.NewZXingDecoder(),
			client,
			cfg.ScanTimeout,
		),
		in: bufio.NewScanner(os.Stdin),
	}
	client.OnAuthExpired(func() {
		sess.Clear()
		crt.Clear()
		app.stopFeed()
		fmt.Println("\nYour session has expired. Please log in again.")
	})
	app.run(context.Background())
}

type app struct {
	cfg     *config.Config
	api     *api.Client
	cart    *cart.Cart
	session *session.Manager
	views   *view.Views
	scanner *scan.Workflow
	in      *bufio.Scanner
	feed    *ws.Feed
}

func (a *app) run(ctx context.Context) {
	out := os.Stdout
	a.startFeed(ctx)
	defer a.stopFeed()
	for {
		var sessPtr *session.Session
		if s, ok := a.session.Current(); ok {
			sessPtr = &s
			fmt.Fprintf(out, "\nLogged in as %s (%s)\n", s.Name, s.Role)
		} else {
			fmt.Fprintln(out, "\nNot logged in")
		}

		views := authz.Views(sessPtr)
		for i, v := range views {
			fmt.Fprintf(out, "  %d) %s\n", i+1, v)
		}
		if sessPtr != nil {
			fmt.Fprintln(out, "  l) logout")
		}
		fmt.Fprintln(out, "  q) quit")

		choice := a.prompt("> ")
		switch choice {
		case "q":
			return
		case "l":
			a.session.Clear()
			a.cart.Clear()
			a.stopFeed()
			continue
		}

		n, err := strconv.Atoi(choice)
		if err != nil || n < 1 || n > len(views) {
			fmt.Fprintln(out, "Unknown choice.")
			continue
		}
		a.open(ctx, views[n-1])
	}
}

func (a *app) open(ctx context.Context, v authz.View) {
	out := os.Stdout
	if !authz.Allowed(v, currentOrNil(a.session)) {
		fmt.Fprintln(out, "You do not have access to this page.")
		return
	}

	switch v {
	case authz.ViewCatalog:
		view.Show(out, "catalog", func() error { return a.catalog(ctx, out) })
	case authz.ViewLogin:
		a.login(ctx)
	case authz.ViewRegister:
		a.register(ctx)
	case authz.ViewCart:
		view.Show(out, "cart", func() error { return a.cartScreen(ctx, out) })
	case authz.ViewOrders:
		view.Show(out, "orders", func() error { return a.orders(ctx, out) })
	case authz.ViewScannedOrders:
		view.Show(out, "scanned orders", func() error { return a.views.ScannedOrders(ctx, out) })
	case authz.ViewTicket:
		view.Show(out, "ticket", func() error {
			orderID := a.promptInt("Order id: ")
			return a.views.Ticket(ctx, out, orderID)
		})
	case authz.ViewAdminFoods:
		view.Show(out, "admin foods", func() error {
			if err := a.views.AdminFoods(ctx, out); err != nil {
				return err
			}
			return a.views.ConfirmedFoods(ctx, out)
		})
	case authz.ViewAdminOrders:
		view.Show(out, "admin orders", func() error { return a.adminOrders(ctx, out) })
	case authz.ViewAdminUsers:
		view.Show(out, "admin users", func() error { return a.adminUsers(ctx, out) })
	case authz.ViewAdminScannedOrders:
		view.Show(out, "admin scanned orders", func() error { return a.views.AdminScannedOrders(ctx, out) })
	case authz.ViewAdminScan:
		view.Show(out, "scan", func() error { return a.views.Scan(ctx, out, a.scanner, "") })
	}
}

func (a *app) catalog(ctx context.Context, out *os.File) error {
	if err := a.views.Catalog(ctx, out, 0); err != nil {
		return err
	}
	if _, ok := a.session.Current(); !ok {
		return nil
	}

	raw := a.prompt("Add food id (enter to skip): ")
	if raw == "" {
		return nil
	}
	foodID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	foods, err := a.api.Foods(ctx, 0)
	if err != nil {
		return err
	}
	for _, f := range foods {
		if f.ID == foodID && f.IsAvailable {
			a.cart.Add(f)
			fmt.Fprintf(out, "Added %s.\n", f.Name)
			return nil
		}
	}
	fmt.Fprintln(out, "No such item.")
	return nil
}

func (a *app) cartScreen(ctx context.Context, out *os.File) error {
	if err := a.views.Cart(out); err != nil {
		return err
	}
	if a.cart.Count() == 0 {
		return nil
	}

	raw := a.prompt("c) checkout, +id/-id adjust, rm id remove, enter to go back: ")
	switch {
	case raw == "" || raw == "b":
		return nil
	case raw == "c":
		return a.checkout(ctx, out)
	case strings.HasPrefix(raw, "+"):
		if id, err := strconv.ParseInt(raw[1:], 10, 64); err == nil {
			a.cart.Increase(id)
		}
	case strings.HasPrefix(raw, "-"):
		if id, err := strconv.ParseInt(raw[1:], 10, 64); err == nil {
			a.cart.Decrease(id)
		}
	case strings.HasPrefix(raw, "rm "):
		if id, err := strconv.ParseInt(strings.TrimSpace(raw[3:]), 10, 64); err == nil {
			a.cart.Remove(id)
		}
	}
	return a.views.Cart(out)
}

func (a *app) checkout(ctx context.Context, out *os.File) error {
	flow := checkout.NewFlow(a.api, a.cart)
	if err := flow.Begin(); err != nil {
		return err
	}

	fmt.Fprintf(out, "Order total: %s\n", flow.Total().StringFixed(0))
	if a.prompt("Place order? (y/n): ") != "y" {
		return flow.Cancel()
	}

	if err := flow.Confirm(ctx); err != nil {
		return err
	}
	fmt.Fprintf(out, "Order #%d placed.\n", flow.OrderID())

	method := a.prompt("Pay by (cash/online): ")
	if err := flow.Pay(ctx, method); err != nil {
		return err
	}

	fmt.Fprintf(out, "Paid. Ticket code: %s\n", flow.Ticket().TicketCode)
	if err := a.views.Ticket(ctx, out, flow.OrderID()); err != nil {
		return err
	}
	return flow.Close()
}

func (a *app) orders(ctx context.Context, out *os.File) error {
	if err := a.views.Orders(ctx, out); err != nil {
		return err
	}
	raw := a.prompt("Cancel order id (enter to skip): ")
	if raw == "" {
		return nil
	}
	orderID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	if err := a.api.CancelOrder(ctx, orderID); err != nil {
		return err
	}
	fmt.Fprintf(out, "Order #%d cancelled.\n", orderID)
	return nil
}

func (a *app) adminOrders(ctx context.Context, out *os.File) error {
	if err := a.views.AdminOrders(ctx, out); err != nil {
		return err
	}
	raw := a.prompt("Order id for detail/status (enter to skip): ")
	if raw == "" {
		return nil
	}
	orderID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	if err := a.views.AdminOrderDetail(ctx, out, orderID); err != nil {
		return err
	}

	status := a.prompt("New status (enter to skip): ")
	if status == "" {
		return nil
	}
	updated, err := a.api.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Order #%d is now %s.\n", updated.ID, updated.Status)
	return nil
}

func (a *app) adminUsers(ctx context.Context, out *os.File) error {
	if err := a.views.AdminUsers(ctx, out); err != nil {
		return err
	}
	raw := a.prompt("User id to change role (enter to skip): ")
	if raw == "" {
		return nil
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	role := a.prompt("New role (user/admin): ")
	updated, err := a.api.UpdateUserRole(ctx, userID, role)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s is now %s.\n", updated.Name, updated.Role)
	return nil
}

// startFeed subscribes to live order status updates for the current session.
// A feed failure only costs the live updates, never the session.
func (a *app) startFeed(ctx context.Context) {
	if a.feed != nil {
		return
	}
	token := a.session.Token()
	if token == "" {
		return
	}

	feed, err := ws.Dial(ctx, a.cfg.APIBaseURL, token)
	if err != nil {
		log.Printf("ERROR: connect order feed: %v", err)
		return
	}
	a.feed = feed

	go func() {
		for e := range feed.Events() {
			if e.Type != "order_status" {
				continue
			}
			var p ws.OrderStatusPayload
			if err := json.Unmarshal(e.Payload, &p); err != nil {
				log.Printf("ERROR: decode order event: %v", err)
				continue
			}
			fmt.Printf("\n[update] Order #%d is now %s\n", p.OrderID, p.Status)
		}
	}()
}

func (a *app) stopFeed() {
	if a.feed == nil {
		return
	}
	if err := a.feed.Close(); err != nil {
		log.Printf("ERROR: close order feed: %v", err)
	}
	a.feed = nil
}

func (a *app) login(ctx context.Context) {
	email := a.prompt("Email: ")
	password := a.prompt("Password: ")

	creds, err := a.api.Login(ctx, email, password)
	if err != nil {
		fmt.Println(view.Describe(err))
		return
	}
	if err := a.session.Begin(creds.Token, creds.User); err != nil {
		log.Printf("ERROR: persist session: %v", err)
	}
	a.startFeed(ctx)
	fmt.Printf("Welcome back, %s.\n", creds.User.Name)
}

func (a *app) register(ctx context.Context) {
	name := a.prompt("Name: ")
	email := a.prompt("Email: ")
	password := a.prompt("Password: ")
	phone := a.prompt("Phone (optional): ")

	creds, err := a.api.Register(ctx, name, email, password, phone)
	if err != nil {
		fmt.Println(view.Describe(err))
		return
	}
	if err := a.session.Begin(creds.Token, creds.User); err != nil {
		log.Printf("ERROR: persist session: %v", err)
	}
	a.startFeed(ctx)
	fmt.Printf("Welcome, %s.\n", creds.User.Name)
}

func (a *app) prompt(label string) string {
	fmt.Print(label)
	if !a.in.Scan() {
		return "q"
	}
	return strings.TrimSpace(a.in.Text())
}

func (a *app) promptInt(label string) int64 {
	n, _ := strconv.ParseInt(a.prompt(label), 10, 64)
	return n
}

func currentOrNil(m *session.Manager) *session.Session {
	if s, ok := m.Current(); ok {
		return &s
	}
	return nil
}
