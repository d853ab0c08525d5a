package ws_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/fastorder/storefront/internal/api"
	"github.com/fastorder/storefront/internal/apitest"
	"github.com/fastorder/storefront/internal/enum"
	"github.com/fastorder/storefront/internal/ws"
)

type staticToken string

func (t staticToken) Token() string { return string(t) }

func TestFeedDeliversOrderEvents(t *testing.T) {
	srv := apitest.New(t)
	cat := srv.SeedCategory("Mains")
	food := srv.SeedFood("Nasi Goreng", 20000, cat.ID)
	srv.SeedUser("Budi", "budi@example.com", "secret123", enum.RoleUser)

	ctx := context.Background()
	c := api.New(srv.URL(), nil)
	creds, err := c.Login(ctx, "budi@example.com", "secret123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	feed, err := ws.Dial(ctx, srv.URL(), creds.Token)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer feed.Close()

	user := api.New(srv.URL(), staticToken(creds.Token))
	orderID, err := user.PlaceOrder(ctx, []api.OrderItemInput{{FoodID: food.ID, Quantity: 1}})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	select {
	case e := <-feed.Events():
		if e.Type != "order_status" {
			t.Fatalf("unexpected event type %q", e.Type)
		}
		var payload ws.OrderStatusPayload
		if err := json.Unmarshal(e.Payload, &payload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if payload.OrderID != orderID || payload.Status != enum.OrderStatusPending {
			t.Errorf("unexpected payload: %+v", payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}

func TestFeedRejectsBadToken(t *testing.T) {
	srv := apitest.New(t)

	if _, err := ws.Dial(context.Background(), srv.URL(), "garbage"); err == nil {
		t.Fatal("expected dial to fail with an invalid token")
	}
}

func TestFeedCloseEndsEvents(t *testing.T) {
	srv := apitest.New(t)
	srv.SeedUser("Budi", "budi@example.com", "secret123", enum.RoleUser)

	ctx := context.Background()
	c := api.New(srv.URL(), nil)
	creds, err := c.Login(ctx, "budi@example.com", "secret123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	feed, err := ws.Dial(ctx, srv.URL(), creds.Token)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	feed.Close()

	select {
	case _, ok := <-feed.Events():
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("events channel not closed")
	}
}
