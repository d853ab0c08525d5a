package cart_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fastorder/storefront/internal/cart"
	"github.com/fastorder/storefront/internal/model"
	"github.com/fastorder/storefront/internal/storage"
)

func food(id int64, name string, price int64) model.Food {
	return model.Food{ID: id, Name: name, Price: decimal.NewFromInt(price), IsAvailable: true}
}

func TestAddSameFoodTwiceMergesLines(t *testing.T) {
	c := cart.New(storage.NewMemory())

	comTam := food(1, "Com Tam", 20000)
	c.Add(comTam)
	c.Add(comTam)

	lines := c.Lines()
	if len(lines) != 1 {
		t.Fatalf("lines: got %d, want 1", len(lines))
	}
	if lines[0].Quantity != 2 {
		t.Errorf("quantity: got %d, want 2", lines[0].Quantity)
	}
	if !c.Total().Equal(decimal.NewFromInt(40000)) {
		t.Errorf("total: got %s, want 40000", c.Total())
	}
}

func TestTotalMatchesSumOverLines(t *testing.T) {
	c := cart.New(storage.NewMemory())

	c.Add(food(1, "Pho Bo", 45000))
	c.Add(food(2, "Tra Da", 5000))
	c.Add(food(1, "Pho Bo", 45000))
	c.Increase(2)
	c.Increase(2)

	want := decimal.Zero
	for _, l := range c.Lines() {
		want = want.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	if !c.Total().Equal(want) {
		t.Errorf("total: got %s, want %s", c.Total(), want)
	}
	if c.Count() != 5 {
		t.Errorf("count: got %d, want 5", c.Count())
	}
}

func TestDecreaseFloorsAtOne(t *testing.T) {
	c := cart.New(storage.NewMemory())
	c.Add(food(1, "Banh Mi", 15000))

	c.Decrease(1)
	c.Decrease(1)

	lines := c.Lines()
	if len(lines) != 1 {
		t.Fatalf("decrease must never remove a line; got %d lines", len(lines))
	}
	if lines[0].Quantity != 1 {
		t.Errorf("quantity: got %d, want 1", lines[0].Quantity)
	}
}

func TestIncreaseAddsExactlyOne(t *testing.T) {
	c := cart.New(storage.NewMemory())
	c.Add(food(1, "Banh Mi", 15000))

	c.Increase(1)

	if got := c.Lines()[0].Quantity; got != 2 {
		t.Errorf("quantity: got %d, want 2", got)
	}
}

func TestRemoveDeletesLine(t *testing.T) {
	c := cart.New(storage.NewMemory())
	c.Add(food(1, "Banh Mi", 15000))
	c.Add(food(2, "Tra Da", 5000))

	c.Remove(1)

	lines := c.Lines()
	if len(lines) != 1 || lines[0].FoodID != 2 {
		t.Errorf("lines after remove: got %+v", lines)
	}
}

func TestClearEmptiesCartAndStorage(t *testing.T) {
	store := storage.NewMemory()
	c := cart.New(store)
	c.Add(food(1, "Banh Mi", 15000))

	c.Clear()

	if c.Count() != 0 {
		t.Errorf("count after clear: got %d, want 0", c.Count())
	}
	raw, ok := store.Get(storage.KeyCart)
	if !ok {
		t.Fatal("expected cart key in storage after clear")
	}
	var persisted []cart.Line
	if err := json.Unmarshal([]byte(raw), &persisted); err != nil {
		t.Fatalf("decode persisted cart: %v", err)
	}
	if len(persisted) != 0 {
		t.Errorf("persisted cart after clear: got %d lines, want 0", len(persisted))
	}
}

func TestEveryMutationPersists(t *testing.T) {
	store := storage.NewMemory()
	c := cart.New(store)

	c.Add(food(1, "Pho Bo", 45000))
	c.Increase(1)
	c.Decrease(1)

	raw, _ := store.Get(storage.KeyCart)
	var persisted []cart.Line
	if err := json.Unmarshal([]byte(raw), &persisted); err != nil {
		t.Fatalf("decode persisted cart: %v", err)
	}
	if len(persisted) != 1 || persisted[0].Quantity != 1 {
		t.Errorf("persisted: got %+v", persisted)
	}
}

func TestNewLoadsPersistedCart(t *testing.T) {
	store := storage.NewMemory()
	first := cart.New(store)
	first.Add(food(1, "Pho Bo", 45000))
	first.Add(food(1, "Pho Bo", 45000))

	second := cart.New(store)
	lines := second.Lines()
	if len(lines) != 1 || lines[0].Quantity != 2 {
		t.Errorf("reloaded cart: got %+v", lines)
	}
	if !second.Total().Equal(decimal.NewFromInt(90000)) {
		t.Errorf("reloaded total: got %s, want 90000", second.Total())
	}
}

func TestNewDiscardsCorruptPersistedCart(t *testing.T) {
	store := storage.NewMemory()
	if err := store.Set(storage.KeyCart, "{not json"); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	c := cart.New(store)
	if c.Count() != 0 {
		t.Errorf("count: got %d, want 0", c.Count())
	}
}
