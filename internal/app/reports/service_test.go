package reports

import (
	"testing"

	"github.com/shopspring/decimal"

	"bakeshop/internal/domain"
)

type fakeOrders struct{ orders []domain.Order }

func (f fakeOrders) Orders() []domain.Order { return f.orders }

type fakeMenu struct{ items []domain.MenuItem }

func (f fakeMenu) Items() []domain.MenuItem { return f.items }

func order(item string, qty int, total string, status domain.Status, source string) domain.Order {
	return domain.Order{
		ItemName:     item,
		CustomerName: "Tester",
		Quantity:     qty,
		Total:        decimal.RequireFromString(total),
		Status:       status,
		Source:       source,
	}
}

func TestSummaryTotals(t *testing.T) {
	svc := NewService(fakeOrders{orders: []domain.Order{
		order("Ube Cake", 2, "25.50", domain.StatusCompleted, "Instagram"),
		order("Leche Flan", 1, "12.00", domain.StatusPending, "Facebook"),
	}}, fakeMenu{}, nil)

	got := svc.Summary()

	if !got.Revenue.Equal(decimal.RequireFromString("25.50")) {
		t.Errorf("revenue = %s, want 25.50", got.Revenue)
	}
	if !got.Pipeline.Equal(decimal.RequireFromString("12.00")) {
		t.Errorf("pipeline = %s, want 12.00", got.Pipeline)
	}
	if got.TotalOrders != 2 {
		t.Errorf("total orders = %d, want 2", got.TotalOrders)
	}
	if !got.AverageValue.Equal(decimal.RequireFromString("18.75")) {
		t.Errorf("average = %s, want 18.75", got.AverageValue)
	}
}

func TestSummaryEmptyCollections(t *testing.T) {
	got := NewService(fakeOrders{}, fakeMenu{}, nil).Summary()

	if got.TotalOrders != 0 {
		t.Errorf("total orders = %d, want 0", got.TotalOrders)
	}
	if !got.AverageValue.IsZero() {
		t.Errorf("average over zero orders must be zero, got %s", got.AverageValue)
	}
}

func TestSummaryCategoryPrefersCatalog(t *testing.T) {
	menu := fakeMenu{items: []domain.MenuItem{
		// Explicit category wins even though the classifier knows nothing
		// about the name.
		{Name: "House Special", Category: domain.CategoryCake},
		// Legacy record with no category; the name-list classifier decides.
		{Name: "Puto"},
	}}
	svc := NewService(fakeOrders{orders: []domain.Order{
		order("House Special", 1, "30.00", domain.StatusPending, ""),
		order("Puto", 3, "6.00", domain.StatusPending, ""),
		order("Pancit Malabon", 1, "15.00", domain.StatusPending, ""),
	}}, menu, nil)

	got := svc.Summary()

	if len(got.Cakes) != 1 || got.Cakes[0].Name != "House Special" {
		t.Errorf("expected House Special under cakes, got %+v", got.Cakes)
	}
	if len(got.Desserts) != 1 || got.Desserts[0].Name != "Puto" || got.Desserts[0].Quantity != 3 {
		t.Errorf("expected Puto x3 under desserts, got %+v", got.Desserts)
	}
	if len(got.Other) != 1 || got.Other[0].Name != "Pancit Malabon" {
		t.Errorf("expected uncatalogued name under other, got %+v", got.Other)
	}
}

func TestSummaryAggregatesQuantitiesByName(t *testing.T) {
	svc := NewService(fakeOrders{orders: []domain.Order{
		order(`Brownies (8x8")`, 2, "10.00", domain.StatusPending, ""),
		order(`Brownies (8x8")`, 3, "15.00", domain.StatusCompleted, ""),
		order(`Leche Flan`, 1, "8.00", domain.StatusPending, ""),
	}}, fakeMenu{}, nil)

	got := svc.Summary()

	if len(got.Desserts) != 2 {
		t.Fatalf("expected 2 dessert entries, got %+v", got.Desserts)
	}
	// Quantity descending.
	if got.Desserts[0].Name != `Brownies (8x8")` || got.Desserts[0].Quantity != 5 {
		t.Errorf("expected Brownies x5 first, got %+v", got.Desserts[0])
	}
}

func TestSummarySources(t *testing.T) {
	svc := NewService(fakeOrders{orders: []domain.Order{
		order("A", 1, "1.00", domain.StatusPending, "Instagram"),
		order("B", 1, "1.00", domain.StatusPending, "Instagram"),
		order("C", 1, "1.00", domain.StatusPending, "Facebook"),
		order("D", 1, "1.00", domain.StatusPending, ""),
	}}, fakeMenu{}, nil)

	got := svc.Summary().Sources

	if len(got) != 3 {
		t.Fatalf("expected 3 sources, got %+v", got)
	}
	if got[0].Source != "Instagram" || got[0].Count != 2 {
		t.Errorf("expected Instagram x2 first, got %+v", got[0])
	}
	// Ties break by name ascending; the empty source sorts first.
	if got[1].Source != "" || got[2].Source != "Facebook" {
		t.Errorf("unexpected tie order: %+v", got)
	}
}

func TestSummaryCustomClassifier(t *testing.T) {
	everythingIsCake := func(name string) domain.Category { return domain.CategoryCake }
	svc := NewService(fakeOrders{orders: []domain.Order{
		order("Anything", 1, "5.00", domain.StatusPending, ""),
	}}, fakeMenu{}, everythingIsCake)

	got := svc.Summary()
	if len(got.Cakes) != 1 {
		t.Errorf("custom classifier ignored: %+v", got)
	}
}
