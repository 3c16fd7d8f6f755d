package codec

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"bakeshop/internal/domain"
)

type fakeMenuRepo struct {
	added     []domain.MenuItem
	refreshed int
}

func (f *fakeMenuRepo) Add(ctx context.Context, item domain.MenuItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	f.added = append(f.added, item)
	return nil
}

func (f *fakeMenuRepo) Refresh(ctx context.Context) error {
	f.refreshed++
	return nil
}

func TestExportMenu(t *testing.T) {
	items := []domain.MenuItem{
		{Name: "Puto", BasePrice: decimal.RequireFromString("6"), Category: domain.CategoryDessert},
		{Name: "Leche Flan", BasePrice: decimal.RequireFromString("8.5")},
	}

	out := ExportMenu(items)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	if lines[0] != "Item Name\tBase Price" {
		t.Errorf("unexpected header: %q", lines[0])
	}
	if lines[1] != "Leche Flan\t$8.50" {
		t.Errorf("expected name-sorted first row, got %q", lines[1])
	}
	if lines[2] != "Puto\t$6.00" {
		t.Errorf("unexpected second row: %q", lines[2])
	}
	if strings.Contains(out, "Dessert") {
		t.Error("category must not appear in the interchange format")
	}
}

func TestImportMenu(t *testing.T) {
	raw := "Item Name\tBase Price\n" +
		"Ube Cake\t$30.00\n" +
		"Crinkles, 10.25\n" +
		"NoPriceRow\n" +
		"Mystery\tnot-a-price\n"

	repo := &fakeMenuRepo{}
	res := ImportMenu(context.Background(), raw, repo)

	if res.Imported != 3 || res.Errors != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if repo.refreshed != 1 {
		t.Errorf("expected one refresh, got %d", repo.refreshed)
	}

	if !repo.added[0].BasePrice.Equal(decimal.RequireFromString("30")) {
		t.Errorf("currency symbol must strip: %s", repo.added[0].BasePrice)
	}
	if !repo.added[1].BasePrice.Equal(decimal.RequireFromString("10.25")) {
		t.Errorf("comma row price wrong: %s", repo.added[1].BasePrice)
	}
	if !repo.added[2].BasePrice.IsZero() {
		t.Errorf("unparsable price must default to zero: %s", repo.added[2].BasePrice)
	}
	for _, item := range repo.added {
		if item.Category != domain.CategoryNone {
			t.Errorf("imported items carry no category, got %q", item.Category)
		}
		if item.ID != "" {
			t.Errorf("imported items are unpersisted, got id %q", item.ID)
		}
	}
}
