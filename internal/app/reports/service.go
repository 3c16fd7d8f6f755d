package reports

import (
	"sort"

	"github.com/shopspring/decimal"

	"bakeshop/internal/domain"
)

// OrderSource and MenuSource are the read-only views of the repositories this
// service aggregates over.
type OrderSource interface {
	Orders() []domain.Order
}

type MenuSource interface {
	Items() []domain.MenuItem
}

type ItemCount struct {
	Name     string
	Quantity int
}

type SourceCount struct {
	Source string
	Count  int
}

// Summary is the sales report over the current collections.
type Summary struct {
	Revenue      decimal.Decimal // completed orders
	Pipeline     decimal.Decimal // pending orders
	TotalOrders  int
	AverageValue decimal.Decimal
	Cakes        []ItemCount
	Desserts     []ItemCount
	Other        []ItemCount
	Sources      []SourceCount
}

type Service struct {
	orders   OrderSource
	menu     MenuSource
	classify domain.Classifier
}

// NewService builds the report service. A nil classifier falls back to the
// hardcoded legacy name lists.
func NewService(orders OrderSource, menu MenuSource, classify domain.Classifier) *Service {
	if classify == nil {
		classify = domain.DefaultClassifier()
	}
	return &Service{
		orders:   orders,
		menu:     menu,
		classify: classify,
	}
}

// Summary aggregates the current order and menu collections. Order item names
// join the catalog by name only; an order whose item has no catalog entry is
// categorized by the fallback classifier.
func (s *Service) Summary() Summary {
	orders := s.orders.Orders()
	items := s.menu.Items()

	out := Summary{
		Revenue:     decimal.Zero,
		Pipeline:    decimal.Zero,
		TotalOrders: len(orders),
	}

	quantities := make(map[string]int)
	sources := make(map[string]int)

	for _, o := range orders {
		switch o.Status {
		case domain.StatusCompleted:
			out.Revenue = out.Revenue.Add(o.Total)
		case domain.StatusPending:
			out.Pipeline = out.Pipeline.Add(o.Total)
		}
		quantities[o.ItemName] += o.Quantity
		sources[o.Source]++
	}

	out.AverageValue = decimal.Zero
	if out.TotalOrders > 0 {
		out.AverageValue = out.Revenue.Add(out.Pipeline).
			DivRound(decimal.NewFromInt(int64(out.TotalOrders)), 2)
	}

	for name, qty := range quantities {
		count := ItemCount{Name: name, Quantity: qty}
		switch s.categorize(name, items) {
		case domain.CategoryCake:
			out.Cakes = append(out.Cakes, count)
		case domain.CategoryDessert:
			out.Desserts = append(out.Desserts, count)
		default:
			out.Other = append(out.Other, count)
		}
	}

	sortItemCounts(out.Cakes)
	sortItemCounts(out.Desserts)
	sortItemCounts(out.Other)

	for source, count := range sources {
		out.Sources = append(out.Sources, SourceCount{Source: source, Count: count})
	}
	sort.Slice(out.Sources, func(i, j int) bool {
		if out.Sources[i].Count == out.Sources[j].Count {
			return out.Sources[i].Source < out.Sources[j].Source
		}
		return out.Sources[i].Count > out.Sources[j].Count
	})

	return out
}

// categorize prefers the catalog entry's own category; legacy entries without
// one, and item names with no catalog entry at all, go through the fallback
// classifier.
func (s *Service) categorize(name string, items []domain.MenuItem) domain.Category {
	for _, item := range items {
		if item.Name == name {
			if item.Category != domain.CategoryNone {
				return item.Category
			}
			break
		}
	}
	return s.classify(name)
}

// Sorted by quantity descending; name ascending breaks ties so output is
// stable across map iteration order.
func sortItemCounts(counts []ItemCount) {
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Quantity == counts[j].Quantity {
			return counts[i].Name < counts[j].Name
		}
		return counts[i].Quantity > counts[j].Quantity
	})
}
