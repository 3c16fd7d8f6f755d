// Package codec converts order and menu collections to and from the
// tab-delimited interchange format, tolerating comma-delimited and partially
// malformed input on the way back in.
package codec

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bakeshop/internal/domain"
)

// Human-facing layouts used only in the interchange format. Storage stays on
// the canonical layouts in the domain package.
const (
	displayDateLayout = "Monday, January 2, 2006"
	displayTimeLayout = "3:04 PM"
)

const ordersHeader = "Date\tTime\tOrder\tQuantity\tCost\tName\tStatus\tNotes\tSource"

// Result is the aggregate outcome of an import batch. Row failures are
// counted, never fatal.
type Result struct {
	Imported int
	Errors   int
}

// OrderWriter is the slice of the order repository an import batch needs.
type OrderWriter interface {
	Add(ctx context.Context, order domain.Order) error
	Refresh(ctx context.Context) error
}

// ExportOrders renders the collection as tab-separated text, one row per
// order, sorted by canonical pickup date ascending. Dates and times that fail
// to re-parse from storage form are emitted as their raw stored string.
func ExportOrders(orders []domain.Order) string {
	sorted := make([]domain.Order, len(orders))
	copy(sorted, orders)
	stableSortByDate(sorted)

	var b strings.Builder
	b.WriteString(ordersHeader)
	b.WriteByte('\n')

	for _, o := range sorted {
		row := []string{
			displayDate(o.PickupDate),
			displayTime(o.PickupTime),
			o.ItemName,
			strconv.Itoa(o.Quantity),
			"$" + o.Total.StringFixed(2),
			o.CustomerName,
			capitalize(string(o.Status)),
			o.Notes,
			o.Source,
		}
		b.WriteString(strings.Join(row, "\t"))
		b.WriteByte('\n')
	}

	return b.String()
}

// ImportOrders parses raw interchange text and submits each well-formed row
// as a new unpersisted order. The first line is discarded as a header. Rows
// with fewer than 8 fields, and rows the repository rejects, count as errors;
// the batch always runs to completion and ends with one repository refresh.
func ImportOrders(ctx context.Context, raw string, repo OrderWriter) Result {
	lines := strings.Split(raw, "\n")
	if len(lines) < 2 {
		return Result{}
	}

	var res Result
	for _, line := range lines[1:] {
		// Only the carriage return comes off; trailing tabs are empty
		// trailing fields, not padding.
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := splitRow(line)
		if len(fields) < 8 {
			res.Errors++
			continue
		}

		if err := repo.Add(ctx, orderFromFields(fields)); err != nil {
			res.Errors++
			continue
		}
		res.Imported++
	}

	// Refresh failures leave the optimistic rows in place; the live
	// subscription corrects them with its next snapshot.
	_ = repo.Refresh(ctx)

	return res
}

// orderFromFields maps one ≥8-field row onto an unpersisted order, defending
// every field with a default that passes validation. A row that made it past
// the field-count check always imports; only the repository itself can still
// refuse it.
func orderFromFields(fields []string) domain.Order {
	order := domain.Order{
		PickupDate:   parseDateField(fields[0]),
		PickupTime:   parseTimeField(fields[1]),
		ItemName:     fieldOr(fields, 2, "Unknown"),
		CustomerName: fieldOr(fields, 5, "Unknown"),
		Quantity:     1,
		Total:        decimal.Zero,
		Status:       domain.StatusPending,
		Notes:        fieldOr(fields, 7, ""),
		Source:       fieldOr(fields, 8, ""),
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	}

	if order.ItemName == "" {
		order.ItemName = "Unknown"
	}
	if order.CustomerName == "" {
		order.CustomerName = "Unknown"
	}

	if qty, err := strconv.Atoi(fields[3]); err == nil && qty >= 1 {
		order.Quantity = qty
	}

	if total, err := decimal.NewFromString(stripCurrency(fields[4])); err == nil && !total.IsNegative() {
		order.Total = total
	}

	// Foreign status text ("Shipped") falls back to pending rather than
	// erroring the row.
	if status, err := domain.ParseStatus(strings.ToLower(fields[6])); err == nil {
		order.Status = status
	}

	return order
}

// parseDateField tries the display layout, then the canonical layout, and
// keeps the raw text when neither matches.
func parseDateField(raw string) string {
	if t, err := time.Parse(displayDateLayout, raw); err == nil {
		return t.Format(domain.DateLayout)
	}
	if t, err := time.Parse(domain.DateLayout, raw); err == nil {
		return t.Format(domain.DateLayout)
	}
	return raw
}

// parseTimeField tries the 12-hour display layout, then the 24-hour canonical
// layout, and keeps the raw text when neither matches.
func parseTimeField(raw string) string {
	if t, err := time.Parse(displayTimeLayout, raw); err == nil {
		return t.Format(domain.TimeLayout)
	}
	if t, err := time.Parse(domain.TimeLayout, raw); err == nil {
		return t.Format(domain.TimeLayout)
	}
	return raw
}

func displayDate(canonical string) string {
	t, err := time.Parse(domain.DateLayout, canonical)
	if err != nil {
		return canonical
	}
	return t.Format(displayDateLayout)
}

func displayTime(canonical string) string {
	t, err := time.Parse(domain.TimeLayout, canonical)
	if err != nil {
		return canonical
	}
	return t.Format(displayTimeLayout)
}

func stripCurrency(raw string) string {
	return strings.TrimSpace(strings.ReplaceAll(raw, "$", ""))
}

func fieldOr(fields []string, i int, fallback string) string {
	if i < len(fields) {
		return fields[i]
	}
	return fallback
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func stableSortByDate(orders []domain.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].PickupDate < orders[j].PickupDate
	})
}
