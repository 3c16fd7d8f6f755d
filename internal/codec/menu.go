package codec

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"bakeshop/internal/domain"
)

const menuHeader = "Item Name\tBase Price"

// MenuWriter is the slice of the menu repository an import batch needs.
type MenuWriter interface {
	Add(ctx context.Context, item domain.MenuItem) error
	Refresh(ctx context.Context) error
}

// ExportMenu renders the catalog as two tab-separated columns, sorted by
// name. Category deliberately stays out of the format so files exchange
// cleanly with catalogs that predate it.
func ExportMenu(items []domain.MenuItem) string {
	sorted := make([]domain.MenuItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	var b strings.Builder
	b.WriteString(menuHeader)
	b.WriteByte('\n')

	for _, item := range sorted {
		b.WriteString(item.Name)
		b.WriteByte('\t')
		b.WriteString("$" + item.BasePrice.StringFixed(2))
		b.WriteByte('\n')
	}

	return b.String()
}

// ImportMenu parses raw interchange text and submits each well-formed row as
// a new unpersisted catalog item with no category. Rows with fewer than 2
// fields count as errors; unparsable prices fall back to zero.
func ImportMenu(ctx context.Context, raw string, repo MenuWriter) Result {
	lines := strings.Split(raw, "\n")
	if len(lines) < 2 {
		return Result{}
	}

	var res Result
	for _, line := range lines[1:] {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := splitRow(line)
		if len(fields) < 2 {
			res.Errors++
			continue
		}

		item := domain.MenuItem{
			Name:      fields[0],
			BasePrice: decimal.Zero,
			Category:  domain.CategoryNone,
		}
		if price, err := decimal.NewFromString(stripCurrency(fields[1])); err == nil {
			item.BasePrice = price
		}

		if err := repo.Add(ctx, item); err != nil {
			res.Errors++
			continue
		}
		res.Imported++
	}

	_ = repo.Refresh(ctx)

	return res
}
