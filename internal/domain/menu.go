package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Category is the small closed set used by reporting. The zero value means
// the record predates the category field.
type Category string

const (
	CategoryNone    Category = ""
	CategoryCake    Category = "Cake"
	CategoryDessert Category = "Dessert"
	CategoryOther   Category = "Other"
)

// MenuItem represents a catalog offering. Name is not unique but acts as the
// natural key when aggregating order quantities.
type MenuItem struct {
	ID        string
	Name      string
	BasePrice decimal.Decimal
	Category  Category
}

func NewMenuItem(name string, basePrice decimal.Decimal, category Category) (*MenuItem, error) {
	item := &MenuItem{
		Name:      name,
		BasePrice: basePrice,
		Category:  category,
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	return item, nil
}

func (m *MenuItem) Validate() error {
	if m.Name == "" {
		return errors.New("item name is required")
	}

	if m.BasePrice.IsNegative() {
		return errors.New("base price must not be negative")
	}

	switch m.Category {
	case CategoryNone, CategoryCake, CategoryDessert, CategoryOther:
		return nil
	default:
		return errors.New("unknown category")
	}
}

// Record encodes the item as a remote document. The category key is omitted
// entirely when unset so legacy and new records stay interchangeable.
func (m MenuItem) Record() map[string]any {
	data := map[string]any{
		"name":      m.Name,
		"basePrice": m.BasePrice.String(),
	}
	if m.Category != CategoryNone {
		data["category"] = string(m.Category)
	}
	return data
}

// DecodeMenuItem rebuilds a catalog item from a remote document.
func DecodeMenuItem(id string, data map[string]any) (MenuItem, error) {
	item := MenuItem{ID: id}

	var err error
	if item.Name, err = stringField(data, "name"); err != nil {
		return MenuItem{}, err
	}
	if item.BasePrice, err = decimalField(data, "basePrice"); err != nil {
		return MenuItem{}, err
	}

	if raw, fieldErr := stringField(data, "category"); fieldErr == nil {
		item.Category = Category(raw)
	}

	return item, nil
}

// Classifier assigns a category to an item name. It backs reporting for
// legacy catalog entries that carry no category of their own.
type Classifier func(name string) Category

// Name lists carried over from the era before the catalog had a category
// field. Items absent from both lists fall through to Other.
var (
	legacyCakeNames = []string{
		`Chocolate Cake (6")`,
		`Red Velvet Cake (6")`,
		`Red Velvet Cake (8")`,
		`Sansrival Cake (6")`,
		`Sansrival Cake (8")`,
		`Ube Leche Flan Cake (6")`,
		`Ube Leche Flan Cake (8")`,
		`Ube Macapuno Cake (6")`,
		`Ube Macapuno Cake (8")`,
		`Custard Cake (8x8")`,
		`Custard Cake (9x13)`,
	}

	legacyDessertNames = []string{
		`Brownies (8x8")`,
		`Butterscotch Brownies (8x8")`,
		`Leche Flan`,
		`Cheese Rolls`,
		`Crinkles`,
		`Kuntsinta`,
		`Puto`,
	}
)

// DefaultClassifier returns the hardcoded name-list classifier.
func DefaultClassifier() Classifier {
	cakes := make(map[string]bool, len(legacyCakeNames))
	for _, name := range legacyCakeNames {
		cakes[name] = true
	}

	desserts := make(map[string]bool, len(legacyDessertNames))
	for _, name := range legacyDessertNames {
		desserts[name] = true
	}

	return func(name string) Category {
		switch {
		case cakes[name]:
			return CategoryCake
		case desserts[name]:
			return CategoryDessert
		default:
			return CategoryOther
		}
	}
}
