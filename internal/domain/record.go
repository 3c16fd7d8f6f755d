package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Field accessors for remote documents. JSON decoding hands us float64 for
// numbers; records written by older clients may carry totals as doubles
// instead of strings, so the numeric accessors take both.

func stringField(data map[string]any, key string) (string, error) {
	raw, ok := data[key]
	if !ok {
		return "", fmt.Errorf("field %q is missing", key)
	}

	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("field %q is not a string", key)
	}
	return s, nil
}

func intField(data map[string]any, key string) (int, error) {
	raw, ok := data[key]
	if !ok {
		return 0, fmt.Errorf("field %q is missing", key)
	}

	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("field %q is not a number", key)
	}
}

func decimalField(data map[string]any, key string) (decimal.Decimal, error) {
	raw, ok := data[key]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("field %q is missing", key)
	}

	switch v := raw.(type) {
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("field %q: %w", key, err)
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	default:
		return decimal.Decimal{}, fmt.Errorf("field %q is not a decimal", key)
	}
}
