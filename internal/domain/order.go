package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Canonical storage layouts. Display formats live in the tabular codec;
// everything persisted or compared uses these.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Order represents one customer purchase to be fulfilled.
type Order struct {
	ID           string
	ItemName     string
	CustomerName string
	Quantity     int
	Total        decimal.Decimal
	Notes        string
	Source       string
	Timestamp    string // RFC 3339 creation instant, set once
	PickupDate   string // YYYY-MM-DD
	PickupTime   string // HH:MM, 24-hour
	Status       Status
}

// NewOrder creates an unpersisted order. The remote store assigns the ID on
// the first successful write.
func NewOrder(itemName, customerName string, quantity int, total decimal.Decimal, notes, source, pickupDate, pickupTime string) (*Order, error) {
	order := &Order{
		ItemName:     itemName,
		CustomerName: customerName,
		Quantity:     quantity,
		Total:        total,
		Notes:        notes,
		Source:       source,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		PickupDate:   pickupDate,
		PickupTime:   pickupTime,
		Status:       StatusPending,
	}

	if err := order.Validate(); err != nil {
		return nil, err
	}

	return order, nil
}

// Validate applies business validation rules
func (o *Order) Validate() error {
	if o.ItemName == "" {
		return errors.New("item name is required")
	}

	if o.CustomerName == "" {
		return errors.New("customer name is required")
	}

	if o.Quantity < 1 {
		return errors.New("quantity must be positive")
	}

	if o.Total.IsNegative() {
		return errors.New("total must not be negative")
	}

	if !o.Status.Valid() {
		return ErrInvalidStatus
	}

	return nil
}

// Record encodes the order as a remote document. The ID travels outside the
// record, and the total travels as a string to keep cents exact.
func (o Order) Record() map[string]any {
	return map[string]any{
		"itemName":     o.ItemName,
		"customerName": o.CustomerName,
		"quantity":     o.Quantity,
		"total":        o.Total.String(),
		"notes":        o.Notes,
		"source":       o.Source,
		"timestamp":    o.Timestamp,
		"pickupDate":   o.PickupDate,
		"pickupTime":   o.PickupTime,
		"status":       string(o.Status),
	}
}

// DecodeOrder rebuilds an order from a remote document. Any missing or
// mistyped required field fails the whole record.
func DecodeOrder(id string, data map[string]any) (Order, error) {
	order := Order{ID: id}

	var err error
	if order.ItemName, err = stringField(data, "itemName"); err != nil {
		return Order{}, err
	}
	if order.CustomerName, err = stringField(data, "customerName"); err != nil {
		return Order{}, err
	}
	if order.Quantity, err = intField(data, "quantity"); err != nil {
		return Order{}, err
	}
	if order.Total, err = decimalField(data, "total"); err != nil {
		return Order{}, err
	}
	if order.PickupDate, err = stringField(data, "pickupDate"); err != nil {
		return Order{}, err
	}
	if order.PickupTime, err = stringField(data, "pickupTime"); err != nil {
		return Order{}, err
	}

	rawStatus, err := stringField(data, "status")
	if err != nil {
		return Order{}, err
	}
	if order.Status, err = ParseStatus(rawStatus); err != nil {
		return Order{}, err
	}

	// Optional free-text fields; absent means empty.
	order.Notes, _ = stringField(data, "notes")
	order.Source, _ = stringField(data, "source")
	order.Timestamp, _ = stringField(data, "timestamp")

	return order, nil
}

var (
	ErrInvalidStatus = errors.New("invalid order status")
	ErrMissingID     = errors.New("record has no identifier")
)
