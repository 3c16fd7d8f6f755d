package interfaces

import (
	"context"

	"bakeshop/internal/domain"
)

// OrderCollection is the order repository surface consumed by presentation,
// the tabular codec and reporting. Mutations apply optimistically and return
// before the remote write completes.
type OrderCollection interface {
	Subscribe(ctx context.Context, userID string) error
	Unsubscribe()
	Orders() []domain.Order
	Add(ctx context.Context, order domain.Order) error
	Update(ctx context.Context, order domain.Order) error
	UpdateStatus(ctx context.Context, orderID string, status domain.Status) error
	Delete(ctx context.Context, orderID string)
	Refresh(ctx context.Context) error
	Clear()
}

// MenuCollection is the catalog counterpart. Menu items have no status.
type MenuCollection interface {
	Subscribe(ctx context.Context, userID string) error
	Unsubscribe()
	Items() []domain.MenuItem
	Add(ctx context.Context, item domain.MenuItem) error
	Update(ctx context.Context, item domain.MenuItem) error
	Delete(ctx context.Context, itemID string)
	Refresh(ctx context.Context) error
	Clear()
}
