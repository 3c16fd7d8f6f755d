package interfaces

import "context"

// Collection names understood by the gateway.
const (
	CollectionOrders = "orders"
	CollectionMenu   = "menu"
)

// CollectionRef addresses one user's copy of one collection.
type CollectionRef struct {
	UserID     string
	Collection string
}

func OrdersRef(userID string) CollectionRef {
	return CollectionRef{UserID: userID, Collection: CollectionOrders}
}

func MenuRef(userID string) CollectionRef {
	return CollectionRef{UserID: userID, Collection: CollectionMenu}
}

// RemoteRecord is one stored document together with its server-assigned id.
type RemoteRecord struct {
	ID   string
	Data map[string]any
}

// Snapshot is a full point-in-time listing of a collection. Err is set when a
// refresh failed; Records is nil in that case.
type Snapshot struct {
	Records []RemoteRecord
	Err     error
}

// Gateway is the narrow contract over the remote document store. All calls
// are safe for concurrent use. Deleting an id that no longer exists is not a
// failure.
type Gateway interface {
	// Subscribe delivers the current full state immediately, then a fresh
	// snapshot after every remote change, until cancel is called or ctx ends.
	// Snapshots may arrive out of write-issue order; each one fully
	// determines collection state at its instant.
	Subscribe(ctx context.Context, ref CollectionRef) (<-chan Snapshot, func(), error)

	// Fetch is the one-shot form of the query Subscribe issues on attach.
	Fetch(ctx context.Context, ref CollectionRef) ([]RemoteRecord, error)

	Create(ctx context.Context, ref CollectionRef, data map[string]any) (string, error)
	Set(ctx context.Context, ref CollectionRef, id string, data map[string]any) error
	UpdateFields(ctx context.Context, ref CollectionRef, id string, fields map[string]any) error
	Delete(ctx context.Context, ref CollectionRef, id string) error
}
