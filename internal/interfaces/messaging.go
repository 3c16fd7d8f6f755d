package interfaces

import "context"

// ChangeEvent announces that one user's copy of one collection changed
// remotely. Events carry no payload; subscribers refetch.
type ChangeEvent struct {
	UserID     string `json:"user_id"`
	Collection string `json:"collection"`
}

// ChangeFeed fans collection-change events out to every subscriber. The
// gateway publishes after each successful write and consumes on behalf of
// its subscriptions.
type ChangeFeed interface {
	PublishChange(ctx context.Context, ref CollectionRef) error

	// SubscribeChanges delivers one (coalesced) tick per burst of matching
	// change events. The channel closes when cancel is called, ctx ends, or
	// the underlying transport drops.
	SubscribeChanges(ctx context.Context, ref CollectionRef) (<-chan struct{}, func(), error)
}
