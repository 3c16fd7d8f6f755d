package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"bakeshop/internal/adapter/logger"
	"bakeshop/internal/interfaces"
)

// Gateway stores each user's collections as JSONB documents and pushes
// snapshots to subscribers: a change event after every write tells each
// subscription to refetch its collection and emit the fresh listing.
type Gateway struct {
	db     DB
	feed   interfaces.ChangeFeed
	logger logger.Logger
}

func NewGateway(db DB, feed interfaces.ChangeFeed, lgr logger.Logger) *Gateway {
	return &Gateway{db: db, feed: feed, logger: lgr}
}

// Fetch lists the collection in creation order. This is the exact query every
// snapshot comes from.
func (g *Gateway) Fetch(ctx context.Context, ref interfaces.CollectionRef) ([]interfaces.RemoteRecord, error) {
	rows, err := g.db.Query(ctx, `
		SELECT id, data FROM documents
		WHERE user_id = $1 AND collection = $2
		ORDER BY created_at, id
	`, ref.UserID, ref.Collection)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var records []interfaces.RemoteRecord
	for rows.Next() {
		var (
			id  uuid.UUID
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}

		var data map[string]any
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("failed to decode document %s: %w", id, err)
		}

		records = append(records, interfaces.RemoteRecord{ID: id.String(), Data: data})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read documents: %w", err)
	}

	return records, nil
}

// Subscribe emits the current listing immediately, then a fresh one after
// every change event for the collection. The snapshot channel closes when
// cancel is called or the feed drops.
func (g *Gateway) Subscribe(ctx context.Context, ref interfaces.CollectionRef) (<-chan interfaces.Snapshot, func(), error) {
	events, cancel, err := g.feed.SubscribeChanges(ctx, ref)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to subscribe to change feed: %w", err)
	}

	snapshots := make(chan interfaces.Snapshot)

	go func() {
		defer close(snapshots)

		snapshots <- g.snapshot(ctx, ref)
		for range events {
			snapshots <- g.snapshot(ctx, ref)
		}
	}()

	return snapshots, cancel, nil
}

func (g *Gateway) snapshot(ctx context.Context, ref interfaces.CollectionRef) interfaces.Snapshot {
	records, err := g.Fetch(ctx, ref)
	if err != nil {
		return interfaces.Snapshot{Err: err}
	}
	return interfaces.Snapshot{Records: records}
}

// Create inserts a new document and returns its server-assigned id.
func (g *Gateway) Create(ctx context.Context, ref interfaces.CollectionRef, data map[string]any) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to encode document: %w", err)
	}

	id := uuid.New()
	_, err = g.db.Exec(ctx, `
		INSERT INTO documents (id, user_id, collection, data)
		VALUES ($1, $2, $3, $4)
	`, id, ref.UserID, ref.Collection, raw)
	if err != nil {
		return "", fmt.Errorf("failed to insert document: %w", err)
	}

	g.publishChange(ctx, ref)
	return id.String(), nil
}

// Set overwrites the full document, creating it when absent.
func (g *Gateway) Set(ctx context.Context, ref interfaces.CollectionRef, id string, data map[string]any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	_, err = g.db.Exec(ctx, `
		INSERT INTO documents (id, user_id, collection, data)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data
	`, id, ref.UserID, ref.Collection, raw)
	if err != nil {
		return fmt.Errorf("failed to set document: %w", err)
	}

	g.publishChange(ctx, ref)
	return nil
}

// UpdateFields merges the given fields into an existing document. Unlike
// Delete, updating a missing document is a failure the caller recovers from.
func (g *Gateway) UpdateFields(ctx context.Context, ref interfaces.CollectionRef, id string, fields map[string]any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode fields: %w", err)
	}

	affected, err := g.db.Exec(ctx, `
		UPDATE documents SET data = data || $1::jsonb
		WHERE id = $2 AND user_id = $3 AND collection = $4
	`, raw, id, ref.UserID, ref.Collection)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("document %s not found", id)
	}

	g.publishChange(ctx, ref)
	return nil
}

// Delete removes the document. A missing id is not a failure.
func (g *Gateway) Delete(ctx context.Context, ref interfaces.CollectionRef, id string) error {
	_, err := g.db.Exec(ctx, `
		DELETE FROM documents
		WHERE id = $1 AND user_id = $2 AND collection = $3
	`, id, ref.UserID, ref.Collection)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	g.publishChange(ctx, ref)
	return nil
}

// publishChange tells subscribers to refetch. The write itself already
// succeeded, so a publish failure is logged rather than returned; affected
// subscribers catch up on their next event or refresh.
func (g *Gateway) publishChange(ctx context.Context, ref interfaces.CollectionRef) {
	if err := g.feed.PublishChange(ctx, ref); err != nil {
		g.logger.Error("change_publish_failed", "Subscribers were not notified of a write", map[string]interface{}{
			"user_id":    ref.UserID,
			"collection": ref.Collection,
		}, err)
	}
}
