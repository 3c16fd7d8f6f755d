package menu

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"bakeshop/internal/adapter/logger"
	"bakeshop/internal/domain"
	"bakeshop/internal/interfaces"
)

var ErrNoSession = errors.New("no active session")

// Repository owns the signed-in user's menu catalog for the lifetime of a
// session, with the same optimistic-then-reconcile contract as the order
// repository. Catalog items keep the delivery order of the snapshot; callers
// that need an ordering sort on their side.
type Repository struct {
	gw     interfaces.Gateway
	logger logger.Logger

	mu         sync.Mutex
	items      []domain.MenuItem
	userID     string
	cancel     func()
	generation uint64
	listeners  []func()

	dropped atomic.Int64
	writes  sync.WaitGroup
}

func New(gw interfaces.Gateway, lgr logger.Logger) *Repository {
	return &Repository{gw: gw, logger: lgr}
}

// Subscribe opens a live subscription for userID, replacing any prior one.
func (r *Repository) Subscribe(ctx context.Context, userID string) error {
	snapshots, cancel, err := r.gw.Subscribe(ctx, interfaces.MenuRef(userID))
	if err != nil {
		return err
	}

	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.generation++
	gen := r.generation
	r.cancel = cancel
	r.userID = userID
	r.mu.Unlock()

	go func() {
		for snap := range snapshots {
			r.applySnapshot(gen, snap)
		}
	}()

	return nil
}

func (r *Repository) Unsubscribe() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.generation++
}

// Items returns a copy of the local catalog.
func (r *Repository) Items() []domain.MenuItem {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.MenuItem, len(r.items))
	copy(out, r.items)
	return out
}

// Add appends an unpersisted item locally and creates it remotely in the
// background, resyncing on failure.
func (r *Repository) Add(ctx context.Context, item domain.MenuItem) error {
	if err := item.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	if r.userID == "" {
		r.mu.Unlock()
		return ErrNoSession
	}
	userID := r.userID
	r.items = append(r.items, item)
	r.mu.Unlock()
	r.notify()

	record := item.Record()
	r.writes.Add(1)
	go func() {
		defer r.writes.Done()
		wctx := context.WithoutCancel(ctx)
		if _, err := r.gw.Create(wctx, interfaces.MenuRef(userID), record); err != nil {
			r.logger.Error("menu_create_failed", "Remote create failed, resyncing", nil, err)
			r.resync(wctx, userID)
		}
	}()

	return nil
}

// Update replaces a persisted item wholesale; the item must carry its id.
func (r *Repository) Update(ctx context.Context, item domain.MenuItem) error {
	if item.ID == "" {
		return domain.ErrMissingID
	}
	if err := item.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	if r.userID == "" {
		r.mu.Unlock()
		return ErrNoSession
	}
	userID := r.userID
	changed := false
	for i := range r.items {
		if r.items[i].ID == item.ID {
			r.items[i] = item
			changed = true
			break
		}
	}
	r.mu.Unlock()
	if changed {
		r.notify()
	}

	record := item.Record()
	r.writes.Add(1)
	go func() {
		defer r.writes.Done()
		wctx := context.WithoutCancel(ctx)
		if err := r.gw.Set(wctx, interfaces.MenuRef(userID), item.ID, record); err != nil {
			r.logger.Error("menu_update_failed", "Remote update failed, resyncing", nil, err)
			r.resync(wctx, userID)
		}
	}()

	return nil
}

// Delete removes the item locally and remotely; both sides tolerate an id
// that is already gone.
func (r *Repository) Delete(ctx context.Context, itemID string) {
	r.mu.Lock()
	if r.userID == "" {
		r.mu.Unlock()
		return
	}
	userID := r.userID
	removed := false
	for i := range r.items {
		if r.items[i].ID == itemID {
			r.items = append(r.items[:i], r.items[i+1:]...)
			removed = true
			break
		}
	}
	r.mu.Unlock()
	if removed {
		r.notify()
	}

	r.writes.Add(1)
	go func() {
		defer r.writes.Done()
		wctx := context.WithoutCancel(ctx)
		if err := r.gw.Delete(wctx, interfaces.MenuRef(userID), itemID); err != nil {
			r.logger.Error("menu_delete_failed", "Remote delete failed, resyncing", nil, err)
			r.resync(wctx, userID)
		}
	}()
}

// Refresh re-runs the snapshot query once, synchronously.
func (r *Repository) Refresh(ctx context.Context) error {
	r.mu.Lock()
	userID := r.userID
	r.mu.Unlock()

	if userID == "" {
		return ErrNoSession
	}

	records, err := r.gw.Fetch(ctx, interfaces.MenuRef(userID))
	if err != nil {
		return err
	}
	r.replace(records)
	return nil
}

// Clear drops the local catalog at session teardown.
func (r *Repository) Clear() {
	r.mu.Lock()
	r.items = nil
	r.userID = ""
	r.mu.Unlock()
	r.notify()
}

// OnChange registers fn to run after every change to the local catalog.
func (r *Repository) OnChange(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// DroppedRecords reports snapshot records excluded because they failed to
// decode.
func (r *Repository) DroppedRecords() int64 {
	return r.dropped.Load()
}

// Wait blocks until all in-flight remote writes have completed.
func (r *Repository) Wait() {
	r.writes.Wait()
}

func (r *Repository) applySnapshot(gen uint64, snap interfaces.Snapshot) {
	if snap.Err != nil {
		r.logger.Error("menu_snapshot_failed", "Snapshot delivery failed", nil, snap.Err)
		return
	}

	decoded := r.decode(snap.Records)

	r.mu.Lock()
	if gen != r.generation {
		r.mu.Unlock()
		return
	}
	r.items = decoded
	r.mu.Unlock()
	r.notify()
}

func (r *Repository) replace(records []interfaces.RemoteRecord) {
	decoded := r.decode(records)

	r.mu.Lock()
	r.items = decoded
	r.mu.Unlock()
	r.notify()
}

func (r *Repository) decode(records []interfaces.RemoteRecord) []domain.MenuItem {
	decoded := make([]domain.MenuItem, 0, len(records))
	for _, rec := range records {
		item, err := domain.DecodeMenuItem(rec.ID, rec.Data)
		if err != nil {
			r.dropped.Add(1)
			r.logger.Error("menu_decode_failed", "Dropping undecodable record", map[string]interface{}{
				"id": rec.ID,
			}, err)
			continue
		}
		decoded = append(decoded, item)
	}
	return decoded
}

func (r *Repository) resync(ctx context.Context, userID string) {
	records, err := r.gw.Fetch(ctx, interfaces.MenuRef(userID))
	if err != nil {
		r.logger.Error("menu_resync_failed", "Fetch after failed write did not recover", nil, err)
		return
	}
	r.replace(records)
}

func (r *Repository) notify() {
	r.mu.Lock()
	listeners := make([]func(), len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}
