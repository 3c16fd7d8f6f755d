package orders

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"

	"bakeshop/internal/adapter/logger"
	"bakeshop/internal/domain"
	"bakeshop/internal/interfaces"
)

var ErrNoSession = errors.New("no active session")

// Repository owns the signed-in user's order collection for the lifetime of a
// session. Mutations apply optimistically and return immediately; the remote
// write runs in the background and the snapshot stream remains the sole
// source of truth. Every snapshot fully replaces local state — never a merge.
type Repository struct {
	gw     interfaces.Gateway
	logger logger.Logger

	mu         sync.Mutex
	orders     []domain.Order
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
// Snapshots still in flight from a replaced subscription are discarded.
func (r *Repository) Subscribe(ctx context.Context, userID string) error {
	snapshots, cancel, err := r.gw.Subscribe(ctx, interfaces.OrdersRef(userID))
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

// Unsubscribe cancels the live subscription. The local collection is left in
// place; clearing at session teardown is the caller's job.
func (r *Repository) Unsubscribe() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.generation++
}

// Orders returns a copy of the local collection.
func (r *Repository) Orders() []domain.Order {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Order, len(r.orders))
	copy(out, r.orders)
	return out
}

// Add appends an unpersisted order locally and issues the remote create in
// the background. On create failure the repository re-synchronizes from a
// fresh fetch instead of rolling back the single row; the next snapshot is
// authoritative either way.
func (r *Repository) Add(ctx context.Context, order domain.Order) error {
	if err := order.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	if r.userID == "" {
		r.mu.Unlock()
		return ErrNoSession
	}
	userID := r.userID
	r.orders = append(r.orders, order)
	r.mu.Unlock()
	r.notify()

	record := order.Record()
	r.writes.Add(1)
	go func() {
		defer r.writes.Done()
		wctx := context.WithoutCancel(ctx)
		if _, err := r.gw.Create(wctx, interfaces.OrdersRef(userID), record); err != nil {
			r.logger.Error("order_create_failed", "Remote create failed, resyncing", nil, err)
			r.resync(wctx, userID)
		}
	}()

	return nil
}

// UpdateStatus flips the order's status in place. Unknown ids are a local
// no-op, but the remote write is still attempted so a record present remotely
// and not yet locally still converges.
func (r *Repository) UpdateStatus(ctx context.Context, orderID string, status domain.Status) error {
	if !status.Valid() {
		return domain.ErrInvalidStatus
	}

	r.mu.Lock()
	if r.userID == "" {
		r.mu.Unlock()
		return ErrNoSession
	}
	userID := r.userID
	changed := false
	for i := range r.orders {
		if r.orders[i].ID == orderID {
			r.orders[i].Status = status
			changed = true
			break
		}
	}
	r.mu.Unlock()
	if changed {
		r.notify()
	}

	r.writes.Add(1)
	go func() {
		defer r.writes.Done()
		wctx := context.WithoutCancel(ctx)
		fields := map[string]any{"status": string(status)}
		if err := r.gw.UpdateFields(wctx, interfaces.OrdersRef(userID), orderID, fields); err != nil {
			r.logger.Error("order_status_update_failed", "Remote status update failed, resyncing", nil, err)
			r.resync(wctx, userID)
		}
	}()

	return nil
}

// Update replaces a persisted order wholesale. The order must already carry
// its remote identifier.
func (r *Repository) Update(ctx context.Context, order domain.Order) error {
	if order.ID == "" {
		return domain.ErrMissingID
	}
	if err := order.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	if r.userID == "" {
		r.mu.Unlock()
		return ErrNoSession
	}
	userID := r.userID
	changed := false
	for i := range r.orders {
		if r.orders[i].ID == order.ID {
			r.orders[i] = order
			changed = true
			break
		}
	}
	r.mu.Unlock()
	if changed {
		r.notify()
	}

	record := order.Record()
	r.writes.Add(1)
	go func() {
		defer r.writes.Done()
		wctx := context.WithoutCancel(ctx)
		if err := r.gw.Set(wctx, interfaces.OrdersRef(userID), order.ID, record); err != nil {
			r.logger.Error("order_update_failed", "Remote update failed, resyncing", nil, err)
			r.resync(wctx, userID)
		}
	}()

	return nil
}

// Delete removes the order locally and issues the remote delete. Deleting an
// id that is already gone is a no-op on both sides.
func (r *Repository) Delete(ctx context.Context, orderID string) {
	r.mu.Lock()
	if r.userID == "" {
		r.mu.Unlock()
		return
	}
	userID := r.userID
	removed := false
	for i := range r.orders {
		if r.orders[i].ID == orderID {
			r.orders = append(r.orders[:i], r.orders[i+1:]...)
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
		if err := r.gw.Delete(wctx, interfaces.OrdersRef(userID), orderID); err != nil {
			r.logger.Error("order_delete_failed", "Remote delete failed, resyncing", nil, err)
			r.resync(wctx, userID)
		}
	}()
}

// Refresh re-runs the subscription's snapshot query once, synchronously.
// Batch import calls this after its last row.
func (r *Repository) Refresh(ctx context.Context) error {
	r.mu.Lock()
	userID := r.userID
	r.mu.Unlock()

	if userID == "" {
		return ErrNoSession
	}

	records, err := r.gw.Fetch(ctx, interfaces.OrdersRef(userID))
	if err != nil {
		return err
	}
	r.replace(records)
	return nil
}

// Clear drops the local collection. Called at session teardown, after
// Unsubscribe.
func (r *Repository) Clear() {
	r.mu.Lock()
	r.orders = nil
	r.userID = ""
	r.mu.Unlock()
	r.notify()
}

// OnChange registers fn to run after every change to the local collection.
func (r *Repository) OnChange(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// DroppedRecords reports how many snapshot records failed to decode and were
// excluded from the collection since the repository was created.
func (r *Repository) DroppedRecords() int64 {
	return r.dropped.Load()
}

// Wait blocks until all in-flight remote writes have completed.
func (r *Repository) Wait() {
	r.writes.Wait()
}

func (r *Repository) applySnapshot(gen uint64, snap interfaces.Snapshot) {
	if snap.Err != nil {
		r.logger.Error("orders_snapshot_failed", "Snapshot delivery failed", nil, snap.Err)
		return
	}

	decoded := r.decode(snap.Records)

	r.mu.Lock()
	if gen != r.generation {
		// Late delivery from a cancelled subscription.
		r.mu.Unlock()
		return
	}
	r.orders = decoded
	r.mu.Unlock()
	r.notify()
}

// replace swaps the whole local collection for the decoded snapshot contents.
func (r *Repository) replace(records []interfaces.RemoteRecord) {
	decoded := r.decode(records)

	r.mu.Lock()
	r.orders = decoded
	r.mu.Unlock()
	r.notify()
}

// decode drops records that fail to decode (counted, logged) and sorts the
// rest by pickup date then pickup time. Lexicographic compare is exact for
// the fixed-width canonical layouts.
func (r *Repository) decode(records []interfaces.RemoteRecord) []domain.Order {
	decoded := make([]domain.Order, 0, len(records))
	for _, rec := range records {
		order, err := domain.DecodeOrder(rec.ID, rec.Data)
		if err != nil {
			r.dropped.Add(1)
			r.logger.Error("order_decode_failed", "Dropping undecodable record", map[string]interface{}{
				"id": rec.ID,
			}, err)
			continue
		}
		decoded = append(decoded, order)
	}

	sort.SliceStable(decoded, func(i, j int) bool {
		if decoded[i].PickupDate == decoded[j].PickupDate {
			return decoded[i].PickupTime < decoded[j].PickupTime
		}
		return decoded[i].PickupDate < decoded[j].PickupDate
	})

	return decoded
}

func (r *Repository) resync(ctx context.Context, userID string) {
	records, err := r.gw.Fetch(ctx, interfaces.OrdersRef(userID))
	if err != nil {
		r.logger.Error("orders_resync_failed", "Fetch after failed write did not recover", nil, err)
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
