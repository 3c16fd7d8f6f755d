package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"bakeshop/internal/adapter/auth"
	"bakeshop/internal/adapter/logger"
	"bakeshop/internal/domain"
)

type fakeOrderCollection struct {
	orders    []domain.Order
	deleted   []string
	statuses  map[string]domain.Status
	refreshed int
}

func newFakeOrderCollection() *fakeOrderCollection {
	return &fakeOrderCollection{statuses: make(map[string]domain.Status)}
}

func (f *fakeOrderCollection) Subscribe(ctx context.Context, userID string) error { return nil }
func (f *fakeOrderCollection) Unsubscribe()                                       {}
func (f *fakeOrderCollection) Orders() []domain.Order                             { return f.orders }

func (f *fakeOrderCollection) Add(ctx context.Context, order domain.Order) error {
	if err := order.Validate(); err != nil {
		return err
	}
	f.orders = append(f.orders, order)
	return nil
}

func (f *fakeOrderCollection) Update(ctx context.Context, order domain.Order) error {
	if order.ID == "" {
		return domain.ErrMissingID
	}
	return order.Validate()
}

func (f *fakeOrderCollection) UpdateStatus(ctx context.Context, orderID string, status domain.Status) error {
	f.statuses[orderID] = status
	return nil
}

func (f *fakeOrderCollection) Delete(ctx context.Context, orderID string) {
	f.deleted = append(f.deleted, orderID)
}

func (f *fakeOrderCollection) Refresh(ctx context.Context) error {
	f.refreshed++
	return nil
}

func (f *fakeOrderCollection) Clear() { f.orders = nil }

func testLogger() logger.Logger {
	return logger.NewWithWriter("test", io.Discard)
}

func TestCreateOrder(t *testing.T) {
	repo := newFakeOrderCollection()
	h := NewOrderHandler(repo, testLogger())

	body := `{"item_name":"Ube Cake","customer_name":"Alice","quantity":2,
		"total":"25.50","pickup_date":"2026-01-17","pickup_time":"10:30"}`
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.HandleCollection(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(repo.orders) != 1 || repo.orders[0].ItemName != "Ube Cake" {
		t.Fatalf("order not stored: %+v", repo.orders)
	}
	if repo.orders[0].Status != domain.StatusPending {
		t.Errorf("new orders start pending, got %q", repo.orders[0].Status)
	}
}

func TestCreateOrderRejectsInvalid(t *testing.T) {
	h := NewOrderHandler(newFakeOrderCollection(), testLogger())

	body := `{"item_name":"","customer_name":"Alice","quantity":1,"total":"5.00"}`
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.HandleCollection(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestListOrders(t *testing.T) {
	repo := newFakeOrderCollection()
	repo.orders = []domain.Order{{
		ID:           "a",
		ItemName:     "Puto",
		CustomerName: "Bob",
		Quantity:     1,
		Total:        decimal.RequireFromString("6.5"),
		Status:       domain.StatusPending,
	}}
	h := NewOrderHandler(repo, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	rec := httptest.NewRecorder()
	h.HandleCollection(rec, req)

	var got []orderJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if len(got) != 1 || got[0].Total != "6.50" {
		t.Fatalf("unexpected listing: %+v", got)
	}
}

func TestUpdateStatusRoute(t *testing.T) {
	repo := newFakeOrderCollection()
	h := NewOrderHandler(repo, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/orders/abc/status",
		strings.NewReader(`{"status":"completed"}`))
	rec := httptest.NewRecorder()
	h.HandleItem(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if repo.statuses["abc"] != domain.StatusCompleted {
		t.Errorf("status not forwarded: %+v", repo.statuses)
	}
}

func TestUpdateStatusRejectsUnknown(t *testing.T) {
	h := NewOrderHandler(newFakeOrderCollection(), testLogger())

	req := httptest.NewRequest(http.MethodPost, "/orders/abc/status",
		strings.NewReader(`{"status":"shipped"}`))
	rec := httptest.NewRecorder()
	h.HandleItem(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestDeleteOrderRoute(t *testing.T) {
	repo := newFakeOrderCollection()
	h := NewOrderHandler(repo, testLogger())

	req := httptest.NewRequest(http.MethodDelete, "/orders/abc", nil)
	rec := httptest.NewRecorder()
	h.HandleItem(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != "abc" {
		t.Errorf("delete not forwarded: %+v", repo.deleted)
	}
}

func TestExportImportEndpoints(t *testing.T) {
	repo := newFakeOrderCollection()
	repo.orders = []domain.Order{{
		ID:           "a",
		ItemName:     "Leche Flan",
		CustomerName: "Charlie",
		Quantity:     1,
		Total:        decimal.RequireFromString("12"),
		Status:       domain.StatusPending,
		PickupDate:   "2026-01-16",
		PickupTime:   "14:00",
	}}
	h := NewOrderHandler(repo, testLogger())

	rec := httptest.NewRecorder()
	h.HandleExport(rec, httptest.NewRequest(http.MethodGet, "/orders/export", nil))

	exported := rec.Body.String()
	if !strings.Contains(exported, "Friday, January 16, 2026\t2:00 PM") {
		t.Fatalf("unexpected export:\n%s", exported)
	}
	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/tab-separated-values") {
		t.Errorf("content type = %q", got)
	}

	importRepo := newFakeOrderCollection()
	importHandler := NewOrderHandler(importRepo, testLogger())

	rec = httptest.NewRecorder()
	importHandler.HandleImport(rec,
		httptest.NewRequest(http.MethodPost, "/orders/import", strings.NewReader(exported)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var res map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res["imported"] != 1 || res["errors"] != 0 {
		t.Fatalf("unexpected import result: %+v", res)
	}
	if importRepo.refreshed != 1 {
		t.Errorf("expected one refresh after the batch, got %d", importRepo.refreshed)
	}
	if importRepo.orders[0].PickupDate != "2026-01-16" {
		t.Errorf("canonical date lost: %q", importRepo.orders[0].PickupDate)
	}
}

func TestStatusForCategory(t *testing.T) {
	tests := []struct {
		category auth.Category
		want     int
	}{
		{auth.CategoryInvalidCredentials, http.StatusUnauthorized},
		{auth.CategoryMalformedEmail, http.StatusBadRequest},
		{auth.CategoryWeakPassword, http.StatusBadRequest},
		{auth.CategoryEmailInUse, http.StatusConflict},
		{auth.CategoryRateLimited, http.StatusTooManyRequests},
		{auth.CategoryNotVerified, http.StatusForbidden},
		{auth.CategoryNetwork, http.StatusServiceUnavailable},
		{auth.CategoryUnknown, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := statusForCategory(tt.category); got != tt.want {
			t.Errorf("statusForCategory(%q) = %d, want %d", tt.category, got, tt.want)
		}
	}
}
