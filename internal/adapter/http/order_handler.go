package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"bakeshop/internal/adapter/logger"
	"bakeshop/internal/codec"
	"bakeshop/internal/domain"
	"bakeshop/internal/interfaces"
)

type OrderHandler struct {
	repo   interfaces.OrderCollection
	logger logger.Logger
}

func NewOrderHandler(repo interfaces.OrderCollection, lgr logger.Logger) *OrderHandler {
	return &OrderHandler{repo: repo, logger: lgr}
}

type orderJSON struct {
	ID           string `json:"id,omitempty"`
	ItemName     string `json:"item_name"`
	CustomerName string `json:"customer_name"`
	Quantity     int    `json:"quantity"`
	Total        string `json:"total"`
	Notes        string `json:"notes"`
	Source       string `json:"source"`
	Timestamp    string `json:"timestamp,omitempty"`
	PickupDate   string `json:"pickup_date"`
	PickupTime   string `json:"pickup_time"`
	Status       string `json:"status,omitempty"`
}

func toOrderJSON(o domain.Order) orderJSON {
	return orderJSON{
		ID:           o.ID,
		ItemName:     o.ItemName,
		CustomerName: o.CustomerName,
		Quantity:     o.Quantity,
		Total:        o.Total.StringFixed(2),
		Notes:        o.Notes,
		Source:       o.Source,
		Timestamp:    o.Timestamp,
		PickupDate:   o.PickupDate,
		PickupTime:   o.PickupTime,
		Status:       string(o.Status),
	}
}

// HandleCollection serves /orders: list and create.
func (h *OrderHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		orders := h.repo.Orders()
		out := make([]orderJSON, len(orders))
		for i, o := range orders {
			out[i] = toOrderJSON(o)
		}
		respondJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var req orderJSON
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		total, err := decimal.NewFromString(req.Total)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid total")
			return
		}

		order, err := domain.NewOrder(req.ItemName, req.CustomerName, req.Quantity, total,
			req.Notes, req.Source, req.PickupDate, req.PickupTime)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		if err := h.repo.Add(r.Context(), *order); err != nil {
			h.logger.Error("order_add_failed", "Order was not accepted", nil, err)
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		respondJSON(w, http.StatusCreated, toOrderJSON(*order))

	default:
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// HandleItem serves /orders/{id} and /orders/{id}/status.
func (h *OrderHandler) HandleItem(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 2 {
		respondError(w, http.StatusBadRequest, "Invalid path")
		return
	}
	orderID := parts[1]

	if len(parts) == 3 && parts[2] == "status" {
		h.updateStatus(w, r, orderID)
		return
	}
	if len(parts) != 2 {
		respondError(w, http.StatusNotFound, "Not found")
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req orderJSON
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		total, err := decimal.NewFromString(req.Total)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid total")
			return
		}

		status, err := domain.ParseStatus(req.Status)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		order := domain.Order{
			ID:           orderID,
			ItemName:     req.ItemName,
			CustomerName: req.CustomerName,
			Quantity:     req.Quantity,
			Total:        total,
			Notes:        req.Notes,
			Source:       req.Source,
			Timestamp:    req.Timestamp,
			PickupDate:   req.PickupDate,
			PickupTime:   req.PickupTime,
			Status:       status,
		}
		if err := h.repo.Update(r.Context(), order); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, toOrderJSON(order))

	case http.MethodDelete:
		h.repo.Delete(r.Context(), orderID)
		w.WriteHeader(http.StatusNoContent)

	default:
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *OrderHandler) updateStatus(w http.ResponseWriter, r *http.Request, orderID string) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.repo.UpdateStatus(r.Context(), orderID, status); err != nil {
		respondError(w, http.StatusConflict, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleExport serves GET /orders/export as tab-separated text.
func (h *OrderHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	w.Header().Set("Content-Type", "text/tab-separated-values; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="orders.tsv"`)
	io.WriteString(w, codec.ExportOrders(h.repo.Orders()))
}

// HandleImport serves POST /orders/import with the raw interchange text as
// its body and answers with the aggregate counts.
func (h *OrderHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Could not read body")
		return
	}

	result := codec.ImportOrders(r.Context(), string(body), h.repo)
	h.logger.Info("orders_imported", "Import batch finished", map[string]interface{}{
		"imported": result.Imported,
		"errors":   result.Errors,
	})
	respondJSON(w, http.StatusOK, map[string]int{
		"imported": result.Imported,
		"errors":   result.Errors,
	})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
