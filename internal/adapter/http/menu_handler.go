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

type MenuHandler struct {
	repo   interfaces.MenuCollection
	logger logger.Logger
}

func NewMenuHandler(repo interfaces.MenuCollection, lgr logger.Logger) *MenuHandler {
	return &MenuHandler{repo: repo, logger: lgr}
}

type menuItemJSON struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	BasePrice string `json:"base_price"`
	Category  string `json:"category,omitempty"`
}

func toMenuItemJSON(item domain.MenuItem) menuItemJSON {
	return menuItemJSON{
		ID:        item.ID,
		Name:      item.Name,
		BasePrice: item.BasePrice.StringFixed(2),
		Category:  string(item.Category),
	}
}

// HandleCollection serves /menu: list and create.
func (h *MenuHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		items := h.repo.Items()
		out := make([]menuItemJSON, len(items))
		for i, item := range items {
			out[i] = toMenuItemJSON(item)
		}
		respondJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var req menuItemJSON
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		price, err := decimal.NewFromString(req.BasePrice)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid base price")
			return
		}

		item, err := domain.NewMenuItem(req.Name, price, domain.Category(req.Category))
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		if err := h.repo.Add(r.Context(), *item); err != nil {
			h.logger.Error("menu_add_failed", "Menu item was not accepted", nil, err)
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		respondJSON(w, http.StatusCreated, toMenuItemJSON(*item))

	default:
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// HandleItem serves /menu/{id}.
func (h *MenuHandler) HandleItem(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 2 {
		respondError(w, http.StatusNotFound, "Not found")
		return
	}
	itemID := parts[1]

	switch r.Method {
	case http.MethodPut:
		var req menuItemJSON
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		price, err := decimal.NewFromString(req.BasePrice)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid base price")
			return
		}

		item := domain.MenuItem{
			ID:        itemID,
			Name:      req.Name,
			BasePrice: price,
			Category:  domain.Category(req.Category),
		}
		if err := h.repo.Update(r.Context(), item); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, toMenuItemJSON(item))

	case http.MethodDelete:
		h.repo.Delete(r.Context(), itemID)
		w.WriteHeader(http.StatusNoContent)

	default:
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// HandleExport serves GET /menu/export as tab-separated text.
func (h *MenuHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	w.Header().Set("Content-Type", "text/tab-separated-values; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="menu.tsv"`)
	io.WriteString(w, codec.ExportMenu(h.repo.Items()))
}

// HandleImport serves POST /menu/import with the raw interchange text.
func (h *MenuHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Could not read body")
		return
	}

	result := codec.ImportMenu(r.Context(), string(body), h.repo)
	h.logger.Info("menu_imported", "Import batch finished", map[string]interface{}{
		"imported": result.Imported,
		"errors":   result.Errors,
	})
	respondJSON(w, http.StatusOK, map[string]int{
		"imported": result.Imported,
		"errors":   result.Errors,
	})
}
