package http

import (
	"net/http"

	"bakeshop/internal/adapter/logger"
	"bakeshop/internal/app/reports"
)

type ReportHandler struct {
	service *reports.Service
	logger  logger.Logger
}

func NewReportHandler(service *reports.Service, lgr logger.Logger) *ReportHandler {
	return &ReportHandler{service: service, logger: lgr}
}

type itemCountJSON struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type sourceCountJSON struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

type summaryJSON struct {
	Revenue      string            `json:"revenue"`
	Pipeline     string            `json:"pipeline"`
	TotalOrders  int               `json:"total_orders"`
	AverageValue string            `json:"average_value"`
	Cakes        []itemCountJSON   `json:"cakes"`
	Desserts     []itemCountJSON   `json:"desserts"`
	Other        []itemCountJSON   `json:"other"`
	Sources      []sourceCountJSON `json:"sources"`
}

// HandleSummary serves GET /reports/summary.
func (h *ReportHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	summary := h.service.Summary()
	resp := summaryJSON{
		Revenue:      summary.Revenue.StringFixed(2),
		Pipeline:     summary.Pipeline.StringFixed(2),
		TotalOrders:  summary.TotalOrders,
		AverageValue: summary.AverageValue.StringFixed(2),
		Cakes:        toItemCounts(summary.Cakes),
		Desserts:     toItemCounts(summary.Desserts),
		Other:        toItemCounts(summary.Other),
		Sources:      toSourceCounts(summary.Sources),
	}
	respondJSON(w, http.StatusOK, resp)
}

func toItemCounts(counts []reports.ItemCount) []itemCountJSON {
	out := make([]itemCountJSON, len(counts))
	for i, c := range counts {
		out[i] = itemCountJSON{Name: c.Name, Quantity: c.Quantity}
	}
	return out
}

func toSourceCounts(counts []reports.SourceCount) []sourceCountJSON {
	out := make([]sourceCountJSON, len(counts))
	for i, c := range counts {
		out[i] = sourceCountJSON{Source: c.Source, Count: c.Count}
	}
	return out
}
