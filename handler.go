package main

import (
	"encoding/json"
	"net/http"

	"stockscope/observability"
	"stockscope/services"

	"github.com/go-chi/chi/v5"
)

// APIHandler handles HTTP API requests
type APIHandler struct {
	app *App
}

// NewAPIHandler creates a new APIHandler
func NewAPIHandler(app *App) *APIHandler {
	return &APIHandler{app: app}
}

// handleHealth returns the health status of the application
func (h *APIHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, map[string]interface{}{
		"status":   "ok",
		"breakers": services.GetGlobalRegistry().Status(),
	})
}

// handleGetStock returns the full research bundle for a ticker
func (h *APIHandler) handleGetStock(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	bundle, err := h.app.aggregator.GetStockData(r.Context(), ticker)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.jsonResponse(w, bundle)
}

// handleSearch resolves a free-text query to symbol matches
func (h *APIHandler) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		h.jsonError(w, "Query parameter q is required", http.StatusBadRequest)
		return
	}

	resp, err := h.app.aggregator.Search(r.Context(), query)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.jsonResponse(w, resp)
}

// handleGetFinancials returns balance sheet, income statement and cash
// flow histories for a ticker. ?quarterly=true selects the quarterly
// cadence; annual is the default.
func (h *APIHandler) handleGetFinancials(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	quarterly := r.URL.Query().Get("quarterly") == "true"

	statements, err := h.app.aggregator.GetFinancialStatements(r.Context(), ticker, quarterly)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.jsonResponse(w, statements)
}

// handleGetSentiment returns aggregated social sentiment for a ticker
func (h *APIHandler) handleGetSentiment(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	summary, err := h.app.aggregator.GetSentiment(r.Context(), ticker)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.jsonResponse(w, summary)
}

// handleSummarize returns a narrative summary for a ticker
func (h *APIHandler) handleSummarize(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	text, err := h.app.aggregator.Summarize(r.Context(), ticker)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	h.jsonResponse(w, map[string]string{"symbol": ticker, "summary": text})
}

// serviceError maps a classified service error to an HTTP status and a
// stable user-facing message. The raw error text is logged, never sent
// to the client.
func (h *APIHandler) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	code := services.CodeOf(err)
	status, message := userFacing(code)

	observability.Error("request failed",
		"path", r.URL.Path,
		"code", code,
		"error", err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
		"code":  string(code),
	})
}

// userFacing maps an error classification to its HTTP status and
// client message.
func userFacing(code services.ErrorCode) (int, string) {
	switch code {
	case services.ErrInvalidSymbol:
		return http.StatusBadRequest, "Invalid stock symbol. Check the ticker and try again."
	case services.ErrNetwork:
		return http.StatusBadGateway, "Unable to reach the market data provider. Try again shortly."
	case services.ErrAPI:
		return http.StatusBadGateway, "The market data provider returned an error. Try again later."
	case services.ErrDataFormat:
		return http.StatusBadGateway, "The provider returned unexpected data for this symbol."
	case services.ErrConfiguration:
		return http.StatusInternalServerError, "The service is misconfigured. Contact the operator."
	default:
		return http.StatusInternalServerError, "An unexpected error occurred."
	}
}

func (h *APIHandler) jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (h *APIHandler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
