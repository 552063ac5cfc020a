package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"stock-dashboard/config"
	"stock-dashboard/internal/app"
	"stock-dashboard/models"
	"stock-dashboard/observability"
)

// Handler handles HTTP requests for the dashboard
type Handler struct {
	app *app.App
	cfg *config.Config
}

// NewHandler creates a new Handler
func NewHandler(application *app.App, cfg *config.Config) *Handler {
	return &Handler{app: application, cfg: cfg}
}

// SymbolRequest is the body of a load-symbol request
type SymbolRequest struct {
	Symbol string `json:"symbol"`
}

// SessionResponse is returned when a session is created
type SessionResponse struct {
	ID        string           `json:"id"`
	Dashboard models.Dashboard `json:"dashboard"`
}

// ErrorResponse carries an error message and, for retrieval failures, the stale dashboard
type ErrorResponse struct {
	Error     string            `json:"error"`
	Dashboard *models.Dashboard `json:"dashboard,omitempty"`
}

// HealthResponse reports service mode and dependency state
type HealthResponse struct {
	Status          string `json:"status"`
	Mode            string `json:"mode"`
	Sessions        int    `json:"sessions"`
	CircuitBreakers any    `json:"circuit_breakers"`
}

// HandleIndex serves the overview grid
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.app.Overview(r.Context())
	if err != nil {
		observability.Warn("overview failed", "error", err)
		h.htmlResponse(w, r, statusFor(err), ErrorPage(statusFor(err), err.Error()))
		return
	}
	h.htmlResponse(w, r, http.StatusOK, OverviewPage(summaries, h.app.IsDemo()))
}

// HandleSearch redirects the search form to the symbol page
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	symbol, err := app.NormalizeSymbol(r.URL.Query().Get("symbol"))
	if err != nil {
		h.htmlResponse(w, r, http.StatusBadRequest, ErrorPage(http.StatusBadRequest, err.Error()))
		return
	}
	http.Redirect(w, r, "/stocks/"+url.PathEscape(symbol), http.StatusSeeOther)
}

// HandleStockPage renders the dashboard for one symbol
func (h *Handler) HandleStockPage(w http.ResponseWriter, r *http.Request) {
	dash, err := h.app.Lookup(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		status := statusFor(err)
		message := err.Error()
		if errors.Is(err, app.ErrDataRetrieval) {
			message = "Failed to fetch stock data. Please try again."
		}
		h.htmlResponse(w, r, status, ErrorPage(status, message))
		return
	}
	h.htmlResponse(w, r, http.StatusOK, StockPage(dash))
}

// HandleHealth returns the health status of the application
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:          "ok",
		Mode:            h.app.Mode(),
		Sessions:        h.app.SessionCount(),
		CircuitBreakers: h.app.Breakers(),
	}

	for _, cb := range h.app.Breakers() {
		if cb.State == "open" {
			resp.Status = "degraded"
			break
		}
	}

	h.jsonResponse(w, http.StatusOK, resp)
}

// HandleOverview returns the watchlist summaries
func (h *Handler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.app.Overview(r.Context())
	if err != nil {
		h.jsonError(w, err, nil)
		return
	}
	h.jsonResponse(w, http.StatusOK, summaries)
}

// HandleLookup returns a freshly loaded dashboard without creating a session
func (h *Handler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	dash, err := h.app.Lookup(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		h.jsonError(w, err, nil)
		return
	}
	h.jsonResponse(w, http.StatusOK, dash)
}

// HandleCreateSession opens a new session
func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	id, dash := h.app.CreateSession()
	w.Header().Set("Location", "/api/sessions/"+id)
	h.jsonResponse(w, http.StatusCreated, SessionResponse{ID: id, Dashboard: dash})
}

// HandleGetSession returns the current dashboard of a session
func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	dash, err := h.app.Dashboard(chi.URLParam(r, "id"))
	if err != nil {
		h.jsonError(w, err, nil)
		return
	}

	if isHTMXRequest(r) {
		h.htmlResponse(w, r, http.StatusOK, DashboardPanel(dash))
		return
	}
	h.jsonResponse(w, http.StatusOK, dash)
}

// HandleLoadSymbol makes a symbol the session's active quote
func (h *Handler) HandleLoadSymbol(w http.ResponseWriter, r *http.Request) {
	var req SymbolRequest
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.jsonError(w, app.ErrInvalidSymbol, nil)
			return
		}
	} else {
		_ = r.ParseForm()
		req.Symbol = r.FormValue("symbol")
	}

	dash, err := h.app.LoadSymbol(r.Context(), chi.URLParam(r, "id"), req.Symbol)

	if isHTMXRequest(r) {
		if err != nil && !errors.Is(err, app.ErrDataRetrieval) {
			h.htmlResponse(w, r, statusFor(err), ErrorPage(statusFor(err), err.Error()))
			return
		}
		// retrieval failures still swap in the stale panel and its error notice
		h.htmlResponse(w, r, http.StatusOK, DashboardPanel(dash))
		return
	}

	if err != nil {
		if errors.Is(err, app.ErrDataRetrieval) {
			h.jsonError(w, err, &dash)
			return
		}
		h.jsonError(w, err, nil)
		return
	}
	h.jsonResponse(w, http.StatusOK, dash)
}

// HandleCloseSession tears down a session and its refresh job
func (h *Handler) HandleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.app.CloseSession(chi.URLParam(r, "id")); err != nil {
		h.jsonError(w, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// statusFor maps application errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, app.ErrInvalidSymbol):
		return http.StatusBadRequest
	case errors.Is(err, app.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, app.ErrDataRetrieval):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// htmlResponse renders a templ component as HTML
func (h *Handler) htmlResponse(w http.ResponseWriter, r *http.Request, status int, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := component.Render(r.Context(), w); err != nil {
		observability.Error("failed to render page", "path", r.URL.Path, "error", err)
	}
}

func (h *Handler) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		observability.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) jsonError(w http.ResponseWriter, err error, stale *models.Dashboard) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		observability.Error("request failed", "error", err)
		message = "internal error"
	}
	h.jsonResponse(w, status, ErrorResponse{Error: message, Dashboard: stale})
}
