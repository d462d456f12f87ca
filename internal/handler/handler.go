// Package handler exposes the inventory service over HTTP. Routes are
// registered with Go 1.22 method patterns on a plain ServeMux.
package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"netinv/internal/domain"
	"netinv/internal/service"
)

// ErrorResponse is the uniform error body
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// InventoryHandler serves snapshot, scan and status requests
type InventoryHandler struct {
	coord *service.Coordinator
	hub   interface{ ClientCount() int }
}

// NewInventoryHandler creates the inventory handler. hub may be nil when
// no event hub is wired; /health then omits the client count.
func NewInventoryHandler(coord *service.Coordinator, hub interface{ ClientCount() int }) *InventoryHandler {
	return &InventoryHandler{coord: coord, hub: hub}
}

type dataResponse struct {
	*domain.Snapshot
	IsCached          bool       `json:"is_cached"`
	AgeSeconds        int        `json:"age_seconds"`
	CanRefresh        bool       `json:"can_refresh"`
	NextScanAvailable *time.Time `json:"next_scan_available,omitempty"`
}

// GetData returns the cached snapshot. If no scan has ever succeeded the
// first caller pays for an inline scan, so the endpoint never serves an
// empty body on a healthy system.
func (h *InventoryHandler) GetData(w http.ResponseWriter, r *http.Request) {
	cached := true
	snapshot, age := h.coord.Latest()
	if snapshot == nil {
		var err error
		snapshot, err = h.coord.RequestScan(r.Context(), domain.TriggerAutomatic)
		if err != nil {
			if errors.Is(err, service.ErrAlreadyScanning) {
				writeError(w, "Initial scan in progress", "retry shortly", http.StatusServiceUnavailable)
				return
			}
			log.Printf("initial scan failed: %v", err)
			writeError(w, "Initial scan failed", err.Error(), http.StatusBadGateway)
			return
		}
		cached = false
		age = 0
	}

	body := dataResponse{
		Snapshot:   snapshot,
		IsCached:   cached,
		AgeSeconds: age,
		CanRefresh: h.coord.Status().CanScan,
	}
	if next := h.coord.NextScanAvailable(); !next.IsZero() {
		body.NextScanAvailable = &next
	}
	writeJSON(w, body, http.StatusOK)
}

type scanResponse struct {
	Status    string             `json:"status"`
	Timestamp string             `json:"timestamp"`
	Summary   domain.ScanSummary `json:"summary"`
	Snapshot  *domain.Snapshot   `json:"snapshot"`
}

type cooldownResponse struct {
	Error             string `json:"error"`
	CooldownRemaining int    `json:"cooldown_remaining"`
}

type allFailedResponse struct {
	Error   string   `json:"error"`
	Sources []string `json:"sources"`
}

// TriggerScan runs a full scan synchronously and returns its summary
func (h *InventoryHandler) TriggerScan(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.coord.RequestScan(r.Context(), domain.TriggerManual)
	if err != nil {
		var cdErr *service.CooldownError
		var allErr *service.AllFailedError
		switch {
		case errors.As(err, &cdErr):
			writeJSON(w, cooldownResponse{
				Error:             "Scan cooldown active",
				CooldownRemaining: cdErr.Remaining,
			}, http.StatusTooManyRequests)
		case errors.Is(err, service.ErrAlreadyScanning):
			writeError(w, "Scan already in progress", "", http.StatusConflict)
		case errors.As(err, &allErr):
			sources := make([]string, 0, len(allErr.Failures))
			for _, f := range allErr.Failures {
				sources = append(sources, f.Source)
			}
			writeJSON(w, allFailedResponse{
				Error:   "All sources failed",
				Sources: sources,
			}, http.StatusBadGateway)
		default:
			log.Printf("scan failed: %v", err)
			writeError(w, "Scan failed", err.Error(), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, scanResponse{
		Status:    "completed",
		Timestamp: snapshot.TakenAt.UTC().Format(time.RFC3339),
		Summary:   snapshot.Summary(),
		Snapshot:  snapshot,
	}, http.StatusOK)
}

// GetStatus returns the scan state machine view
func (h *InventoryHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.coord.Status(), http.StatusOK)
}

// Health is the liveness endpoint
func (h *InventoryHandler) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"status": "ok"}
	if h.hub != nil {
		body["event_clients"] = h.hub.ClientCount()
	}
	writeJSON(w, body, http.StatusOK)
}

// Routes registers all inventory endpoints on mux
func (h *InventoryHandler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/data", h.GetData)
	mux.HandleFunc("POST /api/scan", h.TriggerScan)
	mux.HandleFunc("GET /api/status", h.GetStatus)
	mux.HandleFunc("GET /health", h.Health)
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, msg, details string, status int) {
	writeJSON(w, ErrorResponse{Error: msg, Details: details}, status)
}
