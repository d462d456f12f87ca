package handler

import (
	"log"
	"net/http"
	"strconv"

	"netinv/internal/repository"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
	defaultMetricHours  = 24
	maxMetricHours      = 168
	defaultRetainDays   = 30
)

// HistoryHandler serves scan history and metric trends. history is nil
// when history tracking is disabled; every route then answers 404.
type HistoryHandler struct {
	history repository.History
}

// NewHistoryHandler creates the history handler
func NewHistoryHandler(history repository.History) *HistoryHandler {
	return &HistoryHandler{history: history}
}

func (h *HistoryHandler) disabled(w http.ResponseWriter) bool {
	if h.history == nil {
		writeError(w, "History tracking is disabled", "", http.StatusNotFound)
		return true
	}
	return false
}

// ListScans returns recent scan entries, newest first
func (h *HistoryHandler) ListScans(w http.ResponseWriter, r *http.Request) {
	if h.disabled(w) {
		return
	}

	limit := queryInt(r, "limit", defaultHistoryLimit)
	if limit < 1 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	scans, err := h.history.RecentScans(r.Context(), limit)
	if err != nil {
		log.Printf("failed to list scan history: %v", err)
		writeError(w, "Failed to list scan history", err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"scans": scans, "count": len(scans)}, http.StatusOK)
}

// GetScan returns one history entry by id
func (h *HistoryHandler) GetScan(w http.ResponseWriter, r *http.Request) {
	if h.disabled(w) {
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, "Invalid scan ID", err.Error(), http.StatusBadRequest)
		return
	}

	entry, err := h.history.ScanByID(r.Context(), id)
	if err != nil {
		log.Printf("failed to get scan %d: %v", id, err)
		writeError(w, "Failed to get scan", err.Error(), http.StatusInternalServerError)
		return
	}
	if entry == nil {
		writeError(w, "Scan not found", "", http.StatusNotFound)
		return
	}

	writeJSON(w, entry, http.StatusOK)
}

// GetMetric returns samples of one named metric inside a trailing window
func (h *HistoryHandler) GetMetric(w http.ResponseWriter, r *http.Request) {
	if h.disabled(w) {
		return
	}

	name := r.PathValue("name")
	hours := queryInt(r, "hours", defaultMetricHours)
	if hours < 1 {
		hours = defaultMetricHours
	}
	if hours > maxMetricHours {
		hours = maxMetricHours
	}

	samples, err := h.history.MetricHistory(r.Context(), name, hours)
	if err != nil {
		log.Printf("failed to get metric %s: %v", name, err)
		writeError(w, "Failed to get metric history", err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"metric":  name,
		"hours":   hours,
		"samples": samples,
	}, http.StatusOK)
}

// Cleanup prunes entries older than the given retention window
func (h *HistoryHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	if h.disabled(w) {
		return
	}

	days := queryInt(r, "days", defaultRetainDays)
	if days < 1 {
		writeError(w, "Invalid retention window", "days must be positive", http.StatusBadRequest)
		return
	}

	scans, metrics, err := h.history.Prune(r.Context(), days)
	if err != nil {
		log.Printf("failed to prune history: %v", err)
		writeError(w, "Failed to prune history", err.Error(), http.StatusInternalServerError)
		return
	}

	log.Printf("history pruned: %d scans, %d metric samples (older than %d days)", scans, metrics, days)
	writeJSON(w, map[string]any{
		"scans_removed":   scans,
		"metrics_removed": metrics,
		"days":            days,
	}, http.StatusOK)
}

// Routes registers the history endpoints on mux
func (h *HistoryHandler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/history", h.ListScans)
	mux.HandleFunc("GET /api/history/{id}", h.GetScan)
	mux.HandleFunc("POST /api/history/cleanup", h.Cleanup)
	mux.HandleFunc("GET /api/metrics/{name}", h.GetMetric)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
