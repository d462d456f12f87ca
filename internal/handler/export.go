package handler

import (
	"log"
	"net/http"

	"netinv/internal/codec"
	"netinv/internal/service"
)

// ExportHandler serves the cached snapshot in downloadable formats
type ExportHandler struct {
	coord *service.Coordinator
}

// NewExportHandler creates the export handler
func NewExportHandler(coord *service.Coordinator) *ExportHandler {
	return &ExportHandler{coord: coord}
}

// Export renders the cached snapshot in the format named by the path
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.PathValue("format")
	exporter := codec.ForFormat(format)
	if exporter == nil {
		writeError(w, "Unknown export format", format, http.StatusBadRequest)
		return
	}

	snapshot, _ := h.coord.Latest()
	if snapshot == nil {
		writeError(w, "No snapshot available", "trigger a scan first", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", exporter.ContentType())
	w.Header().Set("Content-Disposition", "attachment; filename=inventory."+fileExt(format))
	if err := exporter.Export(snapshot, w); err != nil {
		log.Printf("export %s failed: %v", format, err)
	}
}

func fileExt(format string) string {
	if format == "ansible-inventory" {
		return "ini"
	}
	return format
}

// Routes registers the export endpoints on mux
func (h *ExportHandler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/export/{format}", h.Export)
}
