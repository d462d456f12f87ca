package codec

import (
	"encoding/json"
	"io"

	"netinv/internal/domain"
)

// JSONExporter writes the snapshot as indented JSON
type JSONExporter struct{}

// NewJSONExporter creates a JSON exporter
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// Format returns the format identifier
func (e *JSONExporter) Format() string {
	return "json"
}

// ContentType returns the response content type
func (e *JSONExporter) ContentType() string {
	return "application/json"
}

// Export writes the snapshot to w
func (e *JSONExporter) Export(snapshot *domain.Snapshot, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snapshot)
}
