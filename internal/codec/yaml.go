package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"netinv/internal/domain"
)

// YAMLExporter writes the snapshot as YAML, reusing the snake_case field
// names of the JSON representation so both exports stay key-compatible.
type YAMLExporter struct{}

// NewYAMLExporter creates a YAML exporter
func NewYAMLExporter() *YAMLExporter {
	return &YAMLExporter{}
}

// Format returns the format identifier
func (e *YAMLExporter) Format() string {
	return "yaml"
}

// ContentType returns the response content type
func (e *YAMLExporter) ContentType() string {
	return "application/x-yaml"
}

// Export writes the snapshot to w
func (e *YAMLExporter) Export(snapshot *domain.Snapshot, w io.Writer) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	var view map[string]any
	if err := json.Unmarshal(data, &view); err != nil {
		return fmt.Errorf("reshape snapshot: %w", err)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(view); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
