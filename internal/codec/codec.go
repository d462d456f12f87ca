// Package codec renders inventory snapshots in formats consumed outside
// the service, for backups and for feeding other tooling.
package codec

import (
	"io"

	"netinv/internal/domain"
)

// Exporter writes one snapshot in a specific format
type Exporter interface {
	Export(snapshot *domain.Snapshot, w io.Writer) error
	Format() string
	ContentType() string
}

// ForFormat returns the exporter for a format name, nil if unknown
func ForFormat(name string) Exporter {
	switch name {
	case "json":
		return NewJSONExporter()
	case "yaml":
		return NewYAMLExporter()
	case "ansible-inventory":
		return NewAnsibleExporter()
	}
	return nil
}
