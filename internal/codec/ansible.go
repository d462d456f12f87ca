package codec

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"netinv/internal/domain"
)

// AnsibleExporter writes discovered network devices as an INI-style
// Ansible inventory. Hosts without a hostname are keyed by IP.
type AnsibleExporter struct{}

// NewAnsibleExporter creates an Ansible inventory exporter
func NewAnsibleExporter() *AnsibleExporter {
	return &AnsibleExporter{}
}

// Format returns the format identifier
func (e *AnsibleExporter) Format() string {
	return "ansible-inventory"
}

// ContentType returns the response content type
func (e *AnsibleExporter) ContentType() string {
	return "text/plain; charset=utf-8"
}

// Export writes the snapshot to w
func (e *AnsibleExporter) Export(snapshot *domain.Snapshot, w io.Writer) error {
	var b strings.Builder

	b.WriteString("# generated from inventory snapshot ")
	b.WriteString(snapshot.TakenAt.UTC().Format("2006-01-02T15:04:05Z"))
	b.WriteString("\n\n[discovered]\n")

	devices := append([]domain.NetworkDevice(nil), snapshot.NetworkDevices...)
	sort.Slice(devices, func(i, j int) bool { return devices[i].IP < devices[j].IP })

	for _, d := range devices {
		name := sanitizeHostname(d.Hostname)
		if name == "" {
			name = d.IP
		}
		fmt.Fprintf(&b, "%s ansible_host=%s", name, d.IP)
		if d.MAC != "" {
			fmt.Fprintf(&b, " mac=%s", d.MAC)
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// sanitizeHostname strips characters that break INI inventory parsing
func sanitizeHostname(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, " ", "-")
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '.', r == '_':
			return r
		}
		return -1
	}, name)
}
