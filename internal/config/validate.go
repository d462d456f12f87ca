package config

import (
	"fmt"
	"net"
	"strings"
)

// Validation messages are split into warnings and errors. Errors abort
// startup; warnings are logged and the service starts anyway.
const errPrefix = "ERROR: "

// Validate checks the configuration for common mistakes and returns a list
// of human-readable findings. Use HasFatalErrors to decide whether to abort.
func (c *Config) Validate() []string {
	var findings []string

	anyEnabled := c.NetworkScan.Enabled || c.UniFi.Enabled
	for _, p := range c.Portainer {
		anyEnabled = anyEnabled || p.Enabled
	}
	for _, p := range c.Proxmox {
		anyEnabled = anyEnabled || p.Enabled
	}
	if !anyEnabled {
		findings = append(findings, "WARNING: all data sources are disabled, scans will produce empty snapshots")
	}

	if c.NetworkScan.Enabled {
		if _, _, err := net.ParseCIDR(c.NetworkScan.Subnet); err != nil {
			findings = append(findings,
				fmt.Sprintf("%snetwork_scan.subnet %q is not a valid CIDR", errPrefix, c.NetworkScan.Subnet))
		}
	}

	if c.UniFi.Enabled {
		if strings.TrimSpace(c.UniFi.Host) == "" {
			findings = append(findings, errPrefix+"unifi.host is required when unifi is enabled")
		}
		if c.UniFi.Username == "" {
			findings = append(findings, errPrefix+"unifi.username is required when unifi is enabled")
		}
		if c.UniFi.Password == "" {
			findings = append(findings, errPrefix+"unifi.password is required when unifi is enabled")
		}
		if c.UniFi.Port < 1 || c.UniFi.Port > 65535 {
			findings = append(findings, fmt.Sprintf("%sunifi.port %d is out of range", errPrefix, c.UniFi.Port))
		}
	}

	for i, p := range c.Portainer {
		if !p.Enabled {
			continue
		}
		label := p.Name
		if label == "" {
			label = fmt.Sprintf("portainer[%d]", i)
		}
		if !strings.HasPrefix(p.URL, "http://") && !strings.HasPrefix(p.URL, "https://") {
			findings = append(findings,
				fmt.Sprintf("%s%s: url must start with http:// or https://", errPrefix, label))
		}
		if p.APIToken == "" {
			findings = append(findings, fmt.Sprintf("%s%s: api_token is required", errPrefix, label))
		}
	}

	for i, p := range c.Proxmox {
		if !p.Enabled {
			continue
		}
		label := p.Name
		if label == "" {
			label = fmt.Sprintf("proxmox[%d]", i)
		}
		if strings.TrimSpace(p.Host) == "" {
			findings = append(findings, fmt.Sprintf("%s%s: host is required", errPrefix, label))
		}
		if p.APITokenName == "" || p.APITokenValue == "" {
			findings = append(findings,
				fmt.Sprintf("%s%s: api_token_name and api_token_value are required", errPrefix, label))
		}
	}

	return findings
}

// HasFatalErrors reports whether any finding is fatal
func HasFatalErrors(findings []string) bool {
	for _, f := range findings {
		if strings.HasPrefix(f, errPrefix) {
			return true
		}
	}
	return false
}
