package adapter

import (
	"context"
	"fmt"
	"log"

	nmap "github.com/Ullaakut/nmap/v3"

	"netinv/internal/config"
	"netinv/internal/domain"
)

// NetScanner discovers live hosts on the configured subnet with an nmap
// ping sweep. Hosts that do not answer are simply absent from the result.
type NetScanner struct {
	cfg config.NetworkScanConfig
}

// NewNetScanner creates the subnet sweep adapter
func NewNetScanner(cfg config.NetworkScanConfig) *NetScanner {
	return &NetScanner{cfg: cfg}
}

// Name returns the adapter identifier
func (n *NetScanner) Name() string {
	return "network_scan"
}

// Enabled reports whether subnet scanning is configured on
func (n *NetScanner) Enabled() bool {
	return n.cfg.Enabled
}

// Fetch runs the ping sweep and converts discovered hosts
func (n *NetScanner) Fetch(ctx context.Context) (*SourceResult, error) {
	scanner, err := nmap.NewScanner(
		ctx,
		nmap.WithTargets(n.cfg.Subnet),
		nmap.WithPingScan(),
		nmap.WithTimingTemplate(nmap.TimingAggressive),
	)
	if err != nil {
		return nil, NewSourceError(n.Name(), fmt.Errorf("create scanner: %w", err))
	}

	result, warnings, err := scanner.Run()
	if err != nil {
		return nil, NewSourceError(n.Name(), fmt.Errorf("ping sweep of %s: %w", n.cfg.Subnet, err))
	}
	if warnings != nil && len(*warnings) > 0 {
		log.Printf("netscan: warnings for %s: %v", n.cfg.Subnet, *warnings)
	}

	res := &SourceResult{}
	for _, host := range result.Hosts {
		if host.Status.State != "up" || len(host.Addresses) == 0 {
			continue
		}

		dev := domain.NetworkDevice{}
		for _, addr := range host.Addresses {
			switch addr.AddrType {
			case "ipv4":
				dev.IP = addr.Addr
			case "mac":
				dev.MAC = addr.Addr
				dev.Vendor = addr.Vendor
			}
		}
		if dev.IP == "" {
			dev.IP = host.Addresses[0].Addr
		}
		if len(host.Hostnames) > 0 {
			dev.Hostname = host.Hostnames[0].Name
		}

		res.NetworkDevices = append(res.NetworkDevices, dev)
	}

	log.Printf("netscan: found %d devices on %s", len(res.NetworkDevices), n.cfg.Subnet)
	return res, nil
}
