package domain

import "time"

// NetworkDevice is a host discovered by the subnet ping sweep
type NetworkDevice struct {
	Hostname string `json:"hostname"`
	IP       string `json:"ip"`
	MAC      string `json:"mac,omitempty"`
	Vendor   string `json:"vendor,omitempty"`
}

// WirelessClient is a client known to the wireless controller
type WirelessClient struct {
	Name    string `json:"name"`
	MAC     string `json:"mac"`
	IP      string `json:"ip,omitempty"`
	IsWired bool   `json:"is_wired"`
	RSSI    int    `json:"rssi,omitempty"`
	APMAC   string `json:"ap_mac,omitempty"`
	Network string `json:"network,omitempty"`
}

// WirelessNetwork is a network configured on the wireless controller
type WirelessNetwork struct {
	Name    string `json:"name"`
	VLAN    int    `json:"vlan,omitempty"`
	Subnet  string `json:"subnet,omitempty"`
	Purpose string `json:"purpose,omitempty"`
}

// AccessPoint is an access point managed by the wireless controller
type AccessPoint struct {
	Name       string `json:"name"`
	MAC        string `json:"mac"`
	IP         string `json:"ip,omitempty"`
	Model      string `json:"model,omitempty"`
	Type       string `json:"type,omitempty"`
	NumClients int    `json:"num_clients"`
}

// Container is a container reported by an orchestration endpoint.
// Instance and Endpoint identify which configured instance and which of
// its Docker endpoints the container was seen on.
type Container struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Image    string `json:"image"`
	State    string `json:"state"`
	Status   string `json:"status"`
	Instance string `json:"instance"`
	Endpoint string `json:"endpoint"`
}

// VirtualMachine is a guest managed by a hypervisor (qemu VM or lxc container)
type VirtualMachine struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	Node          string  `json:"node"`
	Status        string  `json:"status"`
	Kind          string  `json:"kind"`
	CPU           float64 `json:"cpu,omitempty"`
	MaxMemBytes   int64   `json:"max_mem_bytes,omitempty"`
	UptimeSeconds int64   `json:"uptime_seconds,omitempty"`
}

// SourceFailure records a source that degraded during a scan
type SourceFailure struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// Snapshot is the merged result of one scan. It is immutable once
// published: the coordinator builds a fresh Snapshot per scan and readers
// only ever see a fully merged value.
type Snapshot struct {
	NetworkDevices   []NetworkDevice   `json:"network_devices"`
	WirelessClients  []WirelessClient  `json:"wireless_clients"`
	WirelessNetworks []WirelessNetwork `json:"wireless_networks"`
	AccessPoints     []AccessPoint     `json:"access_points"`
	Containers       []Container       `json:"containers"`
	VirtualMachines  []VirtualMachine  `json:"virtual_machines"`
	TakenAt          time.Time         `json:"taken_at"`
	PartialFailures  []SourceFailure   `json:"partial_failures,omitempty"`
}

// Summary derives the per-scan counts persisted to history
func (s *Snapshot) Summary() ScanSummary {
	return ScanSummary{
		TotalClients:    len(s.WirelessClients),
		TotalNetworks:   len(s.WirelessNetworks),
		TotalAPs:        len(s.AccessPoints),
		TotalContainers: len(s.Containers),
		TotalVMs:        len(s.VirtualMachines),
		TotalDevices:    len(s.NetworkDevices),
	}
}

// FailedSources lists the identifiers recorded in PartialFailures
func (s *Snapshot) FailedSources() []string {
	if len(s.PartialFailures) == 0 {
		return nil
	}
	names := make([]string, 0, len(s.PartialFailures))
	for _, f := range s.PartialFailures {
		names = append(names, f.Source)
	}
	return names
}
