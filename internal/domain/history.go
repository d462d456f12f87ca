package domain

import "time"

// ScanSummary holds the aggregate counts stored alongside each history entry
type ScanSummary struct {
	TotalClients    int `json:"total_clients"`
	TotalNetworks   int `json:"total_networks"`
	TotalAPs        int `json:"total_aps"`
	TotalContainers int `json:"total_containers"`
	TotalVMs        int `json:"total_vms"`
	TotalDevices    int `json:"total_devices"`
}

// ScanHistoryEntry is one row of durable scan history. Entries are written
// once per completed scan and never mutated; retention pruning is the only
// deletion path.
type ScanHistoryEntry struct {
	ID        int64       `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	ScanType  ScanTrigger `json:"scan_type"`
	Summary   ScanSummary `json:"summary"`
	CreatedAt time.Time   `json:"created_at"`
}

// MetricSample is one durable point of a named time series
type MetricSample struct {
	Name      string            `json:"-"`
	Timestamp time.Time         `json:"timestamp"`
	Value     float64           `json:"value"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Metric names emitted after every successful scan
const (
	MetricClientCount       = "client_count"
	MetricContainerCount    = "container_count"
	MetricNetworkCount      = "network_count"
	MetricAPCount           = "ap_count"
	MetricVMCount           = "vm_count"
	MetricContainersRunning = "containers_running"
	MetricContainersStopped = "containers_stopped"
	MetricAvgWifiSignal     = "avg_wifi_signal"
)
