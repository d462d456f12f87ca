// Package domain defines the core domain types for the inventory service.
//
// Snapshot is the immutable merged result of one scan across all enabled
// sources: hosts from the subnet sweep, clients/networks/access points from
// the wireless controller, containers from orchestration endpoints, and
// guests from hypervisors. Sources are unioned, not deduplicated: a device
// visible to two sources appears once per source.
//
// ScanHistoryEntry and MetricSample are the durable, append-only records
// kept for trend charts. ScanStatus is the coordinator's read-only view of
// the scan state machine.
package domain
