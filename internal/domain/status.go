package domain

import "time"

// ScanState is the coordinator's externally visible state
type ScanState string

const (
	ScanStateIdle     ScanState = "idle"
	ScanStateScanning ScanState = "scanning"
)

// ScanTrigger records what initiated a scan
type ScanTrigger string

const (
	TriggerManual    ScanTrigger = "manual"
	TriggerAutomatic ScanTrigger = "automatic"
)

// ScanStatus is a point-in-time view of the coordinator. CanScan and
// CooldownRemaining are derived when the status is read, never stored.
type ScanStatus struct {
	State             ScanState  `json:"state"`
	LastScanAt        *time.Time `json:"last_scan,omitempty"`
	CooldownSeconds   int        `json:"scan_cooldown"`
	CanScan           bool       `json:"can_scan"`
	CooldownRemaining int        `json:"cooldown_remaining,omitempty"`
}
