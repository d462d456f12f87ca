package repository

import (
	"context"

	"netinv/internal/domain"
)

// History defines durable storage for scan summaries and metric samples.
// It is a single-writer store: the coordinator appends, anyone may read.
type History interface {
	// AppendScan writes one scan summary and returns its id
	AppendScan(ctx context.Context, entry *domain.ScanHistoryEntry) (int64, error)

	// AppendMetrics writes a batch of metric samples from one scan
	AppendMetrics(ctx context.Context, samples []domain.MetricSample) error

	// RecentScans returns up to limit entries, most recent first
	RecentScans(ctx context.Context, limit int) ([]domain.ScanHistoryEntry, error)

	// ScanByID returns one entry, or nil if it does not exist
	ScanByID(ctx context.Context, id int64) (*domain.ScanHistoryEntry, error)

	// MetricHistory returns samples for the named metric within the last
	// sinceHours hours, oldest first
	MetricHistory(ctx context.Context, name string, sinceHours int) ([]domain.MetricSample, error)

	// Prune deletes scans and metrics older than the given number of days
	// and returns how many rows of each were removed
	Prune(ctx context.Context, days int) (scans, metrics int64, err error)

	// Close releases resources
	Close() error
}
