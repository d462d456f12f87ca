package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"netinv/internal/domain"
)

// Repository implements repository.History using SQLite
type Repository struct {
	db *sql.DB
}

// New opens (and if needed creates) the history database at dbPath
func New(dbPath string) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dbPath != ":memory:" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	if dbPath == ":memory:" {
		dsn = dbPath
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// each pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scan_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		scan_type TEXT NOT NULL,
		summary JSON NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS metrics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		metric_name TEXT NOT NULL,
		metric_value REAL NOT NULL,
		metadata JSON,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_scan_history_timestamp ON scan_history(timestamp);
	CREATE INDEX IF NOT EXISTS idx_metrics_name_timestamp ON metrics(metric_name, timestamp);
	`

	_, err := r.db.Exec(schema)
	return err
}

// AppendScan writes one scan summary row
func (r *Repository) AppendScan(ctx context.Context, entry *domain.ScanHistoryEntry) (int64, error) {
	summary, err := json.Marshal(entry.Summary)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal summary: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO scan_history (timestamp, scan_type, summary)
		VALUES (?, ?, ?)
	`, entry.Timestamp.UTC().Format(time.RFC3339), string(entry.ScanType), summary)
	if err != nil {
		return 0, fmt.Errorf("failed to insert scan: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get scan id: %w", err)
	}
	entry.ID = id
	return id, nil
}

// AppendMetrics writes a batch of metric samples in one transaction
func (r *Repository) AppendMetrics(ctx context.Context, samples []domain.MetricSample) error {
	if len(samples) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO metrics (timestamp, metric_name, metric_value, metadata)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, s := range samples {
		var metadata any
		if len(s.Metadata) > 0 {
			data, err := json.Marshal(s.Metadata)
			if err != nil {
				return fmt.Errorf("failed to marshal metadata: %w", err)
			}
			metadata = string(data)
		}
		if _, err := stmt.ExecContext(ctx,
			s.Timestamp.UTC().Format(time.RFC3339), s.Name, s.Value, metadata); err != nil {
			return fmt.Errorf("failed to insert metric %s: %w", s.Name, err)
		}
	}

	return tx.Commit()
}

// RecentScans returns up to limit entries, most recent first
func (r *Repository) RecentScans(ctx context.Context, limit int) ([]domain.ScanHistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, timestamp, scan_type, summary, created_at
		FROM scan_history
		ORDER BY timestamp DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scans: %w", err)
	}
	defer rows.Close()

	var entries []domain.ScanHistoryEntry
	for rows.Next() {
		entry, err := scanHistoryRow(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

// ScanByID returns one entry, or nil if it does not exist
func (r *Repository) ScanByID(ctx context.Context, id int64) (*domain.ScanHistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, timestamp, scan_type, summary, created_at
		FROM scan_history
		WHERE id = ?
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanHistoryRow(rows)
}

func scanHistoryRow(rows *sql.Rows) (*domain.ScanHistoryEntry, error) {
	var (
		entry              domain.ScanHistoryEntry
		ts, scanType       string
		summary, createdAt []byte
	)
	if err := rows.Scan(&entry.ID, &ts, &scanType, &summary, &createdAt); err != nil {
		return nil, fmt.Errorf("failed to scan history row: %w", err)
	}

	parsed, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return nil, fmt.Errorf("failed to parse timestamp %q: %w", ts, err)
	}
	entry.Timestamp = parsed
	entry.ScanType = domain.ScanTrigger(scanType)

	if err := json.Unmarshal(summary, &entry.Summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}
	if created, err := parseSQLiteTime(string(createdAt)); err == nil {
		entry.CreatedAt = created
	}

	return &entry, nil
}

// parseSQLiteTime handles CURRENT_TIMESTAMP's "2006-01-02 15:04:05" format
func parseSQLiteTime(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// MetricHistory returns samples for one metric within the window, oldest first
func (r *Repository) MetricHistory(ctx context.Context, name string, sinceHours int) ([]domain.MetricSample, error) {
	since := time.Now().UTC().Add(-time.Duration(sinceHours) * time.Hour)

	rows, err := r.db.QueryContext(ctx, `
		SELECT timestamp, metric_value, metadata
		FROM metrics
		WHERE metric_name = ? AND timestamp >= ?
		ORDER BY timestamp ASC
	`, name, since.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("failed to query metrics: %w", err)
	}
	defer rows.Close()

	var samples []domain.MetricSample
	for rows.Next() {
		var (
			ts       string
			value    float64
			metadata sql.NullString
		)
		if err := rows.Scan(&ts, &value, &metadata); err != nil {
			return nil, fmt.Errorf("failed to scan metric row: %w", err)
		}

		parsed, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("failed to parse timestamp %q: %w", ts, err)
		}

		sample := domain.MetricSample{Name: name, Timestamp: parsed, Value: value}
		if metadata.Valid && metadata.String != "" {
			if err := json.Unmarshal([]byte(metadata.String), &sample.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
			}
		}
		samples = append(samples, sample)
	}
	return samples, rows.Err()
}

// Prune deletes rows older than the given number of days
func (r *Repository) Prune(ctx context.Context, days int) (int64, int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days).Format(time.RFC3339)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM scan_history WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to prune scans: %w", err)
	}
	scans, _ := res.RowsAffected()

	res, err = tx.ExecContext(ctx, `DELETE FROM metrics WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to prune metrics: %w", err)
	}
	metrics, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit prune: %w", err)
	}
	return scans, metrics, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
