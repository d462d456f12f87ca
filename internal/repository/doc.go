// Package repository defines the persistence interface for scan history
// and metric time series, with an embedded SQLite implementation in the
// sqlite subpackage. Rows are append-only; the only deletion path is the
// explicit retention sweep.
package repository
