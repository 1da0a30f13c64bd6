// Package storage persists raw scanner output and the findings parsed from
// it. Stores are plain handles passed to whoever needs them; nothing in the
// toolkit holds a process-wide store.
package storage

import (
	"context"
	"time"

	"github.com/licomply/toolkit/pkg/compress"
	"github.com/licomply/toolkit/pkg/model"
)

// ScanRecord is one persisted scan of one package by one scanner.
type ScanRecord struct {
	// ID uniquely identifies the record; assigned on save when empty
	ID string `json:"id"`

	// Package the scan applies to
	Package model.Identifier `json:"package"`

	// Scanner that produced the findings
	Scanner string `json:"scanner"`

	// Findings parsed from the scanner output
	Findings []model.Finding `json:"findings"`

	// RawPayload is the scanner's raw output, if retained
	RawPayload []byte `json:"-"`

	// CreatedAt is when the record was saved
	CreatedAt time.Time `json:"created_at"`
}

// Store persists and retrieves scan records.
type Store interface {
	// SaveScan persists a record, assigning ScanRecord.ID when empty.
	SaveScan(ctx context.Context, record *ScanRecord) error

	// GetScan retrieves a record by ID. Missing records are a
	// KindNotFound error.
	GetScan(ctx context.Context, id string) (*ScanRecord, error)

	// FindScan retrieves the most recent record for a package and
	// scanner. Missing records are a KindNotFound error.
	FindScan(ctx context.Context, pkg model.Identifier, scanner string) (*ScanRecord, error)

	// Prune deletes records older than maxAge, returning how many.
	Prune(ctx context.Context, maxAge time.Duration) (int64, error)

	// Close releases the store's resources.
	Close() error
}

// Config configures a SQLite store.
type Config struct {
	// DatabasePath is the SQLite file path
	DatabasePath string

	// Compression applied to raw payloads at rest
	Compression compress.Algorithm

	// BusyTimeout for concurrent writers
	BusyTimeout time.Duration
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() *Config {
	return &Config{
		DatabasePath: "licomply.db",
		Compression:  compress.AlgorithmZSTD,
		BusyTimeout:  5 * time.Second,
	}
}
