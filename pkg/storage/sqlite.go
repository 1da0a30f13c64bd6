package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/licomply/toolkit/pkg/compress"
	"github.com/licomply/toolkit/pkg/errors"
	"github.com/licomply/toolkit/pkg/metrics"
	"github.com/licomply/toolkit/pkg/model"
)

// SQLiteStore is a Store backed by a local SQLite database. Raw payloads
// are compressed at rest; findings are stored as JSON.
type SQLiteStore struct {
	db    *sql.DB
	mu    sync.RWMutex
	cfg   *Config
	codec *compress.Codec

	collector metrics.Collector
}

// SQLiteOption configures a SQLiteStore.
type SQLiteOption func(*SQLiteStore)

// WithCollector sets the metrics collector recording storage operations.
func WithCollector(collector metrics.Collector) SQLiteOption {
	return func(s *SQLiteStore) {
		if collector != nil {
			s.collector = collector
		}
	}
}

// NewSQLiteStore opens (or creates) the SQLite database at cfg.DatabasePath.
func NewSQLiteStore(cfg *Config, opts ...SQLiteOption) (*SQLiteStore, error) {
	const op = "storage.NewSQLiteStore"

	if cfg == nil {
		cfg = DefaultConfig()
	}

	dir := filepath.Dir(cfg.DatabasePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.E(op, errors.KindStorage, "create storage directory", err)
	}

	db, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		return nil, errors.E(op, errors.KindStorage, "open database", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		fmt.Sprintf("PRAGMA busy_timeout=%d", cfg.BusyTimeout.Milliseconds()),
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.E(op, errors.KindStorage, "set pragma", err)
		}
	}

	s := &SQLiteStore{
		db:    db,
		cfg:   cfg,
		codec: compress.NewCodec(cfg.Compression),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, errors.E(op, errors.KindStorage, "init schema", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scans (
		id TEXT PRIMARY KEY,
		package_id TEXT NOT NULL,
		scanner TEXT NOT NULL,
		findings TEXT NOT NULL,
		raw_payload BLOB,
		compression TEXT NOT NULL DEFAULT 'zstd',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_scans_package ON scans(package_id, scanner);
	CREATE INDEX IF NOT EXISTS idx_scans_created_at ON scans(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveScan persists a scan record, assigning an ID when empty.
func (s *SQLiteStore) SaveScan(ctx context.Context, record *ScanRecord) error {
	const op = "storage.SaveScan"

	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	findingsJSON, err := json.Marshal(record.Findings)
	if err != nil {
		s.count("save", "error")
		return errors.E(op, errors.KindStorage, "marshal findings", err)
	}

	var payload []byte
	if len(record.RawPayload) > 0 {
		payload, err = s.codec.Compress(record.RawPayload)
		if err != nil {
			s.count("save", "error")
			return errors.E(op, errors.KindStorage, "compress payload", err)
		}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO scans (id, package_id, scanner, findings, raw_payload, compression, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			findings = excluded.findings,
			raw_payload = excluded.raw_payload,
			compression = excluded.compression
	`,
		record.ID, record.Package.String(), record.Scanner,
		string(findingsJSON), payload, string(s.codec.Algorithm()), record.CreatedAt,
	)
	if err != nil {
		s.count("save", "error")
		return errors.E(op, errors.KindStorage, "insert scan", err)
	}
	s.count("save", "ok")
	return nil
}

// GetScan retrieves a scan record by ID.
func (s *SQLiteStore) GetScan(ctx context.Context, id string) (*ScanRecord, error) {
	const op = "storage.GetScan"

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, err := s.scanRow(s.db.QueryRowContext(ctx, `
		SELECT id, package_id, scanner, findings, raw_payload, compression, created_at
		FROM scans WHERE id = ?
	`, id))
	if err == sql.ErrNoRows {
		s.count("get", "miss")
		return nil, errors.E(op, errors.KindNotFound, "scan "+id)
	}
	if err != nil {
		s.count("get", "error")
		return nil, errors.E(op, errors.KindStorage, "query scan", err)
	}
	s.count("get", "ok")
	return record, nil
}

// FindScan retrieves the most recent record for a package and scanner.
func (s *SQLiteStore) FindScan(ctx context.Context, pkg model.Identifier, scanner string) (*ScanRecord, error) {
	const op = "storage.FindScan"

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, err := s.scanRow(s.db.QueryRowContext(ctx, `
		SELECT id, package_id, scanner, findings, raw_payload, compression, created_at
		FROM scans
		WHERE package_id = ? AND scanner = ?
		ORDER BY created_at DESC
		LIMIT 1
	`, pkg.String(), scanner))
	if err == sql.ErrNoRows {
		s.count("find", "miss")
		return nil, errors.E(op, errors.KindNotFound,
			fmt.Sprintf("no %s scan for %s", scanner, pkg))
	}
	if err != nil {
		s.count("find", "error")
		return nil, errors.E(op, errors.KindStorage, "query scan", err)
	}
	s.count("find", "ok")
	return record, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteStore) scanRow(row rowScanner) (*ScanRecord, error) {
	var (
		record       ScanRecord
		packageID    string
		findingsJSON string
		payload      []byte
		algorithm    string
	)
	err := row.Scan(&record.ID, &packageID, &record.Scanner,
		&findingsJSON, &payload, &algorithm, &record.CreatedAt)
	if err != nil {
		return nil, err
	}

	record.Package, err = model.ParseIdentifier(packageID)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(findingsJSON), &record.Findings); err != nil {
		return nil, err
	}
	if len(payload) > 0 {
		raw, err := compress.NewCodec(compress.Algorithm(algorithm)).Decompress(payload)
		if err != nil {
			return nil, err
		}
		record.RawPayload = raw
	}
	return &record, nil
}

// Prune deletes records older than maxAge.
func (s *SQLiteStore) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	const op = "storage.Prune"

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM scans WHERE created_at < ?`, time.Now().Add(-maxAge))
	if err != nil {
		s.count("prune", "error")
		return 0, errors.E(op, errors.KindStorage, "delete scans", err)
	}
	s.count("prune", "ok")
	return result.RowsAffected()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func (s *SQLiteStore) count(operation, status string) {
	if s.collector != nil {
		s.collector.CounterInc(metrics.StorageOperationsTotal.Name,
			"operation", operation, "status", status)
	}
}

var _ Store = (*SQLiteStore)(nil)
