package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/licomply/toolkit/pkg/errors"
	"github.com/licomply/toolkit/pkg/model"
)

// MemoryStore is an in-memory Store for tests and short-lived runs.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*ScanRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*ScanRecord)}
}

func (s *MemoryStore) SaveScan(ctx context.Context, record *ScanRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	clone := *record
	s.records[record.ID] = &clone
	return nil
}

func (s *MemoryStore) GetScan(ctx context.Context, id string) (*ScanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil, errors.E("storage.GetScan", errors.KindNotFound, "scan "+id)
	}
	clone := *record
	return &clone, nil
}

func (s *MemoryStore) FindScan(ctx context.Context, pkg model.Identifier, scanner string) (*ScanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *ScanRecord
	for _, record := range s.records {
		if record.Package != pkg || record.Scanner != scanner {
			continue
		}
		if latest == nil || record.CreatedAt.After(latest.CreatedAt) {
			latest = record
		}
	}
	if latest == nil {
		return nil, errors.E("storage.FindScan", errors.KindNotFound,
			fmt.Sprintf("no %s scan for %s", scanner, pkg))
	}
	clone := *latest
	return &clone, nil
}

func (s *MemoryStore) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	var pruned int64
	for id, record := range s.records {
		if record.CreatedAt.Before(cutoff) {
			delete(s.records, id)
			pruned++
		}
	}
	return pruned, nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]*ScanRecord)
	return nil
}

var _ Store = (*MemoryStore)(nil)
