package risk

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory implementation of Store for demo/test use.
type MemoryStore struct {
	mu      sync.RWMutex
	records []*Record
}

// NewMemoryStore creates an in-memory score-history store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, r *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := cloneRecord(r)
	if cp.CalculatedAt.IsZero() {
		cp.CalculatedAt = time.Now()
	}
	s.records = append(s.records, cp)
	return nil
}

func (s *MemoryStore) Latest(_ context.Context, userID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *Record
	for _, r := range s.records {
		if r.UserID != userID {
			continue
		}
		if latest == nil || r.CalculatedAt.After(latest.CalculatedAt) {
			latest = r
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return cloneRecord(latest), nil
}

func (s *MemoryStore) History(_ context.Context, userID string, limit int) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Record
	for _, r := range s.records {
		if r.UserID == userID {
			out = append(out, cloneRecord(r))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CalculatedAt.After(out[j].CalculatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func cloneRecord(r *Record) *Record {
	cp := *r
	if r.Factors.AvgMinutesToReport != nil {
		v := *r.Factors.AvgMinutesToReport
		cp.Factors.AvgMinutesToReport = &v
	}
	return &cp
}
