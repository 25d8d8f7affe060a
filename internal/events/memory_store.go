package events

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory implementation of Store for demo/test use.
type MemoryStore struct {
	mu     sync.RWMutex
	events []*Event
}

// NewMemoryStore creates an in-memory event store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, e *Event) error {
	if !ValidType(e.Type) {
		return ErrUnknownType
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := cloneEvent(e)
	if cp.Timestamp.IsZero() {
		cp.Timestamp = time.Now()
	}
	s.events = append(s.events, cp)
	return nil
}

func (s *MemoryStore) ListByUser(_ context.Context, userID string, limit int) ([]*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Event
	for _, e := range s.events {
		if e.UserID == userID {
			out = append(out, cloneEvent(e))
		}
	}
	sortNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) CountByUserSince(_ context.Context, userID string, typ Type, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, e := range s.events {
		if e.UserID == userID && e.Type == typ && !e.Timestamp.Before(since) {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) List(_ context.Context, f Filter) ([]*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Event
	for _, e := range s.events {
		if f.UserID != "" && e.UserID != f.UserID {
			continue
		}
		if f.CampaignID != "" && e.CampaignID != f.CampaignID {
			continue
		}
		if f.Type != "" && e.Type != f.Type {
			continue
		}
		out = append(out, cloneEvent(e))
	}
	sortNewestFirst(out)
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *MemoryStore) CountByCampaign(_ context.Context, campaignID string) (map[Type]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[Type]int)
	for _, e := range s.events {
		if e.CampaignID == campaignID {
			counts[e.Type]++
		}
	}
	return counts, nil
}

func sortNewestFirst(list []*Event) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Timestamp.After(list[j].Timestamp)
	})
}

func cloneEvent(e *Event) *Event {
	cp := *e
	if e.Metadata != nil {
		cp.Metadata = make(map[string]string, len(e.Metadata))
		for k, v := range e.Metadata {
			cp.Metadata[k] = v
		}
	}
	return &cp
}
