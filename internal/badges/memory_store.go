package badges

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory implementation of Store for demo/test use.
type MemoryStore struct {
	mu     sync.RWMutex
	badges map[string]*Badge
	awards map[string]map[string]time.Time // badgeID -> userID -> awardedAt
}

// NewMemoryStore creates an in-memory badge store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		badges: make(map[string]*Badge),
		awards: make(map[string]map[string]time.Time),
	}
}

func (s *MemoryStore) Create(_ context.Context, b *Badge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.badges[b.ID]; ok {
		return ErrExists
	}
	cp := *b
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	s.badges[b.ID] = &cp
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Badge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.badges[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *MemoryStore) GetByCriteria(_ context.Context, criteria string) (*Badge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var match *Badge
	for _, b := range s.badges {
		if b.Criteria == criteria {
			if match == nil || b.CreatedAt.Before(match.CreatedAt) {
				match = b
			}
		}
	}
	if match == nil {
		return nil, ErrNotFound
	}
	cp := *match
	return &cp, nil
}

func (s *MemoryStore) List(_ context.Context) ([]*Badge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Badge, 0, len(s.badges))
	for _, b := range s.badges {
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Award is atomic: the existence check and the insert happen under one
// write lock, so two concurrent callers can't both report newly-awarded.
func (s *MemoryStore) Award(_ context.Context, badgeID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.badges[badgeID]; !ok {
		return false, ErrNotFound
	}
	holders, ok := s.awards[badgeID]
	if !ok {
		holders = make(map[string]time.Time)
		s.awards[badgeID] = holders
	}
	if _, held := holders[userID]; held {
		return false, nil
	}
	holders[userID] = time.Now()
	return true, nil
}

func (s *MemoryStore) CountAwards(_ context.Context, badgeID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.badges[badgeID]; !ok {
		return 0, ErrNotFound
	}
	return len(s.awards[badgeID]), nil
}

func (s *MemoryStore) ListAwards(_ context.Context, badgeID string) ([]*Award, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.badges[badgeID]; !ok {
		return nil, ErrNotFound
	}
	out := make([]*Award, 0, len(s.awards[badgeID]))
	for userID, at := range s.awards[badgeID] {
		out = append(out, &Award{BadgeID: badgeID, UserID: userID, AwardedAt: at})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AwardedAt.Equal(out[j].AwardedAt) {
			return out[i].UserID < out[j].UserID
		}
		return out[i].AwardedAt.Before(out[j].AwardedAt)
	})
	return out, nil
}
