package users

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-memory implementation of Store for demo/test use.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]*User
	byEmail map[string]string // lowercased email → id
}

// NewMemoryStore creates an in-memory user store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]*User),
		byEmail: make(map[string]string),
	}
}

func (s *MemoryStore) Create(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(u.Email)
	if _, taken := s.byEmail[email]; taken {
		return ErrExists
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	cp := cloneUser(u)
	s.byID[u.ID] = cp
	s.byEmail[email] = u.ID
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *MemoryStore) List(_ context.Context) ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*User, 0, len(s.byID))
	for _, u := range s.byID {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) SetRiskScore(_ context.Context, id string, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.RiskScore = score
	return nil
}

func (s *MemoryStore) AddCompletedTraining(_ context.Context, id, trainingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	for _, t := range u.TrainingsCompleted {
		if t == trainingID {
			return nil
		}
	}
	u.TrainingsCompleted = append(u.TrainingsCompleted, trainingID)
	return nil
}

func (s *MemoryStore) AddBadge(_ context.Context, id, badgeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	for _, b := range u.Badges {
		if b == badgeID {
			return nil
		}
	}
	u.Badges = append(u.Badges, badgeID)
	return nil
}

func cloneUser(u *User) *User {
	cp := *u
	cp.TrainingsCompleted = append([]string(nil), u.TrainingsCompleted...)
	cp.Badges = append([]string(nil), u.Badges...)
	return &cp
}
