package training

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory implementation of Store for demo/test use.
type MemoryStore struct {
	mu        sync.RWMutex
	trainings map[string]*Training
}

// NewMemoryStore creates an in-memory training store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{trainings: make(map[string]*Training)}
}

func (s *MemoryStore) Create(_ context.Context, t *Training) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.trainings[t.ID]; ok {
		return ErrExists
	}
	cp := cloneTraining(t)
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	s.trainings[t.ID] = cp
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Training, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.trainings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneTraining(t), nil
}

func (s *MemoryStore) List(_ context.Context) ([]*Training, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Training, 0, len(s.trainings))
	for _, t := range s.trainings {
		out = append(out, cloneTraining(t))
	}
	sortByCreation(out)
	return out, nil
}

func (s *MemoryStore) ListForUser(_ context.Context, userID string) ([]*Training, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Training
	for _, t := range s.trainings {
		if t.AssignedToUser(userID) {
			out = append(out, cloneTraining(t))
		}
	}
	sortByCreation(out)
	return out, nil
}

func (s *MemoryStore) Assign(_ context.Context, trainingID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.trainings[trainingID]
	if !ok {
		return ErrNotFound
	}
	for _, id := range t.AssignedTo {
		if id == userID {
			return nil
		}
	}
	t.AssignedTo = append(t.AssignedTo, userID)
	return nil
}

func (s *MemoryStore) UpsertCompletion(_ context.Context, trainingID string, c *Completion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.trainings[trainingID]
	if !ok {
		return ErrNotFound
	}
	if t.Completions == nil {
		t.Completions = make(map[string]*Completion)
	}
	cp := *c
	if cp.CompletedAt.IsZero() {
		cp.CompletedAt = time.Now()
	}
	t.Completions[c.UserID] = &cp
	return nil
}

func cloneTraining(t *Training) *Training {
	cp := *t
	cp.Questions = make([]Question, len(t.Questions))
	for i, q := range t.Questions {
		qc := q
		qc.Options = append([]string(nil), q.Options...)
		cp.Questions[i] = qc
	}
	cp.AssignedTo = append([]string(nil), t.AssignedTo...)
	cp.Completions = make(map[string]*Completion, len(t.Completions))
	for userID, c := range t.Completions {
		cc := *c
		cp.Completions[userID] = &cc
	}
	return &cp
}

func sortByCreation(ts []*Training) {
	sort.Slice(ts, func(i, j int) bool {
		if ts[i].CreatedAt.Equal(ts[j].CreatedAt) {
			return ts[i].ID < ts[j].ID
		}
		return ts[i].CreatedAt.Before(ts[j].CreatedAt)
	})
}
