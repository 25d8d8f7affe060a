// Package training manages training modules, quiz grading and
// completion tracking.
package training

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates the training doesn't exist.
	ErrNotFound = errors.New("training: training not found")

	// ErrExists indicates a training with the same ID already exists.
	ErrExists = errors.New("training: training already exists")

	// ErrInvalidAnswers rejects a submission whose answers payload is
	// not an array of option indices.
	ErrInvalidAnswers = errors.New("training: answers must be an array of option indices")
)

// Question is a single quiz question. CorrectIndex points into Options.
type Question struct {
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
}

// Completion is a user's latest quiz outcome for one training.
// There is exactly one entry per (user, training); resubmission
// overwrites it in place.
//
// Note: a completion entry exists for failed attempts too. The risk
// engine's completion% counts any entry, while the user's
// completed-set and badges count passes only.
type Completion struct {
	UserID      string    `json:"userId"`
	Score       int       `json:"score"`
	CompletedAt time.Time `json:"completedAt"`
}

// State is a user's standing on one training, derived from the
// completion entry and the training's passing score.
type State string

const (
	StateUnattempted State = "unattempted"
	StateFailed      State = "attempted-failed"
	StatePassed      State = "attempted-passed"
)

// Training is a module with a quiz. AssignedTo empty means the module
// is open to all users.
type Training struct {
	ID              string                 `json:"id"`
	Title           string                 `json:"title"`
	Description     string                 `json:"description"`
	Category        string                 `json:"category"`
	DurationMinutes int                    `json:"durationMinutes"`
	PassingScore    int                    `json:"passingScore"`
	Questions       []Question             `json:"questions"`
	AssignedTo      []string               `json:"assignedTo"`
	Completions     map[string]*Completion `json:"completions"`
	CreatedAt       time.Time              `json:"createdAt"`
}

// StateFor derives a user's state on this training.
func (t *Training) StateFor(userID string) State {
	c, ok := t.Completions[userID]
	if !ok {
		return StateUnattempted
	}
	if c.Score >= t.PassingScore {
		return StatePassed
	}
	return StateFailed
}

// AssignedToUser reports whether the training applies to the user.
// An empty assignment set means open to all.
func (t *Training) AssignedToUser(userID string) bool {
	if len(t.AssignedTo) == 0 {
		return true
	}
	for _, id := range t.AssignedTo {
		if id == userID {
			return true
		}
	}
	return false
}

// Store persists training modules and their completion maps.
type Store interface {
	// Create inserts a new training.
	Create(ctx context.Context, t *Training) error

	// Get returns a training by ID, completions included.
	Get(ctx context.Context, id string) (*Training, error)

	// List returns all trainings.
	List(ctx context.Context) ([]*Training, error)

	// ListForUser returns trainings assigned to the user, including
	// open-to-all modules.
	ListForUser(ctx context.Context, userID string) ([]*Training, error)

	// Assign adds a user to the training's assignment set (idempotent).
	Assign(ctx context.Context, trainingID, userID string) error

	// UpsertCompletion writes the user's completion entry, replacing
	// any existing one for the same (user, training).
	UpsertCompletion(ctx context.Context, trainingID string, c *Completion) error
}
