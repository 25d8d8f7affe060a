package training

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/awareai/awareai/internal/idgen"
	"github.com/awareai/awareai/internal/users"
	"github.com/awareai/awareai/internal/validation"
)

// Handler provides HTTP endpoints for the training catalog and quiz
// submissions.
type Handler struct {
	store   Store
	tracker *Tracker
}

// NewHandler creates a new training handler.
func NewHandler(store Store, tracker *Tracker) *Handler {
	return &Handler{store: store, tracker: tracker}
}

// RegisterRoutes sets up training endpoints.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/trainings", h.ListTrainings)
	r.POST("/trainings", h.CreateTraining)
	r.GET("/trainings/user/:userId", h.ListForUser)
	r.GET("/trainings/:trainingId", h.GetTraining)
	r.POST("/trainings/:trainingId/assign", h.AssignTraining)
	r.POST("/trainings/:trainingId/submit", h.SubmitQuiz)
}

// questionView hides the correct index from catalog responses; it is
// only revealed in post-grading feedback.
type questionView struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

type trainingView struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	Category        string         `json:"category"`
	DurationMinutes int            `json:"durationMinutes"`
	PassingScore    int            `json:"passingScore"`
	Questions       []questionView `json:"questions"`
	AssignedTo      []string       `json:"assignedTo"`
	CreatedAt       string         `json:"createdAt"`
	State           State          `json:"state,omitempty"`
}

func toView(t *Training, userID string) trainingView {
	v := trainingView{
		ID:              t.ID,
		Title:           t.Title,
		Description:     t.Description,
		Category:        t.Category,
		DurationMinutes: t.DurationMinutes,
		PassingScore:    t.PassingScore,
		AssignedTo:      t.AssignedTo,
		CreatedAt:       t.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	for _, q := range t.Questions {
		v.Questions = append(v.Questions, questionView{Prompt: q.Prompt, Options: q.Options})
	}
	if userID != "" {
		v.State = t.StateFor(userID)
	}
	return v
}

// ListTrainings returns the whole catalog, correct answers hidden.
func (h *Handler) ListTrainings(c *gin.Context) {
	list, err := h.store.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to list trainings",
		})
		return
	}
	out := make([]trainingView, 0, len(list))
	for _, t := range list {
		out = append(out, toView(t, ""))
	}
	c.JSON(http.StatusOK, gin.H{"trainings": out, "count": len(out)})
}

// ListForUser returns the trainings assigned to a user, each with that
// user's derived state.
func (h *Handler) ListForUser(c *gin.Context) {
	userID := c.Param("userId")
	list, err := h.store.ListForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to list trainings",
		})
		return
	}
	out := make([]trainingView, 0, len(list))
	for _, t := range list {
		out = append(out, toView(t, userID))
	}
	c.JSON(http.StatusOK, gin.H{"trainings": out, "count": len(out)})
}

// GetTraining returns one training, correct answers hidden.
func (h *Handler) GetTraining(c *gin.Context) {
	t, err := h.store.Get(c.Request.Context(), c.Param("trainingId"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "training_not_found",
				"message": "No training with that ID",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to load training",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"training": toView(t, c.Query("userId"))})
}

// CreateTrainingRequest is the POST /trainings payload.
type CreateTrainingRequest struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Category        string     `json:"category"`
	DurationMinutes int        `json:"durationMinutes"`
	PassingScore    int        `json:"passingScore"`
	Questions       []Question `json:"questions"`
	AssignedTo      []string   `json:"assignedTo"`
}

// CreateTraining adds a module to the catalog.
func (h *Handler) CreateTraining(c *gin.Context) {
	var req CreateTrainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Request body must be valid JSON",
		})
		return
	}

	errs := validation.Validate(
		validation.Required("title", req.Title),
		validation.MaxLength("title", req.Title, 300),
		validation.Percentage("passingScore", req.PassingScore),
	)
	for i, q := range req.Questions {
		if strings.TrimSpace(q.Prompt) == "" || len(q.Options) < 2 ||
			q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			errs = append(errs, validation.ValidationError{
				Field:   "questions",
				Message: fmt.Sprintf("question %d needs a prompt, at least two options, and a valid correct index", i+1),
			})
			break
		}
	}
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_failed",
			"message": errs.Error(),
			"details": errs,
		})
		return
	}

	t := &Training{
		ID:              idgen.WithPrefix("trn_"),
		Title:           strings.TrimSpace(req.Title),
		Description:     strings.TrimSpace(req.Description),
		Category:        strings.TrimSpace(req.Category),
		DurationMinutes: req.DurationMinutes,
		PassingScore:    req.PassingScore,
		Questions:       req.Questions,
		AssignedTo:      req.AssignedTo,
	}
	if err := h.store.Create(c.Request.Context(), t); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to create training",
		})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"training": toView(t, "")})
}

// AssignTrainingRequest is the POST /trainings/:id/assign payload.
type AssignTrainingRequest struct {
	UserID string `json:"userId"`
}

// AssignTraining adds a user to a training's assignment set.
func (h *Handler) AssignTraining(c *gin.Context) {
	var req AssignTrainingRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.UserID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "userId is required",
		})
		return
	}

	if err := h.store.Assign(c.Request.Context(), c.Param("trainingId"), req.UserID); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "training_not_found",
				"message": "No training with that ID",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to assign training",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"assigned": true})
}

// SubmitQuizRequest is the POST /trainings/:id/submit payload. Answers
// is raw so a non-array payload can be rejected explicitly.
type SubmitQuizRequest struct {
	UserID  string          `json:"userId"`
	Answers json.RawMessage `json:"answers"`
}

// SubmitQuiz grades a quiz submission and records the completion.
func (h *Handler) SubmitQuiz(c *gin.Context) {
	var req SubmitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Request body must be valid JSON",
		})
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_failed",
			"message": "userId is required",
		})
		return
	}

	// A JSON null unmarshals into a nil slice without error, so check for
	// nil as well: anything but an actual list is rejected before grading.
	var answers []int
	if len(req.Answers) == 0 || json.Unmarshal(req.Answers, &answers) != nil || answers == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_failed",
			"message": ErrInvalidAnswers.Error(),
		})
		return
	}

	res, err := h.tracker.SubmitQuiz(c.Request.Context(), c.Param("trainingId"), req.UserID, answers)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "training_not_found",
				"message": "No training with that ID",
			})
		case errors.Is(err, users.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "user_not_found",
				"message": "No user with that ID",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "internal_error",
				"message": "Failed to grade submission",
			})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": res})
}
