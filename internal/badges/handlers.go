package badges

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/awareai/awareai/internal/idgen"
	"github.com/awareai/awareai/internal/validation"
)

// Handler provides HTTP endpoints for badge definitions.
type Handler struct {
	store Store
}

// NewHandler creates a new badge handler.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes sets up badge endpoints.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/badges", h.ListBadges)
	r.POST("/badges", h.CreateBadge)
	r.GET("/badges/:badgeId", h.GetBadge)
}

// CreateBadgeRequest is the POST /badges payload.
type CreateBadgeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IconURL     string `json:"iconUrl"`
	Criteria    string `json:"criteria"`
}

// CreateBadge adds a new badge definition.
func (h *Handler) CreateBadge(c *gin.Context) {
	var req CreateBadgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Request body must be valid JSON",
		})
		return
	}

	errs := validation.Validate(
		validation.Required("name", req.Name),
		validation.MaxLength("name", req.Name, 200),
		validation.MaxLength("description", req.Description, 1000),
	)
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_failed",
			"message": errs.Error(),
			"details": errs,
		})
		return
	}

	b := &Badge{
		ID:          idgen.WithPrefix("bdg_"),
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		IconURL:     strings.TrimSpace(req.IconURL),
		Criteria:    strings.TrimSpace(req.Criteria),
	}
	if err := h.store.Create(c.Request.Context(), b); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to create badge",
		})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"badge": b})
}

// ListBadges returns all badges with their award counts.
func (h *Handler) ListBadges(c *gin.Context) {
	list, err := h.store.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to list badges",
		})
		return
	}

	type badgeWithCount struct {
		*Badge
		AwardCount int `json:"awardCount"`
	}
	out := make([]badgeWithCount, 0, len(list))
	for _, b := range list {
		n, err := h.store.CountAwards(c.Request.Context(), b.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "internal_error",
				"message": "Failed to count badge awards",
			})
			return
		}
		out = append(out, badgeWithCount{Badge: b, AwardCount: n})
	}
	c.JSON(http.StatusOK, gin.H{"badges": out, "count": len(out)})
}

// GetBadge returns one badge with its awards.
func (h *Handler) GetBadge(c *gin.Context) {
	b, err := h.store.Get(c.Request.Context(), c.Param("badgeId"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "badge_not_found",
				"message": "No badge with that ID",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to load badge",
		})
		return
	}

	awards, err := h.store.ListAwards(c.Request.Context(), b.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to load badge awards",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"badge": b, "awards": awards, "awardCount": len(awards)})
}
