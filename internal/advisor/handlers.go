package advisor

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/awareai/awareai/internal/users"
)

// Handler provides HTTP endpoints for behavior analysis and
// recommendations.
type Handler struct {
	svc *Service
}

// NewHandler creates a new advisor handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes sets up advisor endpoints.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/advisor/:userId/analysis", h.Analyze)
	r.GET("/advisor/:userId/recommendations", h.Recommend)
}

// Analyze returns the user's behavioral analysis.
func (h *Handler) Analyze(c *gin.Context) {
	a, err := h.svc.Analyze(c.Request.Context(), c.Param("userId"))
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "user_not_found",
				"message": "No user with that ID",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to analyze behavior",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"analysis": a})
}

// Recommend returns prioritized focus areas for the user.
func (h *Handler) Recommend(c *gin.Context) {
	recs, err := h.svc.Recommend(c.Request.Context(), c.Param("userId"))
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "user_not_found",
				"message": "No user with that ID",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to build recommendations",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": recs, "count": len(recs)})
}
