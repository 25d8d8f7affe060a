package risk

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/awareai/awareai/internal/users"
)

// maxHistoryLimit caps how many records one history request returns.
const maxHistoryLimit = 50

// Handler provides HTTP endpoints for risk scores.
type Handler struct {
	engine *Engine
	store  Store
}

// NewHandler creates a new risk handler.
func NewHandler(engine *Engine, store Store) *Handler {
	return &Handler{engine: engine, store: store}
}

// RegisterRoutes sets up risk endpoints.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/risk/:userId/calculate", h.Calculate)
	r.GET("/risk/:userId", h.Current)
	r.GET("/risk/:userId/history", h.History)
}

// Calculate recomputes and persists the user's risk score.
func (h *Handler) Calculate(c *gin.Context) {
	r, err := h.engine.Calculate(c.Request.Context(), c.Param("userId"))
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
			"message": "Failed to calculate risk score",
		})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"riskScore": r})
}

// Current returns the user's most recent score record.
func (h *Handler) Current(c *gin.Context) {
	r, err := h.store.Latest(c.Request.Context(), c.Param("userId"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "score_not_found",
				"message": "No score has been calculated for that user yet",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to load risk score",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"riskScore": r})
}

// History returns the user's score records, newest first, capped at 50.
func (h *Handler) History(c *gin.Context) {
	limit := maxHistoryLimit
	if l := c.Query("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_limit",
				"message": "limit must be a positive integer",
			})
			return
		}
		if n < limit {
			limit = n
		}
	}

	list, err := h.store.History(c.Request.Context(), c.Param("userId"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to load score history",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": list, "count": len(list)})
}
