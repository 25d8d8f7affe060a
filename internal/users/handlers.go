package users

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/awareai/awareai/internal/idgen"
	"github.com/awareai/awareai/internal/validation"
)

// Handler provides HTTP endpoints for user records.
type Handler struct {
	store Store
}

// NewHandler creates a new user handler.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes sets up user endpoints.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/users", h.CreateUser)
	r.GET("/users", h.ListUsers)
	r.GET("/users/:userId", h.GetUser)
}

// CreateUserRequest is the POST /users payload.
type CreateUserRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

// CreateUser registers a new employee record.
func (h *Handler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Request body must be valid JSON",
		})
		return
	}

	errs := validation.Validate(
		validation.Required("name", req.Name),
		validation.Required("email", req.Email),
		validation.MaxLength("name", req.Name, 200),
		validation.MaxLength("department", req.Department, 200),
	)
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_failed",
			"message": errs.Error(),
			"details": errs,
		})
		return
	}

	u := &User{
		ID:         idgen.WithPrefix("usr_"),
		Name:       strings.TrimSpace(req.Name),
		Email:      strings.ToLower(strings.TrimSpace(req.Email)),
		Department: strings.TrimSpace(req.Department),
	}
	if err := h.store.Create(c.Request.Context(), u); err != nil {
		if errors.Is(err, ErrExists) {
			c.JSON(http.StatusConflict, gin.H{
				"error":   "email_taken",
				"message": "A user with that email already exists",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to create user",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": u})
}

// ListUsers returns all users.
func (h *Handler) ListUsers(c *gin.Context) {
	list, err := h.store.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to list users",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": list, "count": len(list)})
}

// GetUser returns one user by ID.
func (h *Handler) GetUser(c *gin.Context) {
	u, err := h.store.Get(c.Request.Context(), c.Param("userId"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "user_not_found",
				"message": "No user with that ID",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to load user",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}
