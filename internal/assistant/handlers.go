package assistant

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/awareai/awareai/internal/metrics"
	"github.com/awareai/awareai/internal/traces"
	"github.com/awareai/awareai/internal/validation"
)

// Handler provides the HTTP endpoint for the chat responder.
type Handler struct{}

// NewHandler creates a new assistant handler.
func NewHandler() *Handler {
	return &Handler{}
}

// RegisterRoutes sets up the chat endpoint.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/chat", h.Chat)
}

// ChatRequest is the POST /chat payload.
type ChatRequest struct {
	Message string `json:"message"`
}

// Chat answers one message from the knowledge base.
func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Request body must be valid JSON",
		})
		return
	}
	if len(req.Message) > validation.MaxChatMessageLength {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "message_too_long",
			"message": "Message exceeds the maximum length",
		})
		return
	}

	_, span := traces.StartSpan(c.Request.Context(), "assistant.chat")
	defer span.End()

	resp, err := Respond(req.Message)
	if err != nil {
		if errors.Is(err, ErrBlankMessage) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "blank_message",
				"message": "Message must not be empty",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to answer message",
		})
		return
	}

	span.SetAttributes(traces.Category(resp.Category))
	metrics.ChatRequestsTotal.WithLabelValues(resp.Category).Inc()
	c.JSON(http.StatusOK, resp)
}
