package events

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/awareai/awareai/internal/idgen"
	"github.com/awareai/awareai/internal/metrics"
	"github.com/awareai/awareai/internal/realtime"
	"github.com/awareai/awareai/internal/validation"
)

// Handler provides HTTP endpoints for phishing-simulation events.
type Handler struct {
	store Store
	hub   *realtime.Hub // optional
}

// NewHandler creates a new event handler. hub may be nil.
func NewHandler(store Store, hub *realtime.Hub) *Handler {
	return &Handler{store: store, hub: hub}
}

// RegisterRoutes sets up event endpoints.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/events/track", h.TrackEvent)
	r.GET("/events", h.ListEvents)
	r.GET("/events/stats/:campaignId", h.CampaignStats)
}

// TrackEventRequest is the POST /events/track payload.
type TrackEventRequest struct {
	UserID     string            `json:"userId"`
	CampaignID string            `json:"campaignId"`
	Type       string            `json:"type"`
	Metadata   map[string]string `json:"metadata"`
}

// TrackEvent records one phishing-simulation interaction.
func (h *Handler) TrackEvent(c *gin.Context) {
	var req TrackEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Request body must be valid JSON",
		})
		return
	}

	errs := validation.Validate(
		validation.Required("userId", req.UserID),
		validation.Required("campaignId", req.CampaignID),
		validation.Required("type", req.Type),
	)
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_failed",
			"message": errs.Error(),
			"details": errs,
		})
		return
	}

	typ := Type(strings.ToLower(strings.TrimSpace(req.Type)))
	if !ValidType(typ) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "unknown_event_type",
			"message": "Event type must be one of: sent, opened, clicked, submitted, reported",
		})
		return
	}

	e := &Event{
		ID:         idgen.WithPrefix("evt_"),
		UserID:     req.UserID,
		CampaignID: req.CampaignID,
		Type:       typ,
		IPAddress:  c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
		Metadata:   req.Metadata,
	}
	if err := h.store.Append(c.Request.Context(), e); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to record event",
		})
		return
	}

	metrics.PhishingEventsTotal.WithLabelValues(string(typ)).Inc()
	if h.hub != nil {
		h.hub.Publish(realtime.EventPhishing, map[string]interface{}{
			"userId":     e.UserID,
			"campaignId": e.CampaignID,
			"eventType":  string(e.Type),
		})
	}

	c.JSON(http.StatusCreated, gin.H{"event": e})
}

// ListEvents returns events, optionally filtered by user, campaign or type.
func (h *Handler) ListEvents(c *gin.Context) {
	f := Filter{
		UserID:     c.Query("userId"),
		CampaignID: c.Query("campaignId"),
	}
	if t := c.Query("type"); t != "" {
		typ := Type(strings.ToLower(t))
		if !ValidType(typ) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "unknown_event_type",
				"message": "Event type must be one of: sent, opened, clicked, submitted, reported",
			})
			return
		}
		f.Type = typ
	}
	if l := c.Query("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_limit",
				"message": "limit must be a non-negative integer",
			})
			return
		}
		f.Limit = n
	}

	list, err := h.store.List(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to list events",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": list, "count": len(list)})
}

// CampaignStats aggregates per-type counts for a campaign, with click
// and report rates relative to the number of messages sent.
func (h *Handler) CampaignStats(c *gin.Context) {
	campaignID := c.Param("campaignId")

	counts, err := h.store.CountByCampaign(c.Request.Context(), campaignID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to aggregate campaign stats",
		})
		return
	}

	sent := counts[TypeSent]
	clickRate, reportRate := 0.0, 0.0
	if sent > 0 {
		clickRate = float64(counts[TypeClicked]) / float64(sent)
		reportRate = float64(counts[TypeReported]) / float64(sent)
	}

	c.JSON(http.StatusOK, gin.H{
		"campaignId": campaignID,
		"counts": gin.H{
			"sent":      sent,
			"opened":    counts[TypeOpened],
			"clicked":   counts[TypeClicked],
			"submitted": counts[TypeSubmitted],
			"reported":  counts[TypeReported],
		},
		"clickRate":  clickRate,
		"reportRate": reportRate,
	})
}
