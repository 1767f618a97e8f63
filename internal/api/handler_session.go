package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"smartbuy-backend/internal/notification"
)

// GetLayout handles GET /api/layout.
func (h *Handler) GetLayout(c *gin.Context) {
	c.JSON(http.StatusOK, h.layout)
}

// GetSession handles GET /api/session.
func (h *Handler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.View())
}

// StartSession handles POST /api/session/start.
func (h *Handler) StartSession(c *gin.Context) {
	if err := h.session.Start(); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.session.View())
}

// PauseSession handles POST /api/session/pause.
func (h *Handler) PauseSession(c *gin.Context) {
	if err := h.session.Pause(); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.session.View())
}

type continueRequest struct {
	Photo string `json:"photo"`
}

// ContinueSession handles POST /api/session/continue. The body is optional.
func (h *Handler) ContinueSession(c *gin.Context) {
	var req continueRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
	}

	if err := h.session.Continue(req.Photo); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.session.View())
}

// CaptureSession handles POST /api/session/capture.
func (h *Handler) CaptureSession(c *gin.Context) {
	photo, err := h.session.Capture()
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"photo": photo})
}

type addItemRequest struct {
	Name    string `json:"name" binding:"required"`
	Section string `json:"section"`
	Rack    string `json:"rackId"`
	Photo   string `json:"photo"`
}

// AddItem handles POST /api/items.
func (h *Handler) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	entry, err := h.session.AddItem(req.Name, req.Section, req.Rack, req.Photo)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

type collectItemRequest struct {
	Photo string `json:"photo"`
}

// CollectItem handles POST /api/items/:id/collect. The body is optional.
func (h *Handler) CollectItem(c *gin.Context) {
	var req collectItemRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
	}

	entry, err := h.session.CollectItem(c.Param("id"), req.Photo)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// AcceptRecommendation handles POST /api/recommendations/:id/accept.
func (h *Handler) AcceptRecommendation(c *gin.Context) {
	entry, err := h.session.AcceptRecommendation(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// DismissRecommendation handles POST /api/recommendations/:id/dismiss.
func (h *Handler) DismissRecommendation(c *gin.Context) {
	if err := h.session.DismissRecommendation(c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RequestAssistance handles POST /api/assistance. Staff are notified in the background.
func (h *Handler) RequestAssistance(c *gin.Context) {
	a, err := h.session.RequestAssistance()
	if err != nil {
		abortWithError(c, err)
		return
	}

	if h.pool != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		err := h.pool.Dispatch(ctx, notification.AssistanceRequest{
			Section:     a.Section,
			Rack:        a.Rack,
			RequestedAt: a.RequestedAt,
		})
		if err != nil {
			log.Printf("Error queueing assistance request: %v", err)
		}
	}

	c.JSON(http.StatusAccepted, a)
}
