package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/recipemanager/server/internal/infrastructure/monitoring"
	"github.com/recipemanager/server/internal/ports/inbound"
)

// ContactHandler accepts contact form submissions
type ContactHandler struct {
	contact inbound.ContactService
	metrics *monitoring.Metrics
}

// NewContactHandler creates a new contact handler
func NewContactHandler(contact inbound.ContactService, metrics *monitoring.Metrics) *ContactHandler {
	return &ContactHandler{contact: contact, metrics: metrics}
}

// Submit handles POST /api/contact
func (h *ContactHandler) Submit(c *gin.Context) {
	var cmd inbound.ContactCommand
	if !bindJSON(c, &cmd) {
		return
	}

	receipt, err := h.contact.Submit(c.Request.Context(), cmd)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.metrics.RecordContactMessage()
	respond(c, http.StatusCreated, gin.H{
		"message":      "Thank you for your message. We will get back to you soon.",
		"id":           receipt.ID,
		"submitted_at": receipt.SubmittedAt,
	})
}
