package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler carries the cross-cutting endpoints (health).
type Handler struct {
	degraded func() bool
}

// NewHandler builds the base handler. degraded reports whether the process
// started in a degraded state (e.g. template store failed to load).
func NewHandler(degraded func() bool) *Handler {
	return &Handler{degraded: degraded}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	status := "healthy"
	if h.degraded != nil && h.degraded() {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data": gin.H{
			"status": status,
		},
	})
}
