package automation

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/massaflow/practice-api/internal/analytics"
	"github.com/massaflow/practice-api/internal/automation"
	"github.com/massaflow/practice-api/internal/handler"
)

type Handler struct {
	orchestrator *automation.Orchestrator
	analytics    analytics.Sink
}

func NewHandler(orch *automation.Orchestrator, sink analytics.Sink) *Handler {
	return &Handler{orchestrator: orch, analytics: sink}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/automation/run", h.TriggerCycle)
	r.POST("/events", h.TrackEvent)
}

// TriggerCycle runs one automation pass synchronously and returns its
// report. The worker remains the primary driver; this endpoint exists for
// operational use and demos.
func (h *Handler) TriggerCycle(c *gin.Context) {
	report, err := h.orchestrator.RunCycle(c.Request.Context())
	if err != nil {
		handler.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(report))
}

type trackEventRequest struct {
	Name       string                 `json:"name" validate:"required,max=100"`
	UserID     string                 `json:"user_id" validate:"omitempty,uuid"`
	Properties map[string]interface{} `json:"properties"`
}

// TrackEvent forwards a client-side engagement event into the analytics
// pipeline.
func (h *Handler) TrackEvent(c *gin.Context) {
	var req trackEventRequest
	if !handler.BindAndValidate(c, &req) {
		return
	}

	h.analytics.Track(req.Name, req.Properties, req.UserID)
	c.JSON(http.StatusAccepted, handler.NewSuccessResponse(gin.H{"tracked": true}))
}
