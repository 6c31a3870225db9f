package intelligence

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/massaflow/practice-api/internal/handler"
	"github.com/massaflow/practice-api/internal/intelligence"
)

type Handler struct {
	service *intelligence.Service
	// dashboard aggregates walk every appointment and log row, so results
	// are cached for a short TTL keyed by user.
	cache *gocache.Cache
}

func NewHandler(service *intelligence.Service, cacheTTL time.Duration) *Handler {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &Handler{
		service: service,
		cache:   gocache.New(cacheTTL, 2*cacheTTL),
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	ai := r.Group("/intelligence")
	{
		ai.GET("/risk", h.HighRiskClients)
		ai.GET("/clients/:id/health", h.ClientHealth)
		ai.GET("/dashboard", h.Dashboard)
	}
}

func (h *Handler) HighRiskClients(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid user ID"))
		return
	}

	risks, err := h.service.HighRiskClients(c.Request.Context(), userID)
	if err != nil {
		handler.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(risks))
}

func (h *Handler) ClientHealth(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid user ID"))
		return
	}
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid client ID"))
		return
	}

	health, err := h.service.ClientHealth(c.Request.Context(), userID, clientID)
	if err != nil {
		handler.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(health))
}

func (h *Handler) Dashboard(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid user ID"))
		return
	}

	key := userID.String()
	if cached, ok := h.cache.Get(key); ok {
		c.JSON(http.StatusOK, handler.NewSuccessResponse(cached))
		return
	}

	dash, err := h.service.Dashboard(c.Request.Context(), userID)
	if err != nil {
		handler.WriteError(c, err)
		return
	}
	h.cache.Set(key, dash, gocache.DefaultExpiration)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(dash))
}
