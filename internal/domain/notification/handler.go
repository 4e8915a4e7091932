package notification

import (
	"net/http"

	"contactdesk/internal/common"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for the delivery log.
type Handler struct {
	service *Service
}

// NewHandler creates a new notification handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetNotification handles GET /api/notifications/:id
func (h *Handler) GetNotification(c *gin.Context) {
	log, err := h.service.GetDelivery(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.HandleError(c, err)
		return
	}

	common.Success(c, http.StatusOK, log)
}

// ListNotifications handles GET /api/notifications
func (h *Handler) ListNotifications(c *gin.Context) {
	var filter ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		common.Error(c, http.StatusBadRequest, "invalid query parameters: "+err.Error())
		return
	}

	resp, err := h.service.ListDeliveries(c.Request.Context(), filter)
	if err != nil {
		common.HandleError(c, err)
		return
	}

	common.Success(c, http.StatusOK, resp)
}

// RegisterRoutes registers the delivery log routes on a session-protected group.
func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	protected.GET("/notifications", h.ListNotifications)
	protected.GET("/notifications/:id", h.GetNotification)
}
