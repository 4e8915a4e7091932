package inquiry

import (
	"log/slog"
	"net/http"

	"contactdesk/internal/common"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for the inquiry domain.
type Handler struct {
	service *Service
}

// NewHandler creates a new inquiry handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Submit handles POST /api/contact
// Stores the inquiry and returns 200 even when the confirmation email could not be sent.
func (h *Handler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest, "入力が無効です: "+err.Error())
		return
	}

	resp, err := h.service.Submit(c.Request.Context(), &req)
	if err != nil {
		slog.Error("inquiry submission failed",
			"error", err,
			"to", req.Email,
		)
		common.HandleError(c, err)
		return
	}

	common.Success(c, http.StatusOK, resp)
}

// List handles GET /api/contacts
func (h *Handler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		common.HandleError(c, err)
		return
	}

	common.Success(c, http.StatusOK, items)
}

// Summary handles GET /api/contacts/summary
func (h *Handler) Summary(c *gin.Context) {
	summary, err := h.service.WeeklySummary(c.Request.Context())
	if err != nil {
		common.HandleError(c, err)
		return
	}

	common.Success(c, http.StatusOK, summary)
}

// RegisterRoutes registers the public intake route and the session-protected admin routes.
func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.POST("/contact", h.Submit)
	protected.GET("/contacts", h.List)
	protected.GET("/contacts/summary", h.Summary)
}
