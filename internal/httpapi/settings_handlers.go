package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/homilybuild/homily/internal/domain"
)

func (h *handler) registerSettingsRoutes(r *gin.RouterGroup) {
	r.GET("/settings", h.getSettings)
	r.PUT("/settings/definitions", h.setDefinitions)
	r.DELETE("/settings/definitions", h.resetDefinitions)
	r.PUT("/settings/default-context", h.setDefaultContext)
}

func (h *handler) respondSettings(c *gin.Context, s *domain.UserSettings, err error) {
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSettingsView(s))
}

func (h *handler) getSettings(c *gin.Context) {
	s, err := h.settings.Get(c.Request.Context(), ownerID(c))
	h.respondSettings(c, s, err)
}

func (h *handler) setDefinitions(c *gin.Context) {
	var req struct {
		Definitions string `json:"definitions"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: %v", err)
		return
	}
	s, err := h.settings.SetDefinitions(c.Request.Context(), ownerID(c), req.Definitions)
	h.respondSettings(c, s, err)
}

func (h *handler) resetDefinitions(c *gin.Context) {
	s, err := h.settings.ResetDefinitions(c.Request.Context(), ownerID(c))
	h.respondSettings(c, s, err)
}

func (h *handler) setDefaultContext(c *gin.Context) {
	var req struct {
		ContextID string `json:"contextId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: %v", err)
		return
	}
	s, err := h.settings.SetDefaultContext(c.Request.Context(), ownerID(c), req.ContextID)
	h.respondSettings(c, s, err)
}
