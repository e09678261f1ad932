package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type contextRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

func (h *handler) registerContextRoutes(r *gin.RouterGroup) {
	r.GET("/contexts", h.listContexts)
	r.POST("/contexts", h.createContext)
	r.GET("/contexts/:id", h.getContext)
	r.PUT("/contexts/:id", h.updateContext)
	r.DELETE("/contexts/:id", h.deleteContext)
}

func (h *handler) listContexts(c *gin.Context) {
	list, err := h.contexts.List(c.Request.Context(), ownerID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	out := make([]contextView, 0, len(list))
	for _, pc := range list {
		out = append(out, newContextView(pc))
	}
	c.JSON(http.StatusOK, out)
}

func (h *handler) createContext(c *gin.Context) {
	var req contextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: %v", err)
		return
	}
	pc, err := h.contexts.Create(c.Request.Context(), ownerID(c), req.Name, req.Content)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newContextView(pc))
}

func (h *handler) getContext(c *gin.Context) {
	pc, err := h.contexts.GetByID(c.Request.Context(), ownerID(c), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newContextView(pc))
}

func (h *handler) updateContext(c *gin.Context) {
	var req contextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: %v", err)
		return
	}
	pc, err := h.contexts.Update(c.Request.Context(), ownerID(c), c.Param("id"), req.Name, req.Content)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newContextView(pc))
}

func (h *handler) deleteContext(c *gin.Context) {
	if err := h.contexts.Delete(c.Request.Context(), ownerID(c), c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
