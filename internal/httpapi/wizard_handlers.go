package httpapi

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/homilybuild/homily/internal/service"
	"github.com/homilybuild/homily/internal/wizard"
)

type stepRequest struct {
	Step int `json:"step" binding:"required"`
}

func (h *handler) registerWizardRoutes(r *gin.RouterGroup) {
	w := r.Group("/homilies/:id/wizard")
	w.GET("", h.openWizard)
	w.PUT("/fields", h.setWizardFields)
	w.POST("/goto", h.gotoStep)
	w.POST("/generate", h.generateStep)
	w.POST("/save", h.saveWizard)
	w.POST("/finalize", h.finalizeWizard)
}

// openWizard loads the session the way a page load does: a step query
// rebuilds it from storage at that step, otherwise the live session is
// reused.
func (h *handler) openWizard(c *gin.Context) {
	owner, id := ownerID(c), c.Param("id")
	var (
		handle *service.WizardHandle
		err    error
	)
	if step := c.Query(wizard.StepParam); step != "" {
		shareURL := fmt.Sprintf("%s/%s?%s=%s", service.ListingPath, url.PathEscape(id), wizard.StepParam, url.QueryEscape(step))
		handle, err = h.wizards.Open(c.Request.Context(), owner, id, shareURL)
	} else {
		handle, err = h.wizards.Session(c.Request.Context(), owner, id)
	}
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionView(handle))
}

func (h *handler) setWizardFields(c *gin.Context) {
	handle, ok := h.session(c)
	if !ok {
		return
	}
	patch, ok := bindFieldPatch(c)
	if !ok {
		return
	}
	for f, v := range patch {
		if err := handle.Session.SetField(f, v); err != nil {
			h.wizardError(c, handle, err)
			return
		}
	}
	c.JSON(http.StatusOK, newSessionView(handle))
}

func (h *handler) gotoStep(c *gin.Context) {
	handle, ok := h.session(c)
	if !ok {
		return
	}
	var req stepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: %v", err)
		return
	}
	if _, err := handle.Session.GoTo(c.Request.Context(), req.Step); err != nil {
		h.wizardError(c, handle, err)
		return
	}
	c.JSON(http.StatusOK, newSessionView(handle))
}

func (h *handler) generateStep(c *gin.Context) {
	handle, ok := h.session(c)
	if !ok {
		return
	}
	var req stepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: %v", err)
		return
	}
	if _, err := handle.Session.Generate(c.Request.Context(), req.Step); err != nil {
		h.wizardError(c, handle, err)
		return
	}
	c.JSON(http.StatusOK, newSessionView(handle))
}

func (h *handler) saveWizard(c *gin.Context) {
	handle, ok := h.session(c)
	if !ok {
		return
	}
	if err := handle.Session.SaveDraft(c.Request.Context()); err != nil {
		h.wizardError(c, handle, err)
		return
	}
	c.JSON(http.StatusOK, newSessionView(handle))
}

func (h *handler) finalizeWizard(c *gin.Context) {
	handle, ok := h.session(c)
	if !ok {
		return
	}
	if err := handle.Session.Finalize(c.Request.Context()); err != nil {
		h.wizardError(c, handle, err)
		return
	}
	h.wizards.Close(handle.OwnerID, handle.HomilyID)
	c.JSON(http.StatusOK, newSessionView(handle))
}

func (h *handler) session(c *gin.Context) (*service.WizardHandle, bool) {
	handle, err := h.wizards.Session(c.Request.Context(), ownerID(c), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return nil, false
	}
	return handle, true
}

// wizardError discards notifications already carried by the error reply.
func (h *handler) wizardError(c *gin.Context, handle *service.WizardHandle, err error) {
	handle.Inbox.Drain()
	handleServiceError(c, err)
}
