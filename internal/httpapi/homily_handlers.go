package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/homilybuild/homily/internal/domain"
	"github.com/homilybuild/homily/internal/repository"
	"github.com/homilybuild/homily/internal/service"
)

func (h *handler) registerHomilyRoutes(r *gin.RouterGroup) {
	r.GET("/homilies", h.listHomilies)
	r.POST("/homilies", h.createHomily)
	r.GET("/homilies/:id", h.getHomily)
	r.PATCH("/homilies/:id", h.updateHomily)
	r.DELETE("/homilies/:id", h.deleteHomily)
	r.GET("/homilies/:id/export", h.exportHomily)
	r.GET("/dashboard", h.dashboard)
}

func (h *handler) listHomilies(c *gin.Context) {
	params := repository.ListParams{
		Search: c.Query("search"),
		SortBy: c.Query("sortBy"),
	}
	var err error
	if params.Page, err = queryInt(c, "page"); err != nil {
		badRequest(c, "page must be a number")
		return
	}
	if params.PageSize, err = queryInt(c, "pageSize"); err != nil {
		badRequest(c, "pageSize must be a number")
		return
	}
	if params.SortOrder, err = repository.ParseSortOrder(c.Query("sortOrder")); err != nil {
		badRequest(c, "%v", err)
		return
	}

	page, err := h.homilies.List(c.Request.Context(), ownerID(c), params)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPageView(page))
}

func (h *handler) createHomily(c *gin.Context) {
	var in service.CreateHomilyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body: %v", err)
		return
	}
	created, err := h.homilies.Create(c.Request.Context(), ownerID(c), in)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newHomilyView(created))
}

func (h *handler) getHomily(c *gin.Context) {
	found, err := h.homilies.GetByID(c.Request.Context(), ownerID(c), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newHomilyView(found))
}

func (h *handler) updateHomily(c *gin.Context) {
	patch, ok := bindFieldPatch(c)
	if !ok {
		return
	}
	updated, err := h.homilies.Update(c.Request.Context(), ownerID(c), c.Param("id"), patch)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newHomilyView(updated))
}

func (h *handler) deleteHomily(c *gin.Context) {
	owner, id := ownerID(c), c.Param("id")
	if err := h.homilies.Delete(c.Request.Context(), owner, id); err != nil {
		handleServiceError(c, err)
		return
	}
	h.wizards.Close(owner, id)
	c.Status(http.StatusNoContent)
}

func (h *handler) exportHomily(c *gin.Context) {
	page, err := h.homilies.ExportHTML(c.Request.Context(), ownerID(c), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func (h *handler) dashboard(c *gin.Context) {
	d, err := h.homilies.Dashboard(c.Request.Context(), ownerID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboardView{
		Total:  d.Total,
		Counts: d.Counts,
		Recent: newHomilyViews(d.Recent),
	})
}

// bindFieldPatch decodes {"field": "value", ...} keyed by field name.
func bindFieldPatch(c *gin.Context) (map[domain.Field]string, bool) {
	var raw map[string]string
	if err := c.ShouldBindJSON(&raw); err != nil {
		badRequest(c, "invalid request body: %v", err)
		return nil, false
	}
	if len(raw) == 0 {
		badRequest(c, "no fields to update")
		return nil, false
	}
	patch := make(map[domain.Field]string, len(raw))
	for k, v := range raw {
		f, err := domain.ParseField(k)
		if err != nil {
			badRequest(c, "%v", err)
			return nil, false
		}
		patch[f] = v
	}
	return patch, true
}

func queryInt(c *gin.Context, key string) (int, error) {
	v := c.Query(key)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
