package httpapi

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/homilybuild/homily/internal/importer"
)

func (h *handler) registerArchiveRoutes(r *gin.RouterGroup) {
	r.GET("/archive", h.exportArchive)
	r.POST("/archive", h.importArchive)
}

func (h *handler) exportArchive(c *gin.Context) {
	a, err := h.archives.Export(c.Request.Context(), ownerID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="homilies-%s.json"`, a.ExportedAt[:10]))
	c.JSON(http.StatusOK, a)
}

func (h *handler) importArchive(c *gin.Context) {
	a, err := importer.ParseArchive(c.Request.Body)
	if err != nil {
		badRequest(c, "invalid archive: %v", err)
		return
	}
	res, err := h.archives.Import(c.Request.Context(), ownerID(c), a)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}
