package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rowiverse/assessment-backend/internal/http/response"
	"github.com/rowiverse/assessment-backend/internal/services"
)

type ImportHandler struct {
	importService services.ImportService
}

func NewImportHandler(importService services.ImportService) *ImportHandler {
	return &ImportHandler{importService: importService}
}

// RunImport accepts a JSON body naming the target community and either inline
// rows or a source URI. The returned summary is the sole report of the run.
func (ih *ImportHandler) RunImport(c *gin.Context) {
	var req services.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err)
		return
	}
	if req.CommunitySlug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "communitySlug is required"})
		return
	}

	summary, err := ih.importService.RunImport(c.Request.Context(), req)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err)
		return
	}
	response.OK(c, gin.H{"ok": true, "summary": summary})
}
