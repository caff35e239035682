package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rowiverse/assessment-backend/internal/data/repos"
	"github.com/rowiverse/assessment-backend/internal/http/response"
	"github.com/rowiverse/assessment-backend/internal/services"
)

type BenchmarkHandler struct {
	catalogService services.BenchmarkCatalogService
}

func NewBenchmarkHandler(catalogService services.BenchmarkCatalogService) *BenchmarkHandler {
	return &BenchmarkHandler{catalogService: catalogService}
}

func (bh *BenchmarkHandler) List(c *gin.Context) {
	filter := repos.BenchmarkListFilter{
		Type:    c.Query("type"),
		Country: c.Query("country"),
		Region:  c.Query("region"),
		Sector:  c.Query("sector"),
	}
	benchmarks, err := bh.catalogService.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err)
		return
	}
	response.OK(c, gin.H{"ok": true, "benchmarks": benchmarks})
}

// Recompute rebuilds the community-derived benchmark for one community.
func (bh *BenchmarkHandler) Recompute(c *gin.Context) {
	communityID, err := uuid.Parse(c.Param("communityId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "communityId must be a uuid"})
		return
	}
	benchmark, err := bh.catalogService.RecomputeCommunity(c.Request.Context(), communityID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err)
		return
	}
	response.OK(c, gin.H{"ok": true, "benchmark": benchmark})
}
