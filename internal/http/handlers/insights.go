package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rowiverse/assessment-backend/internal/http/response"
	"github.com/rowiverse/assessment-backend/internal/modules/insights"
	"github.com/rowiverse/assessment-backend/internal/services"
)

type InsightsHandler struct {
	comparisonService services.ComparisonService
}

func NewInsightsHandler(comparisonService services.ComparisonService) *InsightsHandler {
	return &InsightsHandler{comparisonService: comparisonService}
}

// Comparison answers GET /api/insights/comparison. A scope without data comes
// back as the explicit no-data shape with a 200, not as an error or an empty
// comparison.
func (ih *InsightsHandler) Comparison(c *gin.Context) {
	accountID, err := uuid.Parse(c.Query("accountId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "accountId must be a uuid"})
		return
	}

	req := services.ComparisonRequest{
		AccountID:   accountID,
		CompareWith: c.Query("compareWith"),
		Outcome:     c.Query("outcome"),
		Country:     c.Query("country"),
		Region:      c.Query("region"),
		Sector:      c.Query("sector"),
	}
	if raw := c.Query("benchmarkId"); raw != "" {
		benchmarkID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "benchmarkId must be a uuid"})
			return
		}
		req.BenchmarkID = &benchmarkID
	}

	result, err := ih.comparisonService.Compare(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, insights.ErrNoData) {
			response.NoData(c, "no data available for the requested scope")
			return
		}
		response.Error(c, http.StatusInternalServerError, err)
		return
	}
	response.OK(c, result)
}
