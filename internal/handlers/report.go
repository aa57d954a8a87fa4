// internal/handlers/report.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/veritrace/veritrace-backend/internal/services"
	"github.com/veritrace/veritrace-backend/internal/utils"
)

type ReportHandler struct {
	queryService *services.QueryService
}

func NewReportHandler(queryService *services.QueryService) *ReportHandler {
	return &ReportHandler{
		queryService: queryService,
	}
}

// ListReports returns the filtered report log, enriched with current
// product state. Filters are AND-combined substrings.
func (h *ReportHandler) ListReports(c *gin.Context) {
	filter := services.ReportFilter{
		ProductID:    c.Query("product_id"),
		Manufacturer: c.Query("manufacturer"),
		Reason:       c.Query("reason"),
		Order:        c.Query("order"),
	}

	reports, err := h.queryService.EnrichedReports(filter)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to fetch reports")
		return
	}

	utils.SuccessResponse(c, reports)
}
