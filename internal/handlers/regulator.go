// internal/handlers/regulator.go
package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/veritrace/veritrace-backend/internal/services"
	"github.com/veritrace/veritrace-backend/internal/utils"
)

type RegulatorHandler struct {
	queryService *services.QueryService
}

func NewRegulatorHandler(queryService *services.QueryService) *RegulatorHandler {
	return &RegulatorHandler{
		queryService: queryService,
	}
}

// GetStats returns the authenticity partition of the whole ledger.
func (h *RegulatorHandler) GetStats(c *gin.Context) {
	authentic, flagged, err := h.queryService.CountsByAuthenticity()
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to compute statistics")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"total_products":  authentic + flagged,
		"authentic_count": authentic,
		"flagged_count":   flagged,
	})
}

// ExportCompliance streams the compliance snapshot as a downloadable JSON
// document. Query filters narrow the included reports.
func (h *RegulatorHandler) ExportCompliance(c *gin.Context) {
	filter := services.ReportFilter{
		ProductID:    c.Query("product_id"),
		Manufacturer: c.Query("manufacturer"),
		Reason:       c.Query("reason"),
		Order:        c.Query("order"),
	}

	export, err := h.queryService.ComplianceExport(filter)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to build compliance export")
		return
	}

	filename := fmt.Sprintf("compliance-report-%s.json", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.JSON(http.StatusOK, export)
}
