// internal/handlers/verification.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/veritrace/veritrace-backend/internal/i18n"
	"github.com/veritrace/veritrace-backend/internal/models"
	"github.com/veritrace/veritrace-backend/internal/services"
	"github.com/veritrace/veritrace-backend/internal/utils"
)

type VerificationHandler struct {
	ledgerService *services.LedgerService
}

// VerificationResult is the public scan response. Product and history are
// present only for registered identifiers.
type VerificationResult struct {
	Status  models.VerificationOutcome `json:"status"`
	Message string                     `json:"message"`
	Product *models.Product            `json:"product,omitempty"`
	History []models.CustodyEvent      `json:"history,omitempty"`
}

func NewVerificationHandler(ledgerService *services.LedgerService) *VerificationHandler {
	return &VerificationHandler{
		ledgerService: ledgerService,
	}
}

// Verify answers a consumer scan. All three outcomes are 200 responses;
// "unregistered" is a result, not a lookup failure.
func (h *VerificationHandler) Verify(c *gin.Context) {
	identifier := c.Param("identifier")
	lang := utils.GetLangFromContext(c)

	outcome, product, err := h.ledgerService.VerifyProduct(identifier)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	result := VerificationResult{
		Status:  outcome,
		Product: product,
	}

	switch outcome {
	case models.VerificationAuthentic:
		result.Message = i18n.T(lang, i18n.KeyVerificationAuthentic)
	case models.VerificationFlagged:
		result.Message = i18n.T(lang, i18n.KeyVerificationFlagged)
	default:
		result.Message = i18n.T(lang, i18n.KeyVerificationUnregistered)
	}

	if product != nil {
		history, err := h.ledgerService.GetHistory(product.ProductID)
		if err == nil {
			result.History = history
		}
	}

	utils.SuccessResponse(c, result)
}
