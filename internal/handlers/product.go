// internal/handlers/product.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/veritrace/veritrace-backend/internal/i18n"
	"github.com/veritrace/veritrace-backend/internal/services"
	"github.com/veritrace/veritrace-backend/internal/utils"
)

type ProductHandler struct {
	ledgerService *services.LedgerService
	queryService  *services.QueryService
	authService   *services.AuthService
}

func NewProductHandler(ledgerService *services.LedgerService, queryService *services.QueryService, authService *services.AuthService) *ProductHandler {
	return &ProductHandler{
		ledgerService: ledgerService,
		queryService:  queryService,
		authService:   authService,
	}
}

// RegisterProduct mints a new product record owned by the caller's
// custodian identity.
func (h *ProductHandler) RegisterProduct(c *gin.Context) {
	identity, ok := h.callerIdentity(c)
	if !ok {
		return
	}

	var req services.RegisterProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}

	product, err := h.ledgerService.RegisterProduct(identity, &req)
	if err != nil {
		h.handleLedgerError(c, err)
		return
	}

	utils.CreatedResponse(c, product)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	product, err := h.ledgerService.GetProduct(productID)
	if err != nil {
		h.handleLedgerError(c, err)
		return
	}

	utils.SuccessResponse(c, product)
}

// GetMyProducts lists products currently held by the caller.
func (h *ProductHandler) GetMyProducts(c *gin.Context) {
	identity, ok := h.callerIdentity(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	products, total, err := h.queryService.ByOwner(identity, params)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to fetch products")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(products, total, params))
}

// GetManufactured lists everything the caller originally registered,
// regardless of who holds it now.
func (h *ProductHandler) GetManufactured(c *gin.Context) {
	identity, ok := h.callerIdentity(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	products, total, err := h.queryService.ByManufacturer(identity, params)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to fetch products")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(products, total, params))
}

func (h *ProductHandler) GetHistory(c *gin.Context) {
	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	if _, err := h.ledgerService.GetProduct(productID); err != nil {
		h.handleLedgerError(c, err)
		return
	}

	events, err := h.ledgerService.GetHistory(productID)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to fetch custody history")
		return
	}

	utils.SuccessResponse(c, events)
}

func (h *ProductHandler) TransferOwnership(c *gin.Context) {
	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	identity, ok := h.callerIdentity(c)
	if !ok {
		return
	}

	var req services.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}

	product, err := h.ledgerService.TransferOwnership(productID, identity, &req)
	if err != nil {
		h.handleLedgerError(c, err)
		return
	}

	lang := utils.GetLangFromContext(c)
	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyProductTransferred),
		"product": product,
	})
}

// ReportCounterfeit accepts a report from any authenticated caller with a
// bound identity. Ownership is deliberately not required.
func (h *ProductHandler) ReportCounterfeit(c *gin.Context) {
	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	identity, ok := h.callerIdentity(c)
	if !ok {
		return
	}

	var req services.ReportCounterfeitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}

	report, err := h.ledgerService.ReportCounterfeit(productID, identity, &req)
	if err != nil {
		h.handleLedgerError(c, err)
		return
	}

	lang := utils.GetLangFromContext(c)
	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyProductReportAccepted),
		"report":  report,
	})
}

// callerIdentity resolves the authenticated user's bound custodian
// identity, writing the error response itself when there is none.
func (h *ProductHandler) callerIdentity(c *gin.Context) (string, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return "", false
	}

	identity, err := h.authService.CustodianIdentity(userID)
	if err != nil {
		lang := utils.GetLangFromContext(c)
		utils.ErrorResponse(c, http.StatusForbidden, "NO_CUSTODIAN_IDENTITY", i18n.T(lang, i18n.KeyAuthNoCustodian), nil)
		return "", false
	}
	return identity, true
}

func (h *ProductHandler) handleLedgerError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
	case errors.Is(err, services.ErrDuplicateIdentifier):
		utils.ConflictResponse(c, "DUPLICATE_IDENTIFIER", i18n.T(lang, i18n.KeyProductDuplicateIdentifier))
	case errors.Is(err, services.ErrProductNotFound):
		utils.NotFoundResponse(c, i18n.KeyProductNotFound)
	case errors.Is(err, services.ErrNotOwner):
		utils.ErrorResponse(c, http.StatusForbidden, "NOT_OWNER", i18n.T(lang, i18n.KeyProductNotOwner), nil)
	case errors.Is(err, services.ErrProductFlagged):
		utils.ConflictResponse(c, "PRODUCT_FLAGGED", i18n.T(lang, i18n.KeyProductFlagged))
	default:
		utils.InternalErrorResponse(c, "")
	}
}

func parseProductID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return 0, false
	}
	return uint(id), true
}
