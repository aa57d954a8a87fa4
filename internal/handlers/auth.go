// internal/handlers/auth.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/veritrace/veritrace-backend/internal/i18n"
	"github.com/veritrace/veritrace-backend/internal/services"
	"github.com/veritrace/veritrace-backend/internal/utils"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}

	response, err := h.authService.Register(&req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
			return
		}
		lang := utils.GetLangFromContext(c)
		if err.Error() == "user with this email already exists" {
			utils.ConflictResponse(c, "USER_EXISTS", i18n.T(lang, i18n.KeyAuthUserExists))
			return
		}
		utils.InternalErrorResponse(c, "Failed to register user")
		return
	}

	utils.CreatedResponse(c, response)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}

	response, err := h.authService.Login(&req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
			return
		}
		lang := utils.GetLangFromContext(c)
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidCredentials))
		return
	}

	utils.SuccessResponse(c, response)
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Refresh token is required", err.Error())
		return
	}

	response, err := h.authService.RefreshToken(req.RefreshToken)
	if err != nil {
		lang := utils.GetLangFromContext(c)
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidToken))
		return
	}

	utils.SuccessResponse(c, response)
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		utils.NotFoundResponse(c, i18n.KeyAuthRequired)
		return
	}

	utils.SuccessResponse(c, user)
}

// BindWallet links the account to a custodian identity. An empty body asks
// the server to mint one.
func (h *AuthHandler) BindWallet(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.BindWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request format", err.Error())
		return
	}

	binding, err := h.authService.BindWallet(userID, &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
			return
		}
		utils.InternalErrorResponse(c, "Failed to bind custodian identity")
		return
	}

	lang := utils.GetLangFromContext(c)
	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyAuthWalletBound),
		"binding": binding,
	})
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, false
	}
	return userID, true
}
