// internal/services/auth_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veritrace/veritrace-backend/internal/config"
	"github.com/veritrace/veritrace-backend/internal/models"
	"github.com/veritrace/veritrace-backend/internal/utils"
)

type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Email    string          `json:"email" validate:"required,email"`
	Name     string          `json:"name" validate:"required,min=2,max=255"`
	Password string          `json:"password" validate:"required,strong_password"`
	Role     models.UserRole `json:"role" validate:"required,oneof=manufacturer distributor consumer regulator"`
	Company  string          `json:"company,omitempty" validate:"omitempty,max=255"`
}

type BindWalletRequest struct {
	// Empty means "generate a custodian identity for me" - the equivalent
	// of connecting a throwaway development wallet.
	CustodianIdentity string `json:"custodian_identity,omitempty" validate:"omitempty,custodian_identity"`
}

type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"` // in seconds
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{
		db:  db,
		cfg: cfg,
	}
}

func (s *AuthService) Register(req *RegisterRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, invalidInput(err)
	}

	var existingUser models.User
	if err := s.db.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		return nil, errors.New("user with this email already exists")
	}

	user := &models.User{
		Email:   req.Email,
		Name:    req.Name,
		Role:    req.Role,
		Company: req.Company,
		Status:  models.UserStatusActive,
	}

	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issueTokens(user)
}

func (s *AuthService) Login(req *LoginRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, invalidInput(err)
	}

	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("invalid email or password")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if user.Status == models.UserStatusSuspended {
		return nil, errors.New("account is suspended")
	}

	if err := user.CheckPassword(req.Password); err != nil {
		return nil, errors.New("invalid email or password")
	}

	now := time.Now()
	user.LastLoginAt = &now
	s.db.Save(&user)

	return s.issueTokens(&user)
}

func (s *AuthService) RefreshToken(refreshToken string) (*AuthResponse, error) {
	userIDStr, err := utils.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID in token: %w", err)
	}

	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	if user.Status != models.UserStatusActive {
		return nil, errors.New("account is not active")
	}

	return s.issueTokens(user)
}

func (s *AuthService) GetUserByID(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

// BindWallet links an authenticated account to an on-ledger custodian
// identity. Every binding is kept as its own auditable row; the user's
// active identity is the most recent one.
func (s *AuthService) BindWallet(userID uuid.UUID, req *BindWalletRequest) (*models.CustodianBinding, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, invalidInput(err)
	}

	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	identity := req.CustodianIdentity
	if identity == "" {
		identity, err = utils.GenerateCustodianIdentity()
		if err != nil {
			return nil, fmt.Errorf("failed to generate custodian identity: %w", err)
		}
	}

	binding := &models.CustodianBinding{
		UserID:            user.ID,
		CustodianIdentity: identity,
		BoundAt:           time.Now(),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(binding).Error; err != nil {
			return err
		}
		return tx.Model(user).Update("wallet_address", identity).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to bind custodian identity: %w", err)
	}

	user.WalletAddress = identity
	return binding, nil
}

// CustodianIdentity resolves the active on-ledger identity for a caller.
// Accounts without a binding cannot hold or move products.
func (s *AuthService) CustodianIdentity(userID uuid.UUID) (string, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return "", err
	}
	if user.WalletAddress == "" {
		return "", errors.New("no custodian identity bound to this account")
	}
	return user.WalletAddress, nil
}

func (s *AuthService) issueTokens(user *models.User) (*AuthResponse, error) {
	accessToken, err := utils.GenerateJWT(
		user.ID,
		user.Name,
		string(user.Role),
		s.cfg.JWT.AccessTokenTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := utils.GenerateRefreshToken(user.ID, s.cfg.JWT.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.cfg.JWT.AccessTokenTTL * 3600,
	}, nil
}
