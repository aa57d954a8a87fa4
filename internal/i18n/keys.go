// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthRegisterSuccess    = "auth.register_success"
	KeyAuthAccessDenied       = "auth.access_denied"
	KeyAuthNoCustodian        = "auth.no_custodian_identity"
	KeyAuthWalletBound        = "auth.wallet_bound"

	// Products / ledger
	KeyProductRegistered          = "product.registered"
	KeyProductNotFound            = "product.not_found"
	KeyProductDuplicateIdentifier = "product.duplicate_identifier"
	KeyProductTransferred         = "product.transferred"
	KeyProductNotOwner            = "product.not_owner"
	KeyProductFlagged             = "product.flagged"
	KeyProductReportAccepted      = "product.report_accepted"

	// Verification
	KeyVerificationAuthentic    = "verification.authentic"
	KeyVerificationFlagged      = "verification.flagged"
	KeyVerificationUnregistered = "verification.unregistered"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"
)
