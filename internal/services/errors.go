// internal/services/errors.go
package services

import (
	"errors"
	"fmt"
)

// Ledger failure taxonomy. Handlers map these to distinct response codes;
// none of them may be collapsed into a generic boolean.
var (
	// ErrDuplicateIdentifier: registration collided on an identifier. The
	// ledger retries internally for identifiers it generated itself; a
	// caller-supplied identifier surfaces this as a hard failure.
	ErrDuplicateIdentifier = errors.New("identifier is already registered")

	// ErrProductNotFound: no product under the given id. For verification
	// by identifier this is not an error at all, see VerifyProduct.
	ErrProductNotFound = errors.New("product not found")

	// ErrNotOwner: transfer attempted by a caller that is not the current
	// custodian. No mutation occurs.
	ErrNotOwner = errors.New("caller is not the current owner")

	// ErrProductFlagged: transfer attempted on a product already reported
	// as counterfeit.
	ErrProductFlagged = errors.New("product is flagged as counterfeit")

	// ErrInvalidInput: malformed request rejected before any state check.
	ErrInvalidInput = errors.New("invalid input")
)

func invalidInput(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}
