// internal/utils/identifier.go
package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Product identifiers look like PRD-<base36 timestamp>-<random suffix>,
// uppercase. The timestamp component plus 9 random alphanumerics keeps the
// collision probability negligible; the ledger still treats a collision on
// insert as retryable.
const (
	identifierPrefix       = "PRD"
	identifierSuffixLength = 9
)

var identifierPattern = regexp.MustCompile(`^PRD-[A-Z0-9]+-[A-Z0-9]+$`)

func GenerateProductIdentifier() (string, error) {
	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 36)

	suffix, err := GenerateRandomString(identifierSuffixLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate identifier suffix: %w", err)
	}

	return strings.ToUpper(fmt.Sprintf("%s-%s-%s", identifierPrefix, timestamp, suffix)), nil
}

// NormalizeIdentifier case-normalizes a scanned or typed identifier before
// lookup. Identifiers are stored uppercase.
func NormalizeIdentifier(identifier string) string {
	return strings.ToUpper(strings.TrimSpace(identifier))
}

func ValidIdentifierFormat(identifier string) bool {
	return identifierPattern.MatchString(identifier)
}
