// internal/utils/identifier_test.go
package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateProductIdentifier(t *testing.T) {
	identifier, err := GenerateProductIdentifier()
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(identifier, "PRD-"))
	assert.True(t, ValidIdentifierFormat(identifier))
	assert.Equal(t, identifier, strings.ToUpper(identifier))
}

func TestGeneratedIdentifiersDiffer(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		identifier, err := GenerateProductIdentifier()
		assert.NoError(t, err)
		assert.False(t, seen[identifier], "identifier generated twice: %s", identifier)
		seen[identifier] = true
	}
}

func TestNormalizeIdentifier(t *testing.T) {
	assert.Equal(t, "PRD-ABC-123", NormalizeIdentifier("  prd-abc-123 "))
	assert.Equal(t, "PRD-ABC-123", NormalizeIdentifier("PRD-ABC-123"))
}

func TestValidIdentifierFormat(t *testing.T) {
	valid := []string{
		"PRD-ABC123-XYZ789",
		"PRD-DEMO-AUTHENTIC",
		"PRD-1-2",
	}
	for _, id := range valid {
		assert.True(t, ValidIdentifierFormat(id), "expected valid: %s", id)
	}

	invalid := []string{
		"",
		"PRD-",
		"PRD-ABC",
		"prd-abc-123",
		"XYZ-ABC-123",
		"PRD-ABC-123-EXTRA",
		"PRD-AB C-123",
	}
	for _, id := range invalid {
		assert.False(t, ValidIdentifierFormat(id), "expected invalid: %s", id)
	}
}

func TestGenerateCustodianIdentity(t *testing.T) {
	identity, err := GenerateCustodianIdentity()
	assert.NoError(t, err)
	assert.Len(t, identity, 42)
	assert.True(t, strings.HasPrefix(identity, "0x"))
}
