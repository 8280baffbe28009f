package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePlate_Canonicalizes(t *testing.T) {
	got, err := NormalizePlate("1234abc")
	assert.NoError(t, err)
	assert.Equal(t, "1234-ABC", got)

	got, err = NormalizePlate("  1234-abc ")
	assert.NoError(t, err)
	assert.Equal(t, "1234-ABC", got)

	got, err = NormalizePlate("12 34 abc")
	assert.NoError(t, err)
	assert.Equal(t, "1234-ABC", got)
}

func TestNormalizePlate_Idempotent(t *testing.T) {
	first, err := NormalizePlate("5678def")
	assert.NoError(t, err)

	second, err := NormalizePlate(first)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNormalizePlate_EmptyIsValid(t *testing.T) {
	got, err := NormalizePlate("")
	assert.NoError(t, err)
	assert.Equal(t, "", got)

	got, err = NormalizePlate("   ")
	assert.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestNormalizePlate_Invalid(t *testing.T) {
	for _, raw := range []string{"12-34-AB", "123ABC", "12345ABC", "ABCD123", "1234ABCD", "1234-AB"} {
		_, err := NormalizePlate(raw)
		assert.ErrorIs(t, err, ErrInvalidPlate, "input %q", raw)
	}
}

func TestNormalizeProject_Canonicalizes(t *testing.T) {
	got, err := NormalizeProject("v429")
	assert.NoError(t, err)
	assert.Equal(t, "V429", got)

	got, err = NormalizeProject(" abc 12 ")
	assert.NoError(t, err)
	assert.Equal(t, "ABC12", got)
}

func TestNormalizeProject_EmptyIsValid(t *testing.T) {
	got, err := NormalizeProject("")
	assert.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestNormalizeProject_Invalid(t *testing.T) {
	// digits-first not allowed
	for _, raw := range []string{"4V29", "429", "PROYECTO7X", "ABCDEF1", "V1234567"} {
		_, err := NormalizeProject(raw)
		assert.ErrorIs(t, err, ErrInvalidProject, "input %q", raw)
	}
}
