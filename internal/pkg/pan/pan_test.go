package pan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"spsc-loanstp/internal/pkg/pan"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "ABCDE1234F", pan.Normalize("abcde1234f"))
	assert.Equal(t, "ABCDE1234F", pan.Normalize("  ABCDE1234F  "))
	assert.Equal(t, "", pan.Normalize("   "))
}

func TestIsValid(t *testing.T) {
	valid := []string{
		"ABCDE1234F",
		"ZZZZZ0000Z",
	}
	for _, s := range valid {
		assert.True(t, pan.IsValid(s), "%q should be valid", s)
	}

	invalid := []string{
		"",
		"abcde1234f",
		"ABCD1234F",
		"ABCDEF1234",
		"ABCDE12345",
		"ABCDE1234FX",
		"1BCDE1234F",
		"ABCDE 1234F",
	}
	for _, s := range invalid {
		assert.False(t, pan.IsValid(s), "%q should be invalid", s)
	}
}

func TestNormalizeThenValidate(t *testing.T) {
	assert.True(t, pan.IsValid(pan.Normalize(" abcde1234f ")))
}
