package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDigits(t *testing.T) {
	assert.Equal(t, "01001000", Digits("01001-000"))
	assert.Equal(t, "4111111111111111", Digits("4111 1111 1111 1111"))
	assert.Equal(t, "", Digits("abc"))
}

func TestValidCardNumber(t *testing.T) {
	assert.True(t, ValidCardNumber("4111111111111111"))
	assert.True(t, ValidCardNumber("4111 1111 1111 1111"))
	assert.False(t, ValidCardNumber("411111111111111"), "15 digits")
	assert.False(t, ValidCardNumber("41111111111111112"), "17 digits")
	assert.False(t, ValidCardNumber(""))
}

func TestValidExpiry(t *testing.T) {
	assert.True(t, ValidExpiry("12/26"))
	assert.True(t, ValidExpiry("01/30"))
	assert.False(t, ValidExpiry("13/25"), "month 13")
	assert.False(t, ValidExpiry("00/25"), "month 0")
	assert.False(t, ValidExpiry("1226"), "missing slash")
	assert.False(t, ValidExpiry("1/26"))
}

func TestValidCVV(t *testing.T) {
	assert.True(t, ValidCVV("123"))
	assert.True(t, ValidCVV("1234"))
	assert.False(t, ValidCVV("12"), "2 digits")
	assert.False(t, ValidCVV("12345"))
	assert.False(t, ValidCVV("12a"))
}

func TestCardLast4(t *testing.T) {
	assert.Equal(t, "1111", CardLast4("4111 1111 1111 1111"))
	assert.Equal(t, "12", CardLast4("12"))
}
