package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePhone(t *testing.T) {
	valid := []string{"+2348012345678", "2348012345678", "13800138000", "+33612345678"}
	for _, phone := range valid {
		assert.True(t, ValidatePhone(phone), phone)
	}

	invalid := []string{"", "abc", "+", "1234567", "+123456789012345678", "0801 234 5678"}
	for _, phone := range invalid {
		assert.False(t, ValidatePhone(phone), phone)
	}
}
