package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCronSchedule(t *testing.T) {
	valid := []string{"0 */6 * * *", "30 5 * * *", "*/15 9-18 * * 1-5", "0 0 1 * *"}
	for _, s := range valid {
		assert.NoError(t, ValidateCronSchedule(s), s)
	}

	invalid := []string{"", "invalid", "0 */6 * *", "61 * * * *", "0 0 * * * *"}
	for _, s := range invalid {
		assert.Error(t, ValidateCronSchedule(s), s)
	}
}

func TestValidateTimezone(t *testing.T) {
	assert.NoError(t, ValidateTimezone("UTC"))
	assert.NoError(t, ValidateTimezone("Asia/Tokyo"))

	err := ValidateTimezone("Mars/Olympus")
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "Mars/Olympus")
	}
	assert.Error(t, ValidateTimezone(""))
}
