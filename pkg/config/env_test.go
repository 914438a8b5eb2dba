package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("T_STRING", "value")
	t.Setenv("T_INT", " 42 ")
	t.Setenv("T_BAD_INT", "forty")
	t.Setenv("T_FLOAT", "0.1")
	t.Setenv("T_BOOL", "TRUE")
	t.Setenv("T_BAD_BOOL", "yes")
	t.Setenv("T_DURATION", "1500ms")
	t.Setenv("T_LIST", " a, ,b ,c")
	t.Setenv("T_EMPTY_LIST", " , ")

	assert.Equal(t, "value", GetEnvString("T_STRING", "d"))
	assert.Equal(t, "d", GetEnvString("T_UNSET", "d"))
	assert.Equal(t, 42, GetEnvInt("T_INT", 1))
	assert.Equal(t, 1, GetEnvInt("T_BAD_INT", 1))
	assert.InDelta(t, 0.1, GetEnvFloat("T_FLOAT", 1), 1e-9)
	assert.True(t, GetEnvBool("T_BOOL", false))
	assert.False(t, GetEnvBool("T_BAD_BOOL", false))
	assert.Equal(t, 1500*time.Millisecond, GetEnvDuration("T_DURATION", time.Second))
	assert.Equal(t, []string{"a", "b", "c"}, GetEnvStringList("T_LIST", nil))
	assert.Equal(t, []string{"x"}, GetEnvStringList("T_EMPTY_LIST", []string{"x"}))
}

func TestGetEnvFirst(t *testing.T) {
	t.Setenv("T_FIRST_A", "")
	t.Setenv("T_FIRST_B", "  ")
	t.Setenv("T_FIRST_C", "key-c")

	assert.Equal(t, "key-c", GetEnvFirst("T_FIRST_A", "T_FIRST_B", "T_FIRST_C"))
	assert.Equal(t, "", GetEnvFirst("T_FIRST_A"))
}

func TestValidators(t *testing.T) {
	assert.NoError(t, ValidatePositiveDuration(time.Second))
	assert.Error(t, ValidatePositiveDuration(0))
	assert.NoError(t, ValidateNonNegativeDuration(0))
	assert.Error(t, ValidateNonNegativeDuration(-time.Second))
	assert.NoError(t, ValidateDurationRange(time.Minute, time.Second, time.Hour))
	assert.Error(t, ValidateDurationRange(time.Millisecond, time.Second, time.Hour))
	assert.Error(t, ValidateDurationRange(time.Minute, time.Hour, time.Second))
	assert.NoError(t, ValidateIntRange("n", 130, 130, 200))
	assert.EqualError(t, ValidateIntRange("n", 201, 130, 200), "n must be between 130 and 200, got 201")
}
