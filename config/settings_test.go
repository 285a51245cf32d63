package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("FINGERPRINT_SALT", "unit-test-salt")

	require.NoError(t, LoadConfig())

	assert.Equal(t, "01.01", SettingsObj.SupportedRevision)
	assert.Equal(t, 0.25, SettingsObj.OwnershipWeight)
	assert.Equal(t, 0.5, SettingsObj.ScoreThreshold)
	assert.Equal(t, 100000, SettingsObj.FilterCapacity)
	assert.Equal(t, 0.01, SettingsObj.FilterFPRate)
}

func TestLoadConfigRequiresSalt(t *testing.T) {
	t.Setenv("FINGERPRINT_SALT", "")

	err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FINGERPRINT_SALT")
}

func TestLoadConfigRejectsBadWeights(t *testing.T) {
	t.Setenv("FINGERPRINT_SALT", "unit-test-salt")
	t.Setenv("OWNERSHIP_WEIGHT", "0.9")

	err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weights must sum to 1.0")
}

func TestLoadConfigRejectsBadFPRate(t *testing.T) {
	t.Setenv("FINGERPRINT_SALT", "unit-test-salt")
	t.Setenv("FILTER_FP_RATE", "1.5")

	err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FILTER_FP_RATE")
}
