package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDefaultsPass(t *testing.T) {
	cfg := GetDefaultConfig()
	require.NoError(t, Validate(cfg))
}

func TestValidateRejectsBadFormat(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Format = "xml"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be one of")
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Metrics.Port = 70000

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Metrics.Port")
}

func TestValidateRejectsBadSampleRate(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Telemetry.SampleRate = 1.5

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SampleRate")
}

func TestValidateRejectsNegativeInterval(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Wallet.MaintenanceInterval = -time.Second

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MaintenanceInterval")
}

func TestValidateRequiresDataDir(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.DataDir = ""

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DataDir")
}

func TestValidateCollectsAllFailures(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Logging.Format = "xml"
	cfg.DataDir = ""

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Format")
	assert.Contains(t, err.Error(), "DataDir")
}
