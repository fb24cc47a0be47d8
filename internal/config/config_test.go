package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APPSTORE_ISSUER_ID", "57246542-96fe-1a63-e053-0824d011072a")
	t.Setenv("APPSTORE_KEY_ID", "2X9R4HXF34")
	t.Setenv("APPSTORE_PRIVATE_KEY", "test key material")
	t.Setenv("APPSTORE_VENDOR_NUMBER", "85442109")
	t.Setenv("DISCORD_WEBHOOK_URL", "https://discord.com/api/webhooks/1/abc")
}

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "57246542-96fe-1a63-e053-0824d011072a", cfg.IssuerID)
	assert.Equal(t, "2X9R4HXF34", cfg.KeyID)
	assert.Equal(t, "85442109", cfg.VendorNumber)
	assert.Equal(t, 30, cfg.TimeoutSeconds)
	assert.False(t, cfg.Debug)
	assert.Equal(t, 1, cfg.LagDays)
	assert.True(t, cfg.AutoProbe)
	assert.Equal(t, 5, cfg.MaxProbeDays)
	assert.Equal(t, 15, cfg.WebhookTimeoutSeconds)
	assert.Empty(t, cfg.WebhookUsername)
	assert.Empty(t, cfg.Schedule)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "INFO", cfg.LogLevel)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	setRequiredEnv(t)
	t.Setenv("APPSTORE_TIMEOUT", "10")
	t.Setenv("APPSTORE_DEBUG", "true")
	t.Setenv("APPSTORE_LAG_DAYS", "2")
	t.Setenv("APPSTORE_AUTO_PROBE", "false")
	t.Setenv("APPSTORE_MAX_PROBE_DAYS", "0")
	t.Setenv("DISCORD_TIMEOUT", "5")
	t.Setenv("DISCORD_USERNAME", "Report Bot")
	t.Setenv("REPORT_SCHEDULE", "0 9 * * *")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.TimeoutSeconds)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 2, cfg.LagDays)
	assert.False(t, cfg.AutoProbe)
	assert.Equal(t, 0, cfg.MaxProbeDays)
	assert.Equal(t, 5, cfg.WebhookTimeoutSeconds)
	assert.Equal(t, "Report Bot", cfg.WebhookUsername)
	assert.Equal(t, "0 9 * * *", cfg.Schedule)
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
}

func TestLoadConfig_MissingRequiredVariable(t *testing.T) {
	required := []string{
		"APPSTORE_ISSUER_ID",
		"APPSTORE_KEY_ID",
		"APPSTORE_PRIVATE_KEY",
		"APPSTORE_VENDOR_NUMBER",
		"DISCORD_WEBHOOK_URL",
	}
	for _, name := range required {
		t.Run(name, func(t *testing.T) {
			viper.Reset()
			t.Cleanup(viper.Reset)
			setRequiredEnv(t)
			t.Setenv(name, "")

			_, err := LoadConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), name)
		})
	}
}
