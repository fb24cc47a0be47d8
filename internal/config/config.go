/**
 * @description
 * Environment configuration for the report bot. All settings come from
 * environment variables (optionally seeded from a .env file loaded in
 * main), with defaults matching how the App Store publishes report data.
 * Missing credentials fail loading before any network activity, naming
 * the variable that has to be set.
 *
 * @dependencies
 * - github.com/spf13/viper: environment binding, defaults and unmarshal.
 */
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all settings for the report bot.
type Config struct {
	// App Store Connect API credentials and fetch behavior.
	IssuerID       string `mapstructure:"APPSTORE_ISSUER_ID"`
	KeyID          string `mapstructure:"APPSTORE_KEY_ID"`
	PrivateKey     string `mapstructure:"APPSTORE_PRIVATE_KEY"`
	VendorNumber   string `mapstructure:"APPSTORE_VENDOR_NUMBER"`
	TimeoutSeconds int    `mapstructure:"APPSTORE_TIMEOUT"`
	Debug          bool   `mapstructure:"APPSTORE_DEBUG"`

	// Anchor resolution strategy.
	LagDays      int  `mapstructure:"APPSTORE_LAG_DAYS"`
	AutoProbe    bool `mapstructure:"APPSTORE_AUTO_PROBE"`
	MaxProbeDays int  `mapstructure:"APPSTORE_MAX_PROBE_DAYS"`

	// Notification delivery.
	WebhookURL            string `mapstructure:"DISCORD_WEBHOOK_URL"`
	WebhookTimeoutSeconds int    `mapstructure:"DISCORD_TIMEOUT"`
	WebhookUsername       string `mapstructure:"DISCORD_USERNAME"`

	// Process mode. An empty schedule means a single run and exit; a cron
	// expression keeps the process alive and runs on that schedule.
	Schedule   string `mapstructure:"REPORT_SCHEDULE"`
	ServerPort string `mapstructure:"SERVER_PORT"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	viper.SetDefault("APPSTORE_TIMEOUT", 30)
	viper.SetDefault("APPSTORE_DEBUG", false)
	viper.SetDefault("APPSTORE_LAG_DAYS", 1)
	viper.SetDefault("APPSTORE_AUTO_PROBE", true)
	viper.SetDefault("APPSTORE_MAX_PROBE_DAYS", 5)
	viper.SetDefault("DISCORD_TIMEOUT", 15)
	viper.SetDefault("DISCORD_USERNAME", "")
	viper.SetDefault("REPORT_SCHEDULE", "")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "INFO")

	viper.AutomaticEnv()

	// Bind environment variables explicitly so Unmarshal sees them.
	_ = viper.BindEnv("APPSTORE_ISSUER_ID")
	_ = viper.BindEnv("APPSTORE_KEY_ID")
	_ = viper.BindEnv("APPSTORE_PRIVATE_KEY")
	_ = viper.BindEnv("APPSTORE_VENDOR_NUMBER")
	_ = viper.BindEnv("APPSTORE_TIMEOUT")
	_ = viper.BindEnv("APPSTORE_DEBUG")
	_ = viper.BindEnv("APPSTORE_LAG_DAYS")
	_ = viper.BindEnv("APPSTORE_AUTO_PROBE")
	_ = viper.BindEnv("APPSTORE_MAX_PROBE_DAYS")
	_ = viper.BindEnv("DISCORD_WEBHOOK_URL")
	_ = viper.BindEnv("DISCORD_TIMEOUT")
	_ = viper.BindEnv("DISCORD_USERNAME")
	_ = viper.BindEnv("REPORT_SCHEDULE")
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("LOG_LEVEL")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	required := []struct {
		name  string
		value string
	}{
		{"APPSTORE_ISSUER_ID", config.IssuerID},
		{"APPSTORE_KEY_ID", config.KeyID},
		{"APPSTORE_PRIVATE_KEY", config.PrivateKey},
		{"APPSTORE_VENDOR_NUMBER", config.VendorNumber},
		{"DISCORD_WEBHOOK_URL", config.WebhookURL},
	}
	for _, item := range required {
		if item.value == "" {
			return nil, fmt.Errorf("missing required environment variable: %s", item.name)
		}
	}

	return &config, nil
}
