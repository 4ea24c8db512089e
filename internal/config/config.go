/**
 * @description
 * This package handles the configuration management for the service. It uses
 * the Viper library to read configuration from environment variables,
 * providing a centralized and straightforward way to manage application
 * settings.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the ledger service.
// These values are loaded from environment variables. Monetary bounds are in
// the smallest currency unit.
type Config struct {
	ServerPort           string `mapstructure:"SERVER_PORT"`
	DatabaseURL          string `mapstructure:"DATABASE_URL"`
	RedisURL             string `mapstructure:"REDIS_URL"`
	RedisRateLimitPrefix string `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`
	RabbitMQURL          string `mapstructure:"RABBITMQ_URL"`
	JWTSecret            string `mapstructure:"JWT_SECRET"`

	CampaignMinTarget       int64 `mapstructure:"CAMPAIGN_MIN_TARGET"`
	CampaignMaxTarget       int64 `mapstructure:"CAMPAIGN_MAX_TARGET"`
	CampaignMaxDurationDays int   `mapstructure:"CAMPAIGN_MAX_DURATION_DAYS"`
	CampaignWhitelistBatch  int   `mapstructure:"CAMPAIGN_WHITELIST_BATCH_CAP"`
	ContributionRateLimit   int   `mapstructure:"CONTRIBUTION_RATE_LIMIT_PER_MINUTE"`
}

// LoadConfig reads configuration from environment variables from the given path.
// It uses Viper to automatically bind environment variables to the Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "blockbudget:rate_limit")
	viper.SetDefault("CAMPAIGN_MIN_TARGET", 1)
	viper.SetDefault("CAMPAIGN_MAX_TARGET", 10_000_000_000)
	viper.SetDefault("CAMPAIGN_MAX_DURATION_DAYS", 365)
	viper.SetDefault("CAMPAIGN_WHITELIST_BATCH_CAP", 200)
	viper.SetDefault("CONTRIBUTION_RATE_LIMIT_PER_MINUTE", 30)

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL", "REDIS_URL", "LEDGER_REDIS_URL")
	_ = viper.BindEnv("REDIS_RATE_LIMIT_PREFIX")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("JWT_SECRET", "JWT_SECRET", "LEDGER_JWT_SECRET")
	_ = viper.BindEnv("CAMPAIGN_MIN_TARGET")
	_ = viper.BindEnv("CAMPAIGN_MAX_TARGET")
	_ = viper.BindEnv("CAMPAIGN_MAX_DURATION_DAYS")
	_ = viper.BindEnv("CAMPAIGN_WHITELIST_BATCH_CAP")
	_ = viper.BindEnv("CONTRIBUTION_RATE_LIMIT_PER_MINUTE")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		// If the config file is not found, we can ignore the error.
		// For other errors, we should return them.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	// Unmarshal the configuration into the Config struct.
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}
	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.RedisRateLimitPrefix = strings.TrimSpace(config.RedisRateLimitPrefix)
	if config.RedisRateLimitPrefix == "" {
		config.RedisRateLimitPrefix = "blockbudget:rate_limit"
	}

	if config.CampaignMinTarget <= 0 {
		log.Printf("level=warn component=config msg=\"invalid campaign minimum target; using 1\" min_target=%d", config.CampaignMinTarget)
		config.CampaignMinTarget = 1
	}
	if config.CampaignMaxTarget < config.CampaignMinTarget {
		log.Printf("level=warn component=config msg=\"campaign maximum below minimum; using default\" max_target=%d", config.CampaignMaxTarget)
		config.CampaignMaxTarget = 10_000_000_000
	}
	if config.CampaignMaxDurationDays <= 0 {
		config.CampaignMaxDurationDays = 365
	}
	if config.CampaignWhitelistBatch <= 0 {
		config.CampaignWhitelistBatch = 200
	}
	if config.ContributionRateLimit <= 0 {
		config.ContributionRateLimit = 30
	}

	return
}
