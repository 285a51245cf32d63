package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"chat-proof-oracle/pkgs/models"
)

// Settings holds all configuration for the proof oracle
type Settings struct {
	// Core Identity
	DlpID    int
	OracleID string

	// Fingerprinting
	FingerprintSalt   string // Secret salt for content fingerprints, required
	SupportedRevision string

	// Scoring Configuration
	OwnershipWeight    float64
	AuthenticityWeight float64
	UniquenessWeight   float64
	QualityWeight      float64
	ScoreThreshold     float64
	MaxFutureDrift     time.Duration // Tolerance for message timestamps past submission time

	// Uniqueness Filter Configuration
	FilterCapacity      int
	FilterFPRate        float64
	DedupLocalCacheSize int

	// External Collaborators
	VerificationURL string
	SubmissionURL   string
	HttpTimeout     time.Duration

	// Redis Configuration (optional filter blob cache)
	RedisHost      string
	RedisPort      string
	RedisDB        int
	RedisPassword  string
	FilterCacheTTL time.Duration

	// Monitoring & Debugging
	MetricsEnabled bool
	MetricsPort    int
	LogLevel       string
	DebugMode      bool
}

var (
	// SettingsObj is the global settings instance
	SettingsObj *Settings
)

// LoadConfig loads configuration from environment variables
func LoadConfig() error {
	SettingsObj = &Settings{
		// Core Identity
		DlpID:    getEnvAsInt("DLP_ID", 0),
		OracleID: getEnv("ORACLE_ID", "chat-proof-oracle-1"),

		// Fingerprinting
		FingerprintSalt:   getEnv("FINGERPRINT_SALT", ""),
		SupportedRevision: models.SupportedRevision,

		// Scoring Configuration
		OwnershipWeight:    getEnvAsFloat("OWNERSHIP_WEIGHT", 0.25),
		AuthenticityWeight: getEnvAsFloat("AUTHENTICITY_WEIGHT", 0.25),
		UniquenessWeight:   getEnvAsFloat("UNIQUENESS_WEIGHT", 0.25),
		QualityWeight:      getEnvAsFloat("QUALITY_WEIGHT", 0.25),
		ScoreThreshold:     getEnvAsFloat("SCORE_THRESHOLD", 0.5),
		MaxFutureDrift:     time.Duration(getEnvAsInt("MAX_FUTURE_DRIFT_SECONDS", 300)) * time.Second,

		// Uniqueness Filter Configuration
		FilterCapacity:      getEnvAsInt("FILTER_CAPACITY", 100000),
		FilterFPRate:        getEnvAsFloat("FILTER_FP_RATE", 0.01),
		DedupLocalCacheSize: getEnvAsInt("DEDUP_LOCAL_CACHE_SIZE", 10000),

		// External Collaborators
		VerificationURL: getEnv("VERIFICATION_SERVICE_URL", ""),
		SubmissionURL:   getEnv("SUBMISSION_SERVICE_URL", ""),
		HttpTimeout:     time.Duration(getEnvAsInt("HTTP_TIMEOUT_SECONDS", 30)) * time.Second,

		// Redis Configuration
		RedisHost:      getEnv("REDIS_HOST", ""),
		RedisPort:      getEnv("REDIS_PORT", "6379"),
		RedisDB:        getEnvAsInt("REDIS_DB", 0),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		FilterCacheTTL: time.Duration(getEnvAsInt("FILTER_CACHE_TTL_SECONDS", 600)) * time.Second,

		// Monitoring & Debugging
		MetricsEnabled: getBoolEnv("METRICS_ENABLED", false),
		MetricsPort:    getEnvAsInt("METRICS_PORT", 9090),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DebugMode:      getBoolEnv("DEBUG_MODE", false),
	}

	// Configure logging
	configureLogging()

	// Validate configuration
	if err := validateConfig(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	// Log configuration summary
	logConfigSummary()

	return nil
}

// configureLogging sets up the logger based on configuration
func configureLogging() {
	switch strings.ToLower(SettingsObj.LogLevel) {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "warn", "warning":
		log.SetLevel(log.WarnLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}

	// Override with debug mode
	if SettingsObj.DebugMode {
		log.SetLevel(log.DebugLevel)
	}

	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
		ForceColors:   true,
	})
}

// validateConfig validates the loaded configuration
func validateConfig() error {
	if SettingsObj.FingerprintSalt == "" {
		return fmt.Errorf("FINGERPRINT_SALT is required - fingerprints are not comparable without it")
	}

	weightSum := SettingsObj.OwnershipWeight + SettingsObj.AuthenticityWeight +
		SettingsObj.UniquenessWeight + SettingsObj.QualityWeight
	if weightSum < 0.999 || weightSum > 1.001 {
		return fmt.Errorf("score weights must sum to 1.0, got %.4f", weightSum)
	}

	if SettingsObj.ScoreThreshold < 0 || SettingsObj.ScoreThreshold > 1 {
		return fmt.Errorf("SCORE_THRESHOLD must be within [0,1], got %.4f", SettingsObj.ScoreThreshold)
	}

	if SettingsObj.FilterCapacity <= 0 {
		return fmt.Errorf("FILTER_CAPACITY must be positive, got %d", SettingsObj.FilterCapacity)
	}
	if SettingsObj.FilterFPRate <= 0 || SettingsObj.FilterFPRate >= 1 {
		return fmt.Errorf("FILTER_FP_RATE must be within (0,1), got %.4f", SettingsObj.FilterFPRate)
	}

	if SettingsObj.VerificationURL == "" {
		log.Warn("No verification service configured - ownership will score 0.0")
	}
	if SettingsObj.SubmissionURL == "" {
		log.Warn("No submission service configured - historical uniqueness data unavailable")
	}

	return nil
}

// logConfigSummary logs a summary of the configuration
func logConfigSummary() {
	log.Info("=== Configuration Loaded ===")
	log.Infof("Oracle ID: %s (DLP %d)", SettingsObj.OracleID, SettingsObj.DlpID)
	log.Infof("Data revision: %s", SettingsObj.SupportedRevision)
	log.Infof("Score weights: ownership=%.2f authenticity=%.2f uniqueness=%.2f quality=%.2f (threshold %.2f)",
		SettingsObj.OwnershipWeight, SettingsObj.AuthenticityWeight,
		SettingsObj.UniquenessWeight, SettingsObj.QualityWeight, SettingsObj.ScoreThreshold)
	log.Infof("Uniqueness filter: capacity=%d fp_rate=%.4f", SettingsObj.FilterCapacity, SettingsObj.FilterFPRate)

	if SettingsObj.RedisHost != "" {
		log.Infof("Redis filter cache: %s:%s (DB %d, TTL %v)",
			SettingsObj.RedisHost, SettingsObj.RedisPort, SettingsObj.RedisDB, SettingsObj.FilterCacheTTL)
	}

	if SettingsObj.MetricsEnabled {
		log.Infof("Metrics: enabled on port %d", SettingsObj.MetricsPort)
	}

	log.Info("============================")
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		value = strings.ToLower(value)
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
