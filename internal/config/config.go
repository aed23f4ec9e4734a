package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds all service configuration
type Config struct {
	// Basic service settings
	HTTPAddress string
	Environment string

	// Storage backends
	RedisURL      string
	MongoURL      string
	MongoDatabase string

	// Session and history lifetimes
	MessageExpirySeconds int

	// Scheduler settings
	SchedulerIntervalSeconds int
	TriggerOffsetMinutes     int
	InvokeTimeoutSeconds     int

	// LLM provider settings
	LLMProvider     string
	AnthropicAPIKey string
	AnthropicModel  string
	OpenAIAPIKey    string
	OpenAIModel     string
	GeminiAPIKey    string
	GeminiModel     string

	// Analysis artifacts
	AnalysisOutputDir string
	SummaryOutputDir  string

	// Companion persona defaults for the chat surface
	CompanionName   string
	CompanionGender string
}

// LoadConfig loads configuration from files and environment variables
func LoadConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Configure environment variables - do this BEFORE reading config
	v.AutomaticEnv()
	v.SetEnvPrefix("")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set up explicit mappings between struct fields and environment variables
	envMappings := map[string]string{
		"HTTPAddress":              "HTTP_ADDRESS",
		"Environment":              "ENVIRONMENT",
		"RedisURL":                 "REDIS_URL",
		"MongoURL":                 "MONGO_URL",
		"MongoDatabase":            "MONGO_DATABASE",
		"MessageExpirySeconds":     "MESSAGE_EXPIRY_SECONDS",
		"SchedulerIntervalSeconds": "SCHEDULER_INTERVAL_SECONDS",
		"TriggerOffsetMinutes":     "TRIGGER_OFFSET_MINUTES",
		"InvokeTimeoutSeconds":     "INVOKE_TIMEOUT_SECONDS",
		"LLMProvider":              "LLM_PROVIDER",
		"AnthropicAPIKey":          "ANTHROPIC_API_KEY",
		"AnthropicModel":           "ANTHROPIC_MODEL",
		"OpenAIAPIKey":             "OPENAI_API_KEY",
		"OpenAIModel":              "OPENAI_MODEL",
		"GeminiAPIKey":             "GEMINI_API_KEY",
		"GeminiModel":              "GEMINI_MODEL",
		"AnalysisOutputDir":        "ANALYSIS_OUTPUT_DIR",
		"SummaryOutputDir":         "SUMMARY_OUTPUT_DIR",
		"CompanionName":            "COMPANION_NAME",
		"CompanionGender":          "COMPANION_GENDER",
	}

	for configKey, envVar := range envMappings {
		if err := v.BindEnv(configKey, envVar); err != nil {
			log.Warn().Err(err).Msgf("Failed to bind environment variable %s for %s", envVar, configKey)
		}
	}

	v.SetConfigName("haven_config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("$HOME/.haven")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Debug().Msg("Config file not found, using environment variables and defaults")
	} else {
		log.Info().Msgf("Using config file: %s", v.ConfigFileUsed())
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	log.Debug().Msgf("Config loaded: Provider=%s, RedisURL=%s, Interval=%ds, Offset=%dm",
		config.LLMProvider, config.RedisURL, config.SchedulerIntervalSeconds, config.TriggerOffsetMinutes)

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTPAddress", ":8084")
	v.SetDefault("Environment", "development")

	v.SetDefault("RedisURL", "redis://localhost:6379/0")
	v.SetDefault("MongoDatabase", "haven")

	v.SetDefault("MessageExpirySeconds", 3600)
	v.SetDefault("SchedulerIntervalSeconds", 60)
	v.SetDefault("TriggerOffsetMinutes", 5)
	v.SetDefault("InvokeTimeoutSeconds", 120)

	v.SetDefault("LLMProvider", "anthropic")
	v.SetDefault("AnthropicModel", "claude-sonnet-4-20250514")
	v.SetDefault("OpenAIModel", "gpt-4o")
	v.SetDefault("GeminiModel", "gemini-2.0-flash")

	v.SetDefault("AnalysisOutputDir", "conversation_analyzed")
	v.SetDefault("SummaryOutputDir", "conversation_summary")

	v.SetDefault("CompanionName", "Haven")
	v.SetDefault("CompanionGender", "female")
}

// validateConfig validates the required configuration fields
func validateConfig(config *Config) error {
	var missingVars []string

	if config.RedisURL == "" {
		missingVars = append(missingVars, "REDIS_URL")
	}

	switch config.LLMProvider {
	case "anthropic":
		if config.AnthropicAPIKey == "" {
			missingVars = append(missingVars, "ANTHROPIC_API_KEY")
		}
	case "openai":
		if config.OpenAIAPIKey == "" {
			missingVars = append(missingVars, "OPENAI_API_KEY")
		}
	case "gemini":
		if config.GeminiAPIKey == "" {
			missingVars = append(missingVars, "GEMINI_API_KEY")
		}
	default:
		return fmt.Errorf("unsupported LLM provider: %s (expected anthropic, openai or gemini)", config.LLMProvider)
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missingVars, ", "))
	}

	if config.SchedulerIntervalSeconds <= 0 {
		return fmt.Errorf("SCHEDULER_INTERVAL_SECONDS must be positive, got %d", config.SchedulerIntervalSeconds)
	}

	if config.MessageExpirySeconds <= 0 {
		return fmt.Errorf("MESSAGE_EXPIRY_SECONDS must be positive, got %d", config.MessageExpirySeconds)
	}

	return nil
}
