package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional
// config file. Environment variables take precedence over values from the
// config file, which takes precedence over defaults.
// Returns a populated Config struct or an error if loading or validation
// fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Environment variables use the TASKFORGE_ prefix with underscores,
	// e.g. TASKFORGE_ORCHESTRATOR_MAX_RETRIES.
	v.SetEnvPrefix("TASKFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The config file is optional; defaults plus environment variables are
	// enough for a complete configuration.
	v.SetConfigName("taskforge")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers the default value for every setting so a bare
// environment still yields a valid configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("orchestrator.log_level", "info")
	v.SetDefault("orchestrator.max_retries", 3)
	v.SetDefault("orchestrator.retry_delay_seconds", 2)
	v.SetDefault("orchestrator.worker_count", 2)
	v.SetDefault("orchestrator.ledger_path", "artifacts/task_ledger.jsonl")

	v.SetDefault("health.probe_timeout_seconds", 5)

	v.SetDefault("llm.base_url", "http://localhost:8080")
	// Registered empty so AutomaticEnv can resolve the key from the
	// environment; there is no meaningful default for a credential.
	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.model_name", "gemini-2.0-flash")

	v.SetDefault("comfy.base_url", "http://127.0.0.1:8000")
	v.SetDefault("comfy.poll_interval_seconds", 2)
	v.SetDefault("comfy.timeout_seconds", 300)
}
