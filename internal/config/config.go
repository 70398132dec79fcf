package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Orchestrator OrchestratorConfig `mapstructure:"orchestrator" validate:"required"`
	Health       HealthConfig       `mapstructure:"health"       validate:"required"`
	LLM          LLMConfig          `mapstructure:"llm"          validate:"required"`
	Comfy        ComfyConfig        `mapstructure:"comfy"        validate:"required"`
}

// OrchestratorConfig contains the scheduling and retry settings.
type OrchestratorConfig struct {
	LogLevel          string `mapstructure:"log_level"           validate:"required,oneof=debug info warn error"`
	MaxRetries        int    `mapstructure:"max_retries"         validate:"gte=1"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=1"`
	WorkerCount       int    `mapstructure:"worker_count"        validate:"gte=1"`
	LedgerPath        string `mapstructure:"ledger_path"         validate:"required"`
}

// HealthConfig contains the health-probe settings for external backends.
type HealthConfig struct {
	ProbeTimeoutSeconds int `mapstructure:"probe_timeout_seconds" validate:"gte=1"`
}

// LLMConfig contains the language-model backend settings used by the code
// and character crews.
type LLMConfig struct {
	// BaseURL is the model-serving endpoint; its /v1/models route doubles
	// as the health probe target.
	BaseURL      string `mapstructure:"base_url" validate:"required,url"`
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	ModelName    string `mapstructure:"model_name" validate:"required"`
}

// ComfyConfig contains the ComfyUI backend settings used by the asset crew.
type ComfyConfig struct {
	BaseURL             string `mapstructure:"base_url" validate:"required,url"`
	PollIntervalSeconds int    `mapstructure:"poll_interval_seconds" validate:"gte=1"`
	TimeoutSeconds      int    `mapstructure:"timeout_seconds"       validate:"gte=1"`
}
