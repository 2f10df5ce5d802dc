package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"     validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"   validate:"required"`
	Auth       AuthConfig       `mapstructure:"auth"       validate:"required"`
	LLM        LLMConfig        `mapstructure:"llm"        validate:"required"`
	Storage    StorageConfig    `mapstructure:"storage"    validate:"required"`
	Extraction ExtractionConfig `mapstructure:"extraction" validate:"required"`
	Task       TaskConfig       `mapstructure:"task"       validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret"                     validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes"         validate:"required,gt=0"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0"`
	BcryptCost                  int    `mapstructure:"bcrypt_cost"                    validate:"gte=0,lte=31"`
}

// LLMConfig contains all LLM gateway related settings.
type LLMConfig struct {
	GeminiAPIKey      string  `mapstructure:"gemini_api_key"      validate:"required"`
	ModelName         string  `mapstructure:"model_name"          validate:"required"`
	EmbeddingModel    string  `mapstructure:"embedding_model"     validate:"required"`
	MaxRetries        int     `mapstructure:"max_retries"         validate:"gte=0,lte=10"`
	RetryDelaySeconds int     `mapstructure:"retry_delay_seconds" validate:"gte=1,lte=60"`
	RequestsPerMinute float64 `mapstructure:"requests_per_minute" validate:"gt=0"`
}

// StorageConfig contains object storage settings for uploaded documents.
type StorageConfig struct {
	Bucket             string `mapstructure:"bucket"               validate:"required"`
	CredentialsFile    string `mapstructure:"credentials_file"`
	MaxUploadSizeBytes int64  `mapstructure:"max_upload_size_bytes" validate:"gt=0"`
}

// ExtractionConfig tunes the text-extraction pipeline.
type ExtractionConfig struct {
	// MinTextLength is the character threshold below which an extraction
	// attempt is considered unusable and the next strategy is tried.
	MinTextLength int `mapstructure:"min_text_length" validate:"gt=0"`

	// MaxFetchSizeBytes caps the size of remote page and caption bodies.
	MaxFetchSizeBytes int64 `mapstructure:"max_fetch_size_bytes" validate:"gt=0"`

	// FetchTimeoutSeconds bounds each remote fetch attempt.
	FetchTimeoutSeconds int `mapstructure:"fetch_timeout_seconds" validate:"gt=0"`

	// OCREnabled toggles the Cloud Vision OCR fallback for image-only PDFs.
	OCREnabled bool `mapstructure:"ocr_enabled"`
}

// TaskConfig contains background task runner settings.
type TaskConfig struct {
	WorkerCount           int `mapstructure:"worker_count"             validate:"required,gt=0"`
	QueueSize             int `mapstructure:"queue_size"               validate:"required,gt=0"`
	StuckTaskAgeMinutes   int `mapstructure:"stuck_task_age_minutes"   validate:"required,gt=0"`
	StuckTaskCheckMinutes int `mapstructure:"stuck_task_check_minutes" validate:"gte=0"`
}
