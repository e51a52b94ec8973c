package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Known scoring backend names
const (
	BackendGroq   = "groq"
	BackendGemini = "gemini"
	BackendHTTP   = "http"
)

// Config holds application configuration
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Storage     StorageConfig
	RabbitMQ    RabbitMQConfig
	Scoring     ScoringConfig
	Groq        GroqConfig
	Gemini      GeminiConfig
	HTTPBackend HTTPBackendConfig
	Assembly    AssemblyAIConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	Environment     string        `envconfig:"ENVIRONMENT" default:"development"`
	LogJSON         bool          `envconfig:"LOG_JSON" default:"false"`
	AllowedOrigins  []string      `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string `envconfig:"DB_HOST" default:"localhost"`
	Port        string `envconfig:"DB_PORT" default:"5432"`
	User        string `envconfig:"DB_USER" default:"postgres"`
	Password    string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name        string `envconfig:"DB_NAME" default:"interview_scoring"`
	SSLMode     string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns    int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns    int    `envconfig:"DB_MIN_CONNS" default:"5"`
	AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"false"`
}

// RedisConfig holds Redis configuration. An empty host disables Redis.
type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:""`
	Port     string `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// JWTConfig holds the settings to verify externally issued access tokens
type JWTConfig struct {
	AccessSecret string `envconfig:"JWT_ACCESS_SECRET" default:"your-access-secret-change-in-production"`
	Issuer       string `envconfig:"JWT_ISSUER" default:""`
}

// StorageConfig holds storage configuration for the report archive
type StorageConfig struct {
	Endpoint        string        `envconfig:"STORAGE_ENDPOINT" default:"localhost:9000"`
	AccessKeyID     string        `envconfig:"STORAGE_ACCESS_KEY" default:"minioadmin"`
	SecretAccessKey string        `envconfig:"STORAGE_SECRET_KEY" default:"minioadmin"`
	BucketName      string        `envconfig:"STORAGE_BUCKET" default:"interview-reports"`
	UseSSL          bool          `envconfig:"STORAGE_USE_SSL" default:"false"`
	PublicURL       string        `envconfig:"STORAGE_PUBLIC_URL" default:""`
	URLExpiry       time.Duration `envconfig:"STORAGE_URL_EXPIRY" default:"24h"`
	Enabled         bool          `envconfig:"STORAGE_ENABLED" default:"true"`
}

// RabbitMQConfig holds queue configuration. An empty URL disables the consumer.
type RabbitMQConfig struct {
	URL             string `envconfig:"RABBITMQ_URL" default:""`
	TriggerQueue    string `envconfig:"RABBITMQ_TRIGGER_QUEUE" default:"interview.scoring.requested"`
	DeadLetterQueue string `envconfig:"RABBITMQ_DEAD_LETTER_QUEUE" default:"interview.scoring.dead_letter"`
	Prefetch        int    `envconfig:"RABBITMQ_PREFETCH" default:"4"`
}

// ScoringConfig holds orchestration policy
type ScoringConfig struct {
	Backends         []string      `envconfig:"SCORING_BACKENDS" default:"groq"`
	TolerateFailures bool          `envconfig:"SCORING_TOLERATE_FAILURES" default:"true"`
	RunTimeout       time.Duration `envconfig:"SCORING_RUN_TIMEOUT" default:"3m"`
	LockTTL          time.Duration `envconfig:"SCORING_LOCK_TTL" default:"5m"`
	RetryDelay       time.Duration `envconfig:"SCORING_RETRY_DELAY" default:"2s"`
	HealthInterval   time.Duration `envconfig:"SCORING_HEALTH_INTERVAL" default:"30s"`
	HealthGrace      time.Duration `envconfig:"SCORING_HEALTH_GRACE" default:"90s"`
	PromptVersion    string        `envconfig:"SCORING_PROMPT_VERSION" default:"v1"`
	AuditFailures    bool          `envconfig:"SCORING_AUDIT_FAILURES" default:"true"`
	TaskWorkers      int           `envconfig:"SCORING_TASK_WORKERS" default:"2"`
	TaskQueueSize    int           `envconfig:"SCORING_TASK_QUEUE_SIZE" default:"256"`
	TaskMaxRetries   int           `envconfig:"SCORING_TASK_MAX_RETRIES" default:"3"`
}

// GroqConfig holds Groq backend configuration
type GroqConfig struct {
	APIKey  string        `envconfig:"GROQ_API_KEY" default:""`
	BaseURL string        `envconfig:"GROQ_API_URL" default:"https://api.groq.com"`
	Model   string        `envconfig:"GROQ_MODEL" default:"llama-3.3-70b-versatile"`
	Timeout time.Duration `envconfig:"GROQ_TIMEOUT" default:"45s"`
	Scale   string        `envconfig:"GROQ_SCORE_SCALE" default:"decile"`
}

// GeminiConfig holds Gemini backend configuration
type GeminiConfig struct {
	APIKey  string        `envconfig:"GEMINI_API_KEY" default:""`
	Model   string        `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`
	Timeout time.Duration `envconfig:"GEMINI_TIMEOUT" default:"60s"`
	Scale   string        `envconfig:"GEMINI_SCORE_SCALE" default:"decile"`
}

// HTTPBackendConfig holds the generic scoring service configuration
type HTTPBackendConfig struct {
	Name    string        `envconfig:"SCORING_HTTP_NAME" default:"http"`
	URL     string        `envconfig:"SCORING_HTTP_URL" default:""`
	Secret  string        `envconfig:"SCORING_HTTP_SECRET" default:""`
	Timeout time.Duration `envconfig:"SCORING_HTTP_TIMEOUT" default:"30s"`
	Scale   string        `envconfig:"SCORING_HTTP_SCORE_SCALE" default:"auto"`
}

// AssemblyAIConfig holds AssemblyAI configuration for transcript import
type AssemblyAIConfig struct {
	APIKey        string `envconfig:"ASSEMBLYAI_API_KEY" default:""`
	WebhookSecret string `envconfig:"ASSEMBLYAI_WEBHOOK_SECRET" default:""`
	// CandidateSpeaker is the diarization label of the candidate in imported transcripts
	CandidateSpeaker string `envconfig:"ASSEMBLYAI_CANDIDATE_SPEAKER" default:"B"`
}

// Load loads configuration from environment variables and validates it
func Load() (*Config, error) {
	config, err := Read()
	if err != nil {
		return nil, err
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Read loads configuration without validating the scoring backends. Tooling
// that only touches the database uses it.
func Read() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.Scoring.Backends) == 0 {
		return fmt.Errorf("SCORING_BACKENDS must name at least one backend")
	}
	for _, b := range c.Scoring.Backends {
		switch strings.TrimSpace(b) {
		case BackendGroq:
			if c.Groq.APIKey == "" {
				return fmt.Errorf("GROQ_API_KEY is required for the groq backend")
			}
		case BackendGemini:
			if c.Gemini.APIKey == "" {
				return fmt.Errorf("GEMINI_API_KEY is required for the gemini backend")
			}
		case BackendHTTP:
			if c.HTTPBackend.URL == "" {
				return fmt.Errorf("SCORING_HTTP_URL is required for the http backend")
			}
		default:
			return fmt.Errorf("unknown scoring backend %q", b)
		}
	}
	if c.Scoring.RunTimeout <= 0 {
		return fmt.Errorf("SCORING_RUN_TIMEOUT must be positive")
	}
	if c.Groq.Timeout <= 0 || c.Gemini.Timeout <= 0 || c.HTTPBackend.Timeout <= 0 {
		return fmt.Errorf("backend timeouts must be positive")
	}
	return nil
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}
