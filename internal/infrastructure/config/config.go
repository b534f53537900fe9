package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	JWTSecret  string        `env:"JWT_SECRET"`
	TokenTTL   time.Duration `env:"JWT_TTL,          default=24h"`
	AdminEmail string        `env:"ADMIN_EMAIL"`

	SessionIdleTTL time.Duration `env:"SESSION_IDLE_TTL, default=30m"`
	// AllowedOrigins feeds the CORS middleware; empty disables CORS.
	AllowedOrigins []string `env:"ALLOWED_ORIGINS"`

	Mongo  MongoConfig
	Redis  RedisConfig
	GCS    GCSConfig
	Google GoogleOAuthConfig
	Resend ResendConfig
	OTel   OTelConfig
	Queue  QueueConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=client_portal"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type GCSConfig struct {
	Bucket string `env:"GCS_BUCKET"`
	// CredentialsFile is a service-account key; empty uses application
	// default credentials.
	CredentialsFile string `env:"GCS_CREDENTIALS_FILE"`
	PublicBaseURL   string `env:"GCS_PUBLIC_BASE_URL, default=https://storage.googleapis.com"`
}

type GoogleOAuthConfig struct {
	ClientID     string `env:"GOOGLE_OAUTH_CLIENT_ID"`
	ClientSecret string `env:"GOOGLE_OAUTH_CLIENT_SECRET"`
	RedirectURL  string `env:"GOOGLE_OAUTH_REDIRECT_URL, default=http://localhost:8080/auth/callback"`
}

// Enabled reports whether federated sign-in is configured.
func (g GoogleOAuthConfig) Enabled() bool { return g.ClientID != "" && g.ClientSecret != "" }

type ResendConfig struct {
	APIKey string `env:"RESEND_API_KEY"`
	From   string `env:"RESEND_FROM, default=Brandpreneur Portal <portal@brandpreneur.co>"`
	// To is the agency inbox receiving contact requests.
	To string `env:"RESEND_TO"`
}

type OTelConfig struct {
	Enabled     bool   `env:"OTEL_ENABLED,           default=true"`
	Endpoint    string `env:"OTEL_EXPORTER_ENDPOINT"`
	ServiceName string `env:"OTEL_SERVICE_NAME,      default=client-portal"`
}

type QueueConfig struct {
	Workers int `env:"CONTACT_WORKERS, default=4"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.JWTSecret == "" && cfg.Env != "development" {
		return nil, fmt.Errorf("config: JWT_SECRET is required outside development")
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret"
	}
	return &cfg, nil
}

// IsDevelopment reports whether pretty logging and relaxed defaults apply.
func (c *Config) IsDevelopment() bool { return c.Env == "development" }
