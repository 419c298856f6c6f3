package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the competency service.
// Values come from the environment; a .env file in the working directory is loaded first when present.
type Config struct {
	Port        string `env:"PORT" env-default:"3001"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`

	// CORSAllowedOrigins is a comma-separated list; "*" allows any origin.
	CORSAllowedOrigins string        `env:"CORS_ALLOWED_ORIGINS" env-default:"http://localhost:5173,http://localhost:3000"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"30s"`

	Database DatabaseConfig
	RedisURL string `env:"REDIS_URL" env-default:""`

	Auth      AuthConfig
	AI        AIConfig
	Events    EventsConfig
	RateLimit RateLimitConfig

	LogLevelName string `env:"LOG_LEVEL" env-default:"info"`
	LogFile      string `env:"LOG_FILE" env-default:""`

	// LogLevel is parsed from LogLevelName at load time.
	LogLevel slog.Level
}

type DatabaseConfig struct {
	Host            string        `env:"DB_HOST" env-default:"localhost"`
	Port            int           `env:"DB_PORT" env-default:"5432"`
	User            string        `env:"DB_USER" env-default:"postgres"`
	Password        string        `env:"DB_PASSWORD"`
	Name            string        `env:"DB_NAME" env-default:"competency"`
	SSLMode         string        `env:"DB_SSLMODE" env-default:"disable"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"1h"`
	AutoMigrate     bool          `env:"DB_AUTO_MIGRATE" env-default:"true"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type AuthConfig struct {
	JWTSecret       string        `env:"JWT_SECRET"`
	TokenTTL        time.Duration `env:"JWT_TTL" env-default:"168h"`
	AdminUsername   string        `env:"ADMIN_USERNAME" env-default:"admin"`
	AdminPassword   string        `env:"ADMIN_PASSWORD" env-default:"admin123"`
	BcryptCost      int           `env:"BCRYPT_COST" env-default:"10"`
	DefaultPassword string        `env:"DEFAULT_PASSWORD" env-default:"default123"`
}

type AIConfig struct {
	APIKey   string        `env:"GEMINI_API_KEY"`
	Model    string        `env:"GEMINI_MODEL" env-default:"gemini-2.5-flash"`
	TTSModel string        `env:"GEMINI_TTS_MODEL" env-default:"gemini-2.5-flash-preview-tts"`
	Timeout  time.Duration `env:"AI_TIMEOUT" env-default:"60s"`
}

type EventsConfig struct {
	// KafkaBrokers is a comma-separated broker list; empty keeps events in-process.
	KafkaBrokers string `env:"KAFKA_BROKERS" env-default:""`
	Topic        string `env:"EVENTS_TOPIC" env-default:"competency.assessment.events"`
}

// Brokers returns the parsed broker list.
func (e EventsConfig) Brokers() []string {
	return splitList(e.KafkaBrokers)
}

type RateLimitConfig struct {
	Requests int           `env:"AI_RATE_LIMIT" env-default:"30"`
	Window   time.Duration `env:"AI_RATE_WINDOW" env-default:"1m"`
}

// LoadConfig reads .env (if any) and the process environment.
func LoadConfig() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	level, err := parseLogLevel(cfg.LogLevelName)
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values that have no safe default.
func (c *Config) Validate() error {
	var errs []error

	if c.Auth.JWTSecret == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("JWT_SECRET is required in production"))
		} else {
			c.Auth.JWTSecret = "development-secret"
		}
	}
	if c.Database.MaxOpenConns <= 0 || c.Database.MaxIdleConns < 0 {
		errs = append(errs, errors.New("database pool sizes must be positive"))
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST %d out of range", c.Auth.BcryptCost))
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("AI_RATE_LIMIT and AI_RATE_WINDOW must be positive"))
	}

	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins returns the parsed CORS origin list.
func (c *Config) AllowedOrigins() []string {
	return splitList(c.CORSAllowedOrigins)
}

func parseLogLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q: %w", name, err)
	}
	return level, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
