// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Environment string `validate:"required"`
	LogLevel    string
	LogJSON     bool
	Server      ServerConfig
	LLM         LLMConfig
	Generation  GenerationConfig
	Store       StoreConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	AWS         AWSConfig
	I18n        I18nConfig
	CORS        CORSConfig
}

type ServerConfig struct {
	Port         string `validate:"required,numeric"`
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

// LLMConfig holds provider credentials. Base URLs exist so tests can point
// the gateway at a local fake; production leaves them empty.
type LLMConfig struct {
	OpenAIAPIKey     string
	AnthropicAPIKey  string
	GoogleAPIKey     string
	OpenAIBaseURL    string
	AnthropicBaseURL string
	GoogleBaseURL    string
	Breaker          BreakerConfig
}

// BreakerConfig trips a provider's circuit after ConsecutiveFailures
// transport or decode failures in a row. Zero disables the breaker.
type BreakerConfig struct {
	ConsecutiveFailures int `validate:"min=0"`
	// OpenSeconds is how long a tripped circuit rejects calls.
	OpenSeconds int `validate:"min=1"`
}

type GenerationConfig struct {
	Provider string `validate:"required,oneof=claude gemini chatgpt"`
	// Dispatch selects how the generator reaches the gateway: "local" calls
	// it in-process, "http" posts to GatewayBaseURL like the browser did.
	Dispatch       string `validate:"required,oneof=local http"`
	GatewayBaseURL string `validate:"required_if=Dispatch http"`
}

type StoreConfig struct {
	Driver    string `validate:"required,oneof=memory file sqlite postgres redis s3"`
	Key       string `validate:"required"`
	Directory string `validate:"required_if=Driver file"`
	SQLiteDSN string `validate:"required_if=Driver sqlite"`
	Table     string `validate:"required"`
	S3Prefix  string
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
	Endpoint        string
}

type I18nConfig struct {
	DefaultLocale string `validate:"required"`
}

type CORSConfig struct {
	AllowedOrigins []string
}

var validate = validator.New()

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogJSON:     getEnvAsBool("LOG_JSON", false),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 60),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		LLM: LLMConfig{
			OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
			AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
			GoogleAPIKey:     os.Getenv("GOOGLE_API_KEY"),
			OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", ""),
			AnthropicBaseURL: getEnv("ANTHROPIC_BASE_URL", ""),
			GoogleBaseURL:    getEnv("GOOGLE_BASE_URL", ""),
			Breaker: BreakerConfig{
				ConsecutiveFailures: getEnvAsInt("LLM_BREAKER_FAILURES", 5),
				OpenSeconds:         getEnvAsInt("LLM_BREAKER_OPEN_SECONDS", 30),
			},
		},
		Generation: GenerationConfig{
			Provider:       getEnv("LICENSE_PROVIDER", "claude"),
			Dispatch:       getEnv("GATEWAY_DISPATCH", "local"),
			GatewayBaseURL: getEnv("GATEWAY_BASE_URL", ""),
		},
		Store: StoreConfig{
			Driver:    getEnv("STORE_DRIVER", "memory"),
			Key:       getEnv("STORE_KEY", "licenseRequests"),
			Directory: getEnv("STORE_DIRECTORY", "./data"),
			SQLiteDSN: getEnv("STORE_SQLITE_DSN", "file:portal.db?_pragma=busy_timeout(5000)"),
			Table:     getEnv("STORE_TABLE", "storage_entries"),
			S3Prefix:  getEnv("STORE_S3_PREFIX", "portal/"),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "ip_licensing_portal"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:        getEnv("AWS_S3_BUCKET", "ip-licensing-portal"),
			Endpoint:        getEnv("AWS_S3_ENDPOINT", ""),
		},
		I18n: I18nConfig{
			DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Store.Driver == "memory" && c.Environment == "production" {
		return fmt.Errorf("memory store is not allowed in production")
	}

	if c.Store.Driver == "redis" && c.Redis.Addr == "" {
		return fmt.Errorf("redis store requires REDIS_ADDR")
	}

	if c.Store.Driver == "postgres" && c.Database.Password == "" && c.Environment == "production" {
		return fmt.Errorf("database password is required in production")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
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
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
