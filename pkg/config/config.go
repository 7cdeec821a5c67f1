package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Gateway    GatewayConfig
	Chatbot    ChatbotConfig
	Pages      PagesConfig
	Enrollment EnrollmentConfig
	GraphQL    GraphQLConfig
	Redis      RedisConfig
	CORS       CORSConfig
	Log        LogConfig
}

// GatewayConfig points at the external REST/GraphQL API gateway.
type GatewayConfig struct {
	BaseURL    string
	GraphQLURL string
	Timeout    time.Duration
}

// ChatbotConfig points at the translate/summarize backend.
type ChatbotConfig struct {
	BaseURL string
	Timeout time.Duration
}

// PagesConfig bounds the lifetime of mounted page sessions.
type PagesConfig struct {
	SessionTTL    time.Duration
	SweepInterval time.Duration
}

// EnrollmentConfig gates the randomized enrollment view.
type EnrollmentConfig struct {
	Simulated bool
}

// GraphQLConfig governs the proxy response cache.
type GraphQLConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	gatewayBase := strings.TrimRight(v.GetString("GATEWAY_BASE_URL"), "/")
	cfg.Gateway = GatewayConfig{
		BaseURL:    gatewayBase,
		GraphQLURL: v.GetString("GRAPHQL_URL"),
		Timeout:    parseDuration(v.GetString("GATEWAY_TIMEOUT"), 10*time.Second),
	}
	if cfg.Gateway.GraphQLURL == "" {
		cfg.Gateway.GraphQLURL = gatewayBase + "/graphql"
	}

	cfg.Chatbot = ChatbotConfig{
		BaseURL: strings.TrimRight(v.GetString("CHATBOT_BASE_URL"), "/"),
		Timeout: parseDuration(v.GetString("CHAT_TIMEOUT"), 30*time.Second),
	}
	if cfg.Chatbot.BaseURL == "" {
		cfg.Chatbot.BaseURL = gatewayBase
	}

	cfg.Pages = PagesConfig{
		SessionTTL:    parseDuration(v.GetString("PAGE_SESSION_TTL"), 30*time.Minute),
		SweepInterval: parseDuration(v.GetString("PAGE_SESSION_SWEEP_INTERVAL"), time.Minute),
	}

	cfg.Enrollment = EnrollmentConfig{
		Simulated: v.GetBool("ENABLE_ENROLLMENT_SIMULATION"),
	}

	cfg.GraphQL = GraphQLConfig{
		CacheEnabled: v.GetBool("ENABLE_GRAPHQL_CACHE"),
		CacheTTL:     parseDuration(v.GetString("GRAPHQL_CACHE_TTL"), 30*time.Second),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 3000)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("GATEWAY_BASE_URL", "http://localhost:8086")
	v.SetDefault("GRAPHQL_URL", "")
	v.SetDefault("GATEWAY_TIMEOUT", "10s")
	v.SetDefault("CHATBOT_BASE_URL", "")
	v.SetDefault("CHAT_TIMEOUT", "30s")

	v.SetDefault("PAGE_SESSION_TTL", "30m")
	v.SetDefault("PAGE_SESSION_SWEEP_INTERVAL", "1m")
	v.SetDefault("ENABLE_ENROLLMENT_SIMULATION", false)

	v.SetDefault("ENABLE_GRAPHQL_CACHE", false)
	v.SetDefault("GRAPHQL_CACHE_TTL", "30s")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
