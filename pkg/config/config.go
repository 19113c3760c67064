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

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	SMTP     SMTPConfig
	Storage  StorageConfig
	CORS     CORSConfig
	Log      LogConfig
	Election ElectionConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret         string
	Expiration     time.Duration
	ReviewerExpiry time.Duration
	Issuer         string
}

// SMTPConfig configures the OTP mailer. Empty credentials switch the mailer
// into development mode where codes are logged instead of sent.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
}

// StorageConfig controls manifesto blob storage.
type StorageConfig struct {
	BaseDir         string
	PublicBaseURL   string
	SignedURLSecret string
	SignedURLTTL    time.Duration
	MaxFileSize     int64
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// ElectionConfig holds election-wide settings that are not part of the
// superadmin-managed SystemConfig row.
type ElectionConfig struct {
	EmailDomain    string
	OTPExpiry      time.Duration
	ConfigCacheTTL time.Duration
	MailWorkers    int
	MailRetries    int
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
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:         v.GetString("JWT_SECRET"),
		Expiration:     parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		ReviewerExpiry: parseDuration(v.GetString("REVIEWER_TOKEN_EXPIRATION"), 24*time.Hour),
		Issuer:         v.GetString("JWT_ISSUER"),
	}

	cfg.SMTP = SMTPConfig{
		Host:      v.GetString("SMTP_HOST"),
		Port:      v.GetInt("SMTP_PORT"),
		Username:  v.GetString("SMTP_USERNAME"),
		Password:  v.GetString("SMTP_PASSWORD"),
		FromName:  v.GetString("SMTP_FROM_NAME"),
		FromEmail: v.GetString("SMTP_FROM_EMAIL"),
	}

	maxFileSize := v.GetInt64("STORAGE_MAX_FILE_SIZE")
	if maxFileSize <= 0 {
		maxFileSize = 10 * 1024 * 1024
	}
	cfg.Storage = StorageConfig{
		BaseDir:         v.GetString("STORAGE_DIR"),
		PublicBaseURL:   v.GetString("STORAGE_PUBLIC_BASE_URL"),
		SignedURLSecret: v.GetString("STORAGE_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("STORAGE_SIGNED_URL_TTL"), time.Hour),
		MaxFileSize:     maxFileSize,
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Election = ElectionConfig{
		EmailDomain:    v.GetString("ELECTION_EMAIL_DOMAIN"),
		OTPExpiry:      parseDuration(v.GetString("OTP_EXPIRY"), 10*time.Minute),
		ConfigCacheTTL: parseDuration(v.GetString("CONFIG_CACHE_TTL"), 30*time.Second),
		MailWorkers:    v.GetInt("MAIL_WORKERS"),
		MailRetries:    v.GetInt("MAIL_RETRIES"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "election_api")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REVIEWER_TOKEN_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "election-api")

	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM_NAME", "Election Commission")
	v.SetDefault("SMTP_FROM_EMAIL", "noreply@elections.local")

	v.SetDefault("STORAGE_DIR", "./manifestos")
	v.SetDefault("STORAGE_PUBLIC_BASE_URL", "http://localhost:8080/api/v1/manifestos/view")
	v.SetDefault("STORAGE_SIGNED_URL_SECRET", "dev_storage_secret")
	v.SetDefault("STORAGE_SIGNED_URL_TTL", "1h")
	v.SetDefault("STORAGE_MAX_FILE_SIZE", 10*1024*1024)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ELECTION_EMAIL_DOMAIN", "iitk.ac.in")
	v.SetDefault("OTP_EXPIRY", "10m")
	v.SetDefault("CONFIG_CACHE_TTL", "30s")
	v.SetDefault("MAIL_WORKERS", 2)
	v.SetDefault("MAIL_RETRIES", 3)
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
