package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	defaultJWTSecret      = "dev_secret"
	defaultReceiptsSecret = "dev_receipts_secret"
)

type Config struct {
	Env           string
	Port          int
	APIPrefix     string
	PublicBaseURL string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Cache    CacheConfig
	Uploads  UploadsConfig
	Receipts ReceiptsConfig
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
	AutoMigrate  bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Issuer            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CacheConfig toggles the Redis-backed installment snapshot cache.
type CacheConfig struct {
	Enabled     bool
	SnapshotTTL time.Duration
}

// UploadsConfig controls where payment proofs are written and how they are normalised.
type UploadsConfig struct {
	StorageDir       string
	MaxFileSizeBytes int64
	MaxImageWidth    int
	MaxImageHeight   int
	MaxSourcePixels  int64
	JPEGQuality      int
}

// ReceiptsConfig configures signed receipt share links and the printed footer.
type ReceiptsConfig struct {
	SignedURLSecret string
	SignedURLTTL    time.Duration
	SchoolName      string
	Address         string
	ContactNumbers  []string
	Website         string
	ReceivedBy      string
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
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.PublicBaseURL = strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Issuer:            v.GetString("JWT_ISSUER"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 12*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Cache = CacheConfig{
		Enabled:     v.GetBool("ENABLE_SNAPSHOT_CACHE"),
		SnapshotTTL: parseDuration(v.GetString("SNAPSHOT_CACHE_TTL"), 2*time.Minute),
	}

	maxUpload := v.GetInt64("UPLOADS_MAX_FILE_SIZE")
	if maxUpload <= 0 {
		maxUpload = 4 * 1024 * 1024
	}
	cfg.Uploads = UploadsConfig{
		StorageDir:       v.GetString("UPLOADS_STORAGE_DIR"),
		MaxFileSizeBytes: maxUpload,
		MaxImageWidth:    v.GetInt("UPLOADS_MAX_IMAGE_WIDTH"),
		MaxImageHeight:   v.GetInt("UPLOADS_MAX_IMAGE_HEIGHT"),
		MaxSourcePixels:  v.GetInt64("UPLOADS_MAX_SOURCE_PIXELS"),
		JPEGQuality:      v.GetInt("UPLOADS_JPEG_QUALITY"),
	}

	cfg.Receipts = ReceiptsConfig{
		SignedURLSecret: v.GetString("RECEIPTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("RECEIPTS_SIGNED_URL_TTL"), 72*time.Hour),
		SchoolName:      v.GetString("RECEIPTS_SCHOOL_NAME"),
		Address:         v.GetString("RECEIPTS_ADDRESS"),
		ContactNumbers:  splitAndTrim(v.GetString("RECEIPTS_CONTACT_NUMBERS")),
		Website:         v.GetString("RECEIPTS_WEBSITE"),
		ReceivedBy:      v.GetString("RECEIPTS_RECEIVED_BY"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Env != EnvProduction {
		return nil
	}
	if c.JWT.Secret == "" || c.JWT.Secret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.Receipts.SignedURLSecret == "" || c.Receipts.SignedURLSecret == defaultReceiptsSecret {
		return errors.New("RECEIPTS_SIGNED_URL_SECRET must be set in production")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "school_fees")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_ISSUER", "sma-fee-api")
	v.SetDefault("JWT_EXPIRATION", "12h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_SNAPSHOT_CACHE", false)
	v.SetDefault("SNAPSHOT_CACHE_TTL", "2m")

	v.SetDefault("UPLOADS_STORAGE_DIR", "./uploads")
	v.SetDefault("UPLOADS_MAX_FILE_SIZE", 4*1024*1024)
	v.SetDefault("UPLOADS_MAX_IMAGE_WIDTH", 1600)
	v.SetDefault("UPLOADS_MAX_IMAGE_HEIGHT", 1600)
	v.SetDefault("UPLOADS_MAX_SOURCE_PIXELS", 40_000_000)
	v.SetDefault("UPLOADS_JPEG_QUALITY", 85)

	v.SetDefault("RECEIPTS_SIGNED_URL_SECRET", defaultReceiptsSecret)
	v.SetDefault("RECEIPTS_SIGNED_URL_TTL", "72h")
	v.SetDefault("RECEIPTS_SCHOOL_NAME", "International School")
	v.SetDefault("RECEIPTS_ADDRESS", "")
	v.SetDefault("RECEIPTS_CONTACT_NUMBERS", "")
	v.SetDefault("RECEIPTS_WEBSITE", "")
	v.SetDefault("RECEIPTS_RECEIVED_BY", "Accounts Office")
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
