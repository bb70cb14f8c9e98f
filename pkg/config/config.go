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
	BaseURL   string

	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	CORS        CORSConfig
	Log         LogConfig
	Attendance  AttendanceConfig
	Geolocation GeolocationConfig
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
	Secret            string
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

// AttendanceConfig tunes the QR check-in flow.
type AttendanceConfig struct {
	// EnforceExpiry rejects check-ins against sessions past their expiry.
	EnforceExpiry bool
	// SessionTTL is how long a newly created session accepts check-ins.
	SessionTTL time.Duration
	// DefaultRadiusMeters applies when a session omits its own radius.
	DefaultRadiusMeters float64
	// HardRejectFactor, when > 0, rejects check-ins beyond
	// radius * factor instead of marking them late. 0 disables the gate.
	HardRejectFactor float64
	// DuplicatePolicy selects the eligibility policy: "reject" or "allow".
	DuplicatePolicy string
	// SessionCacheTTL bounds how long resolved sessions stay cached.
	SessionCacheTTL time.Duration
}

// GeolocationConfig mirrors the position-acquisition options handed to
// location providers.
type GeolocationConfig struct {
	Timeout            time.Duration
	EnableHighAccuracy bool
	MaxAge             time.Duration
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
	cfg.BaseURL = v.GetString("BASE_URL")

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
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Attendance = AttendanceConfig{
		EnforceExpiry:       v.GetBool("ATTENDANCE_ENFORCE_EXPIRY"),
		SessionTTL:          parseDuration(v.GetString("ATTENDANCE_SESSION_TTL"), 30*time.Minute),
		DefaultRadiusMeters: v.GetFloat64("ATTENDANCE_DEFAULT_RADIUS_METERS"),
		HardRejectFactor:    v.GetFloat64("ATTENDANCE_HARD_REJECT_FACTOR"),
		DuplicatePolicy:     v.GetString("ATTENDANCE_DUPLICATE_POLICY"),
		SessionCacheTTL:     parseDuration(v.GetString("ATTENDANCE_SESSION_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Geolocation = GeolocationConfig{
		Timeout:            parseDuration(v.GetString("GEOLOCATION_TIMEOUT"), 10*time.Second),
		EnableHighAccuracy: v.GetBool("GEOLOCATION_HIGH_ACCURACY"),
		MaxAge:             parseDuration(v.GetString("GEOLOCATION_MAX_AGE"), 0),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("BASE_URL", "http://localhost:8080")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "pcl_portal")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ATTENDANCE_ENFORCE_EXPIRY", true)
	v.SetDefault("ATTENDANCE_SESSION_TTL", "30m")
	v.SetDefault("ATTENDANCE_DEFAULT_RADIUS_METERS", 50)
	v.SetDefault("ATTENDANCE_HARD_REJECT_FACTOR", 0)
	v.SetDefault("ATTENDANCE_DUPLICATE_POLICY", "reject")
	v.SetDefault("ATTENDANCE_SESSION_CACHE_TTL", "5m")

	v.SetDefault("GEOLOCATION_TIMEOUT", "10s")
	v.SetDefault("GEOLOCATION_HIGH_ACCURACY", false)
	v.SetDefault("GEOLOCATION_MAX_AGE", "0s")
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
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}

	return out
}
