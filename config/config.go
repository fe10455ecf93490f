package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds every runtime setting. It is built once in main and passed
// to the components that need it.
type Config struct {
	Port     string
	LogLevel string
	Timezone string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	GatewayBaseURL   string
	GatewayUser      string
	GatewayPassword  string
	GatewayReturnURL string
	GatewayTimeout   time.Duration
	Currency         string

	TicketSecret string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	UploadDir       string
	UploadURLPrefix string
	AppDeepLink     string

	ReconcileCron   string
	ReconcileMinAge time.Duration

	AdminEmail    string
	AdminPassword string
}

// Load reads .env (when present) and the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found, using process environment")
	}

	return Config{
		Port:     env("APP_PORT", "8002"),
		LogLevel: env("LOG_LEVEL", "info"),
		Timezone: env("APP_TIMEZONE", "America/Asuncion"),

		DBHost:     env("DB_HOST", "localhost"),
		DBPort:     envInt("DB_PORT", 5432),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		JWTSecret:       os.Getenv("JWT_SECRET"),
		AccessTokenTTL:  envDuration("ACCESS_TOKEN_TTL", time.Hour),
		RefreshTokenTTL: envDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		GatewayBaseURL:   strings.TrimRight(os.Getenv("GATEWAY_BASE_URL"), "/"),
		GatewayUser:      os.Getenv("GATEWAY_USER"),
		GatewayPassword:  os.Getenv("GATEWAY_PASSWORD"),
		GatewayReturnURL: os.Getenv("GATEWAY_RETURN_URL"),
		GatewayTimeout:   envDuration("GATEWAY_TIMEOUT", 30*time.Second),
		Currency:         env("CURRENCY", "PYG"),

		TicketSecret: os.Getenv("TICKET_SECRET"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     envInt("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),

		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),

		UploadDir:       env("UPLOAD_DIR", "./uploads"),
		UploadURLPrefix: env("UPLOAD_URL_PREFIX", "/uploads"),
		AppDeepLink:     env("APP_DEEP_LINK", "tourismapp://payment"),

		ReconcileCron:   env("RECONCILE_CRON", "*/2 * * * *"),
		ReconcileMinAge: envDuration("RECONCILE_MIN_AGE", 2*time.Minute),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
}

// Validate reports every required setting that is missing.
func (c Config) Validate() error {
	var missing []string
	required := map[string]string{
		"DB_USER":          c.DBUser,
		"DB_NAME":          c.DBName,
		"JWT_SECRET":       c.JWTSecret,
		"GATEWAY_BASE_URL": c.GatewayBaseURL,
		"GATEWAY_USER":     c.GatewayUser,
		"GATEWAY_PASSWORD": c.GatewayPassword,
		"TICKET_SECRET":    c.TicketSecret,
	}
	for key, value := range required {
		if value == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}
	if c.GatewayTimeout <= 0 {
		return errors.New("GATEWAY_TIMEOUT must be positive")
	}
	return nil
}

// Location returns the configured timezone, falling back to UTC.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		logrus.WithError(err).Warnf("unknown timezone %q, using UTC", c.Timezone)
		return time.UTC
	}
	return loc
}

func (c Config) CloudinaryEnabled() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

func (c Config) SMTPEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logrus.Warnf("invalid int for %s: %q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logrus.Warnf("invalid duration for %s: %q, using %s", key, v, fallback)
		return fallback
	}
	return d
}

