package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. Access and refresh tokens are signed with
// distinct secrets so that compromise of one cannot forge the other.
type Config struct {
	Env             string // application environment (e.g. "dev", "prod")
	Port            string // HTTP port to listen on
	Store           string // "mysql" or "memory"
	DBUser          string // database username
	DBPass          string // database password (optional)
	DBHost          string // database host address
	DBPort          string // database port number
	DBName          string // database name
	JWTSecret       string // secret used to sign access tokens
	RefreshSecret   string // secret used to sign refresh tokens
	AccessTTLMin    int    // access token time-to-live in minutes
	RefreshTTLDays  int    // refresh token time-to-live in days
	RememberTTLDays int    // refresh TTL when the client asks to be remembered
	ResetTTLMin     int    // password-reset token time-to-live in minutes
	BcryptCost      int    // bcrypt cost for password hashing

	SMTPHost string // outbound mail host (empty disables mail)
	SMTPPort int    // outbound mail port
	SMTPUser string // outbound mail username / from address
	SMTPPass string // outbound mail password
	AppURL   string // public frontend URL used in email links

	MPAccessToken string // Mercado Pago access token (empty disables payments)
	MPBaseURL     string // Mercado Pago API base URL (overridable for tests)

	MinioEndpoint  string // MinIO endpoint (empty disables avatar upload)
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	MinioPublicURL string // base URL the stored avatar is reachable under
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message. Backing-service
// sections (DB, SMTP, Mercado Pago, MinIO) are read leniently so the
// in-memory variant boots with nothing but the secrets set.
func Load() Config {
	cfg := Config{
		Env:             must("APP_ENV"),
		Port:            must("APP_PORT"),
		Store:           getenv("STORE", "mysql"),
		DBUser:          os.Getenv("DB_USER"),
		DBPass:          os.Getenv("DB_PASS"),
		DBHost:          os.Getenv("DB_HOST"),
		DBPort:          os.Getenv("DB_PORT"),
		DBName:          os.Getenv("DB_NAME"),
		JWTSecret:       must("JWT_SECRET"),
		RefreshSecret:   must("REFRESH_SECRET"),
		AccessTTLMin:    intenv("ACCESS_TOKEN_TTL_MIN", 15),
		RefreshTTLDays:  intenv("REFRESH_TOKEN_TTL_DAYS", 7),
		RememberTTLDays: intenv("REMEMBER_TOKEN_TTL_DAYS", 30),
		ResetTTLMin:     intenv("RESET_TOKEN_TTL_MIN", 60),
		BcryptCost:      intenv("BCRYPT_COST", 10),

		SMTPHost: os.Getenv("EMAIL_HOST"),
		SMTPPort: intenv("EMAIL_PORT", 587),
		SMTPUser: os.Getenv("EMAIL_USER"),
		SMTPPass: os.Getenv("EMAIL_PASS"),
		AppURL:   getenv("APP_URL", "http://localhost:5173"),

		MPAccessToken: os.Getenv("MERCADOPAGO_ACCESS_TOKEN"),
		MPBaseURL:     getenv("MERCADOPAGO_BASE_URL", "https://api.mercadopago.com"),

		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getenv("MINIO_BUCKET", "roma-avatars"),
		MinioUseSSL:    getenv("MINIO_USE_SSL", "false") == "true",
		MinioPublicURL: os.Getenv("MINIO_PUBLIC_URL"),
	}
	if cfg.Store != "memory" && cfg.DBHost == "" {
		// No database configured; fall back to the in-memory store.
		cfg.Store = "memory"
	}
	return cfg
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intenv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}
