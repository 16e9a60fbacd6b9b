package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  Database and port values are required;
// everything else falls back to a sensible default so a bare dev
// environment still boots.
type Config struct {
	Env        string // application environment (e.g. "dev", "prod")
	Port       string // HTTP port to listen on
	DBUser     string // database username
	DBPass     string // database password (optional)
	DBHost     string // database host address
	DBPort     string // database port number
	DBName     string // database name
	BcryptCost int    // bcrypt cost for admin password hashing

	UploadDir  string        // directory where attachment blobs are stored
	MaxFileMB  int64         // per-attachment size limit in megabytes
	SessionTTL time.Duration // lifetime of the admin session cookie

	// Seed admin created at startup when no such username exists yet.
	SeedAdminUser   string
	SeedAdminPass   string
	SeedAdminNombre string

	SMTP SMTPConfig
}

// SMTPConfig configures the confirmation-email sender.  When User is
// empty the notifier is disabled and confirmations proceed without mail.
type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// Load reads configuration values from environment variables and returns
// a Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:        getenv("APP_ENV", "dev"),
		Port:       must("APP_PORT"),
		DBUser:     must("DB_USER"),
		DBPass:     os.Getenv("DB_PASS"), // empty allowed
		DBHost:     must("DB_HOST"),
		DBPort:     must("DB_PORT"),
		DBName:     must("DB_NAME"),
		BcryptCost: atoi(getenv("BCRYPT_COST", "10")),

		UploadDir:  getenv("UPLOAD_DIR", "public/uploads"),
		MaxFileMB:  int64(atoi(getenv("MAX_FILE_MB", "20"))),
		SessionTTL: parseDur(getenv("SESSION_TTL", "2h")),

		SeedAdminUser:   getenv("SEED_ADMIN_USER", "admin"),
		SeedAdminPass:   getenv("SEED_ADMIN_PASS", "admin123"),
		SeedAdminNombre: getenv("SEED_ADMIN_NOMBRE", "Administrador Principal"),

		SMTP: SMTPConfig{
			Host: getenv("SMTP_HOST", "smtp.outlook.com"),
			Port: atoi(getenv("SMTP_PORT", "587")),
			User: os.Getenv("SMTP_USER"),
			Pass: os.Getenv("SMTP_PASS"),
			From: getenv("SMTP_FROM", os.Getenv("SMTP_USER")),
		},
	}
}

// must retrieves the value of a required environment variable.  If the
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

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 2 * time.Hour
	}
	return d
}
