package core

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/joho/godotenv"
)

// Config holds runtime settings for the API process.
type Config struct {
	Port                       string        // HTTP listen port (e.g., "8000")
	Environment                string        // development|production, selects log encoder
	SecretKey                  string        // HMAC key for access tokens
	TokenTTL                   time.Duration // access token lifetime
	TokenIssuer                string        // optional "iss" claim; validated when set
	TeachersFile               string        // JSON teacher directory, re-read per lookup
	TeacherDatabaseURL         string        // when set, teachers come from Postgres instead
	MigrationsDir              string        // goose migrations for the teachers table
	ActivitiesFile             string        // optional YAML catalog; built-in seed when empty
	StaticDir                  string        // directory served under /static
	LogDir                     string        // directory to write application logs
	LogLevel                   string        // zap level name
	RedisURL                   string        // roster event queue; disabled when empty
	AllowedOrigins             []string      // allowed origins for CORS
	EnforceCapacity            bool          // reject signups past max_participants
	AllowLegacyPasswords       bool          // accept "hashed_password_" placeholder secrets
	BootstrapTeacherEnabled    bool          // create an initial teacher in an empty Postgres directory
	InitialTeacherPasswordPath string        // where to write the generated teacher password (if empty -> log output)
}

// Load populates Config from environment variables with sane defaults.
// A .env file in the working directory is applied first when present.
func Load() Config {
	if err := godotenv.Load(".env"); err == nil {
		log.Println("loaded configuration from .env")
	}

	return Config{
		Port:                       firstNonEmpty(os.Getenv("PORT"), "8000"),
		Environment:                firstNonEmpty(os.Getenv("ENV"), "development"),
		SecretKey:                  firstNonEmpty(os.Getenv("SECRET_KEY"), defaultSecretKey),
		TokenTTL:                   durationFromEnv("TOKEN_TTL", 60*time.Minute),
		TokenIssuer:                os.Getenv("TOKEN_ISSUER"),
		TeachersFile:               firstNonEmpty(os.Getenv("TEACHERS_FILE"), "data/teachers.json"),
		TeacherDatabaseURL:         os.Getenv("TEACHER_DATABASE_URL"),
		MigrationsDir:              firstNonEmpty(os.Getenv("MIGRATIONS_DIR"), "migrations"),
		ActivitiesFile:             os.Getenv("ACTIVITIES_FILE"),
		StaticDir:                  firstNonEmpty(os.Getenv("STATIC_DIR"), "static"),
		LogDir:                     firstNonEmpty(os.Getenv("LOG_DIR"), "logs"),
		LogLevel:                   firstNonEmpty(os.Getenv("LOG_LEVEL"), "info"),
		RedisURL:                   os.Getenv("REDIS_URL"),
		AllowedOrigins:             parseCSV(os.Getenv("ALLOWED_ORIGINS")),
		EnforceCapacity:            boolFromEnv("ENFORCE_CAPACITY", false),
		AllowLegacyPasswords:       boolFromEnv("ALLOW_LEGACY_PASSWORDS", false),
		BootstrapTeacherEnabled:    boolFromEnv("BOOTSTRAP_TEACHER", true),
		InitialTeacherPasswordPath: os.Getenv("INITIAL_TEACHER_PASSWORD_PATH"),
	}
}

// defaultSecretKey lets development start without configuration. Production
// refuses it: anyone who knows it can mint tokens.
const defaultSecretKey = "change-this-secret-key-before-deploying"

// Validate reports settings the server cannot start with.
func (c Config) Validate() error {
	secretRules := []validation.Rule{validation.Required, validation.Length(16, 0)}
	if c.Environment == "production" {
		secretRules = append(secretRules, validation.NotIn(defaultSecretKey).Error("must be set explicitly in production"))
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.Port, validation.Required),
		validation.Field(&c.SecretKey, secretRules...),
		validation.Field(&c.TokenTTL, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.Environment, validation.In("development", "production", "test")),
	)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// boolFromEnv reads a boolean from env var name, falling back to defaultVal when empty or invalid.
func boolFromEnv(name string, defaultVal bool) bool {
	if v := os.Getenv(name); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

// intFromEnv reads an int from env var name, falling back to defaultVal when empty or invalid.
func intFromEnv(name string, defaultVal int) int {
	if v := os.Getenv(name); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

// durationFromEnv accepts Go durations ("90m") or a bare number of minutes.
func durationFromEnv(name string, defaultVal time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if m := intFromEnv(name, 0); m > 0 {
		return time.Duration(m) * time.Minute
	}
	return defaultVal
}

// parseCSV splits comma-separated list and trims spaces; empty entries are skipped.
func parseCSV(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}
