// Package config reads process configuration from the environment.
// A .env file in the working directory is loaded first when present;
// variables already set in the environment take precedence.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends understood by the activities server.
const (
	StoreJSON     = "json"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Server holds settings for the activities API process.
type Server struct {
	Port           string
	Store          string
	ActivitiesFile string
	SQLitePath     string
	DB             Database
	CORSOrigins    []string
	BoardURL       string
}

// Database holds PostgreSQL connection settings.
type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN builds a libpq-compatible connection string.
func (c Database) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Board holds settings for the board front process.
type Board struct {
	Port       string
	APIBaseURL string
	APITimeout time.Duration
	CSRFKey    []byte
	Production bool
	SessionTTL time.Duration
}

// writeMargin is the time a board response may spend outside API calls.
const writeMargin = 5 * time.Second

// WriteTimeout bounds one board response. A signup or unregister makes two
// API calls in a row, the write and the re-fetch, each limited by
// APITimeout. Zero means no limit, as for APITimeout.
func (c Board) WriteTimeout() time.Duration {
	if c.APITimeout == 0 {
		return 0
	}
	return 2*c.APITimeout + writeMargin
}

// LoadServer reads the activities server configuration.
func LoadServer() (Server, error) {
	loadDotEnv()

	cfg := Server{
		Port:           getEnv("PORT", "8000"),
		Store:          strings.ToLower(getEnv("STORE", StoreJSON)),
		ActivitiesFile: getEnv("ACTIVITIES_FILE", "activities.json"),
		SQLitePath:     getEnv("SQLITE_PATH", "activities.db"),
		DB: Database{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "activities"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
		BoardURL:    getEnv("BOARD_URL", "http://localhost:8080/"),
	}

	switch cfg.Store {
	case StoreJSON, StoreSQLite, StorePostgres:
	default:
		return Server{}, fmt.Errorf("STORE must be one of %s, %s, %s; got %q",
			StoreJSON, StoreSQLite, StorePostgres, cfg.Store)
	}
	return cfg, nil
}

// LoadBoard reads the board front configuration. Outside production a
// missing CSRF_KEY is replaced by a random key, so sessions do not survive
// a restart.
func LoadBoard() (Board, error) {
	loadDotEnv()

	cfg := Board{
		Port:       getEnv("BOARD_PORT", "8080"),
		APIBaseURL: strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8000"), "/"),
		Production: getEnv("BOARD_ENV", "development") == "production",
	}

	var err error
	if cfg.APITimeout, err = getDuration("API_TIMEOUT", 10*time.Second); err != nil {
		return Board{}, err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 30*time.Minute); err != nil {
		return Board{}, err
	}

	if keyHex := os.Getenv("CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			return Board{}, fmt.Errorf("CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		cfg.CSRFKey = key
	} else if cfg.Production {
		return Board{}, fmt.Errorf("CSRF_KEY is required in production")
	}

	return cfg, nil
}

func loadDotEnv() {
	// A missing .env is the normal case in containers.
	_ = godotenv.Load()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
