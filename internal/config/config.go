package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"itinvent-bot/pkg/database"
	"itinvent-bot/pkg/inventory"

	"github.com/joho/godotenv"
)

type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Inventory   InventoryConfig
	Access      AccessConfig
	Session     SessionConfig
	Recognition RecognitionConfig
	Documents   DocumentsConfig
	SMTP        SMTPConfig
	Keys        APIKeys
	Tracing     TracingConfig
}

type AppConfig struct {
	Port         string
	Environment  string
	LogFilePath  string
	AuditLogPath string
	NatsURL      string
	RedisURL     string
	JWTSecret    string
}

// DatabaseConfig is the application's own store (records, selections, access entries).
type DatabaseConfig struct {
	Connection string
}

type InventoryConfig struct {
	Primary     string
	Databases   []inventory.Database
	CatalogFile string
	HandleTTL   time.Duration
	Threshold   float64
}

type AccessConfig struct {
	Users     []string
	Groups    []string
	Staleness time.Duration
}

type SessionConfig struct {
	IdleTimeout  time.Duration
	BusyTTL      time.Duration
	ListPageSize int
	MaxItems     int
}

type RecognitionConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

func (c RecognitionConfig) Enabled() bool {
	return c.APIKey != ""
}

type DocumentsConfig struct {
	ActsDir string
	EmailTo []string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

func (c SMTPConfig) Enabled() bool {
	return c.Host != ""
}

type APIKeys struct {
	WorkflowTopic string
}

type TracingConfig struct {
	Enabled  bool
	Endpoint string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	primary := strings.ToUpper(getEnv("PRIMARY_DATABASE", "ITINVENT"))

	return &Config{
		App: AppConfig{
			Port:         getEnv("APP_PORT", "3000"),
			Environment:  getEnv("GO_ENV", "development"),
			LogFilePath:  getEnv("LOG_FILE_PATH", "logs/app.log"),
			AuditLogPath: getEnv("AUDIT_LOG_PATH", "logs/audit.log"),
			NatsURL:      getEnv("NATS_URL", ""),
			RedisURL:     getEnv("REDIS_URL", ""),
			JWTSecret:    getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Inventory: InventoryConfig{
			Primary:     primary,
			Databases:   databasesFromEnv(primary, getEnvAsList("AVAILABLE_DATABASES")),
			CatalogFile: getEnv("DATABASES_FILE", ""),
			HandleTTL:   getEnvAsDuration("DATABASE_HANDLE_TTL", 30*time.Minute),
			Threshold:   getEnvAsFloat("SUGGEST_THRESHOLD", 0.6),
		},
		Access: AccessConfig{
			Users:     getEnvAsList("ALLOWED_USERS"),
			Groups:    getEnvAsList("ALLOWED_GROUPS"),
			Staleness: getEnvAsDuration("ACCESS_STALENESS", 5*time.Minute),
		},
		Session: SessionConfig{
			IdleTimeout:  getEnvAsDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute),
			BusyTTL:      getEnvAsDuration("BUSY_LOCK_TTL", 30*time.Second),
			ListPageSize: getEnvAsInt("LIST_PAGE_SIZE", 8),
			MaxItems:     getEnvAsInt("TRANSFER_MAX_ITEMS", 20),
		},
		Recognition: RecognitionConfig{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			BaseURL: getEnv("OPENAI_BASE_URL", ""),
			Model:   getEnv("OPENAI_MODEL", ""),
		},
		Documents: DocumentsConfig{
			ActsDir: getEnv("ACTS_DIR", "acts"),
			EmailTo: getEnvAsList("ACT_EMAIL_TO"),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "IT-Invent"),
		},
		Keys: APIKeys{
			WorkflowTopic: getEnv("WORKFLOW_TOPIC_NAME", "WORKFLOW_COMMITTED"),
		},
		Tracing: TracingConfig{
			Enabled:  getEnvAsBool("OTEL_ENABLED", false),
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
	}
}

// databasesFromEnv reads DB_<ID>_DSN, or DB_<ID>_HOST/_PORT/_DATABASE/_USERNAME/_PASSWORD, for every id.
func databasesFromEnv(primary string, available []string) []inventory.Database {
	ids := []string{primary}
	seen := map[string]bool{primary: true}
	for _, id := range available {
		id = strings.ToUpper(id)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	dbs := make([]inventory.Database, 0, len(ids))
	for _, id := range ids {
		prefix := "DB_" + id + "_"
		dsn := getEnv(prefix+"DSN", "")
		if dsn == "" && getEnv(prefix+"HOST", "") != "" {
			dsn = database.GormConfig{
				Host:     getEnv(prefix+"HOST", ""),
				Port:     getEnv(prefix+"PORT", "5432"),
				User:     getEnv(prefix+"USERNAME", ""),
				Password: getEnv(prefix+"PASSWORD", ""),
				DBName:   getEnv(prefix+"DATABASE", strings.ToLower(id)),
				SSLMode:  getEnv(prefix+"SSLMODE", "disable"),
			}.DSN()
		}
		dbs = append(dbs, inventory.Database{
			ID:          id,
			Name:        getEnv(prefix+"NAME", id),
			Description: getEnv(prefix+"DESCRIPTION", ""),
			DSN:         dsn,
		})
	}
	return dbs
}

// Catalog builds the database allow-list, from DATABASES_FILE when set.
func (c *Config) Catalog() (*inventory.Catalog, error) {
	primary, dbs := c.Inventory.Primary, c.Inventory.Databases
	if c.Inventory.CatalogFile != "" {
		filePrimary, fileDbs, err := inventory.LoadCatalogFile(c.Inventory.CatalogFile)
		if err != nil {
			return nil, err
		}
		dbs = fileDbs
		if _, set := os.LookupEnv("PRIMARY_DATABASE"); !set && filePrimary != "" {
			primary = filePrimary
		}
	}
	return inventory.NewCatalog(primary, dbs)
}

// Validate reports every configuration error that prevents the bot from serving.
func (c *Config) Validate() error {
	var errs []error

	if c.Database.Connection == "" {
		errs = append(errs, errors.New("DB_CONNECTION_STRING is required"))
	}
	if c.App.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}

	catalog, err := c.Catalog()
	if err != nil {
		errs = append(errs, fmt.Errorf("database catalog: %w", err))
	} else {
		for _, db := range catalog.List() {
			if db.DSN == "" {
				errs = append(errs, fmt.Errorf("database %s has no connection settings (DB_%s_DSN or DB_%s_HOST)", db.ID, db.ID, db.ID))
			}
		}
	}

	if c.Session.IdleTimeout <= 0 {
		errs = append(errs, errors.New("SESSION_IDLE_TIMEOUT must be positive"))
	}
	if c.Access.Staleness <= 0 {
		errs = append(errs, errors.New("ACCESS_STALENESS must be positive"))
	}
	if c.Inventory.Threshold <= 0 || c.Inventory.Threshold > 1 {
		errs = append(errs, errors.New("SUGGEST_THRESHOLD must be in (0, 1]"))
	}
	if len(c.Documents.EmailTo) > 0 && !c.SMTP.Enabled() {
		errs = append(errs, errors.New("ACT_EMAIL_TO needs SMTP_HOST"))
	}

	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

// getEnvAsList splits a comma separated value, dropping blanks.
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
