package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"joblog/internal/core"
)

type Config struct {
	// HTTP Server
	Port            string
	ShutdownTimeout time.Duration
	LogLevel        string

	// Slot storage
	DataBackend  string
	SQLiteDBPath string
	SeedDir      string
	SlotKey      string

	// Validation policies
	NumericPolicy     string
	CheckNumberPolicy string
	SummaryOrder      string

	// Snapshot writer
	WriterMaxRetries int
	WriterRetryDelay time.Duration

	// AMQP, disabled when the URL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets mirror, disabled when the spreadsheet id is empty
	GoogleSpreadsheetID      string
	GoogleJobsSheet          string
	GoogleWeeklySheet        string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
	WeeklyReportSchedule     string
	Timezone                 string

	// Summary cache
	CacheSize int
	CacheTTL  time.Duration
}

func Load() *Config {
	cfg := &Config{
		Port:            getEnv("PORT", "8081"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		LogLevel:        getEnv("LOG_LEVEL", "info"),

		DataBackend:  getEnv("DATA_BACKEND", "sqlite"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/joblog.db"),
		SeedDir:      getEnv("SEED_DIR", "./data"),
		SlotKey:      getEnv("SLOT_KEY", "jobs"),

		NumericPolicy:     getEnv("NUMERIC_POLICY", string(core.NumericStrip)),
		CheckNumberPolicy: getEnv("CHECK_NUMBER_POLICY", string(core.CheckNumberOptional)),
		SummaryOrder:      getEnv("SUMMARY_ORDER", string(core.Descending)),

		WriterMaxRetries: getEnvInt("WRITER_MAX_RETRIES", 3),
		WriterRetryDelay: getEnvDuration("WRITER_RETRY_DELAY", 200*time.Millisecond),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "joblog"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "snapshot_persisted"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleJobsSheet:          getEnv("GOOGLE_JOBS_SHEET_NAME", "Jobs"),
		GoogleWeeklySheet:        getEnv("GOOGLE_WEEKLY_SHEET_NAME", "Weekly"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		WeeklyReportSchedule:     getEnv("WEEKLY_REPORT_SCHEDULE", "0 20 * * 6"),
		Timezone:                 getEnv("TZ_NAME", "Local"),

		CacheSize: getEnvInt("SUMMARY_CACHE_SIZE", 64),
		CacheTTL:  getEnvDuration("SUMMARY_CACHE_TTL", 5*time.Minute),
	}

	return cfg
}

// AMQPEnabled reports whether persistence notifications are published.
func (c *Config) AMQPEnabled() bool { return c.AMQPURL != "" }

// SheetsEnabled reports whether the worker mirrors to Google Sheets.
func (c *Config) SheetsEnabled() bool { return c.GoogleSpreadsheetID != "" }

// Validator builds the draft validator from the configured policies.
// Call Validate first; unknown values fall back to the defaults.
func (c *Config) Validator() core.Validator {
	v := core.DefaultValidator()
	if p, err := core.ParseNumericPolicy(c.NumericPolicy); err == nil {
		v.Numeric = p
	}
	if p, err := core.ParseCheckNumberPolicy(c.CheckNumberPolicy); err == nil {
		v.CheckNumber = p
	}
	return v
}

// Order returns the configured summary order, descending when unset.
func (c *Config) Order() core.SortOrder {
	if o, err := core.ParseSortOrder(c.SummaryOrder); err == nil && c.SummaryOrder != "" {
		return o
	}
	return core.Descending
}

// Location returns the configured time zone or time.Local.
func (c *Config) Location() *time.Location {
	if loc, err := time.LoadLocation(c.Timezone); err == nil && c.Timezone != "" {
		return loc
	}
	return time.Local
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate data backend
	validBackends := []string{"memory", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	// Validate SQLite configuration if backend is sqlite
	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if strings.TrimSpace(c.SlotKey) == "" {
		errors = append(errors, "slot key cannot be empty")
	}

	// Validate policies
	if _, err := core.ParseNumericPolicy(c.NumericPolicy); err != nil {
		errors = append(errors, fmt.Sprintf("invalid numeric policy '%s': must be 'strip' or 'reject'", c.NumericPolicy))
	}
	if _, err := core.ParseCheckNumberPolicy(c.CheckNumberPolicy); err != nil {
		errors = append(errors, fmt.Sprintf("invalid check number policy '%s': must be 'optional' or 'required'", c.CheckNumberPolicy))
	}
	if _, err := core.ParseSortOrder(c.SummaryOrder); err != nil {
		errors = append(errors, fmt.Sprintf("invalid summary order '%s': must be 'asc' or 'desc'", c.SummaryOrder))
	}

	// Validate snapshot writer
	if c.WriterMaxRetries < 1 || c.WriterMaxRetries > 10 {
		errors = append(errors, fmt.Sprintf("invalid writer max retries %d: must be between 1 and 10", c.WriterMaxRetries))
	}
	if c.WriterRetryDelay < 0 || c.WriterRetryDelay > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid writer retry delay %v: must be between 0 and 1 minute", c.WriterRetryDelay))
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Validate Google Sheets configuration if mirroring is enabled
	if c.SheetsEnabled() {
		if c.GoogleJobsSheet == "" {
			errors = append(errors, "Google jobs sheet name is required when mirroring to sheets")
		}
		hasCreds := c.GoogleServiceAccountJSON != "" || c.GoogleServiceAccountFile != "" ||
			os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != ""
		if !hasCreds {
			errors = append(errors, "one of GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS must be provided for sheets mirroring")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	// Validate scheduler
	if _, err := cron.ParseStandard(c.WeeklyReportSchedule); err != nil {
		errors = append(errors, fmt.Sprintf("invalid weekly report schedule '%s': %v", c.WeeklyReportSchedule, err))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errors = append(errors, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}

	// Validate cache
	if c.CacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid summary cache size %d: must be at least 1", c.CacheSize))
	}
	if c.CacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid summary cache TTL %v: must be at least 1 second", c.CacheTTL))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
