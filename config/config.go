package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Backends accepted by DOC_STORE, BLOB_STORE and MAILER.
const (
	DocStoreSheets   = "sheets"
	DocStorePostgres = "postgres"
	DocStoreSQLite   = "sqlite"
	DocStoreMemory   = "memory"

	BlobStoreDrive  = "drive"
	BlobStoreGCS    = "gcs"
	BlobStoreS3     = "s3"
	BlobStoreMemory = "memory"

	MailerGmail = "gmail"
	MailerNoop  = "noop"
)

// DefaultAllowedMIMETypes is the upload allow-list used when ALLOWED_MIME_TYPES is unset.
var DefaultAllowedMIMETypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"image/heic",
	"image/heif",
	"video/mp4",
	"video/quicktime",
	"video/webm",
	"video/x-msvideo",
}

// Event describes the celebration the site is collecting details for.
type Event struct {
	Name  string
	Date  string
	Venue string
}

// Config is built once at startup and shared read-only by every component.
type Config struct {
	Host      string
	Port      int
	BodyLimit int
	LogLevel  slog.Level
	LogFormat string

	DocStore       string
	SheetID        string
	SheetName      string
	AlbumSheetName string
	DatabaseURL    string
	SQLitePath     string

	BlobStore       string
	AlbumFolderName string
	GCSBucket       string
	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string

	Mailer          string
	CredentialsFile string
	AdminEmail      string

	Event            Event
	AllowedMIMETypes []string
	MaxUploadBytes   int64
	AlbumCacheTTL    time.Duration
	ShutdownTimeout  time.Duration
}

// Load reads an optional .env file and then builds the Config from the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds and validates the Config from environment variables only.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	var err error

	cfg.Host = getEnvDefault("APP_HOST", "0.0.0.0")
	if cfg.Port, err = getEnvInt("APP_PORT", 3000); err != nil {
		return nil, fmt.Errorf("APP_PORT: %w", err)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("APP_PORT: value %d out of range", cfg.Port)
	}
	if cfg.BodyLimit, err = getEnvInt("BODY_LIMIT_BYTES", 75*1024*1024); err != nil {
		return nil, fmt.Errorf("BODY_LIMIT_BYTES: %w", err)
	}

	if cfg.LogLevel, err = parseLogLevel(getEnvDefault("LOG_LEVEL", "info")); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	cfg.LogFormat = getEnvDefault("LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("LOG_FORMAT: invalid value %q, allowed: json, text", cfg.LogFormat)
	}

	cfg.CredentialsFile = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")

	cfg.DocStore = getEnvDefault("DOC_STORE", DocStoreSheets)
	cfg.SheetName = getEnvDefault("SHEET_NAME", "Travel Details")
	cfg.AlbumSheetName = getEnvDefault("ALBUM_SHEET_NAME", "Album Uploads")
	switch cfg.DocStore {
	case DocStoreSheets:
		if cfg.SheetID, err = getEnvRequired("SHEET_ID"); err != nil {
			return nil, err
		}
	case DocStorePostgres:
		if cfg.DatabaseURL, err = getEnvRequired("DATABASE_URL"); err != nil {
			return nil, err
		}
	case DocStoreSQLite:
		cfg.SQLitePath = getEnvDefault("SQLITE_PATH", "event-travel.db")
	case DocStoreMemory:
	default:
		return nil, fmt.Errorf("DOC_STORE: invalid value %q, allowed: sheets, postgres, sqlite, memory", cfg.DocStore)
	}

	cfg.BlobStore = getEnvDefault("BLOB_STORE", BlobStoreDrive)
	cfg.AlbumFolderName = getEnvDefault("ALBUM_FOLDER_NAME", "Event Photo Album")
	switch cfg.BlobStore {
	case BlobStoreDrive, BlobStoreMemory:
	case BlobStoreGCS:
		if cfg.GCSBucket, err = getEnvRequired("GCS_BUCKET_NAME"); err != nil {
			return nil, err
		}
	case BlobStoreS3:
		if cfg.S3Bucket, err = getEnvRequired("S3_BUCKET"); err != nil {
			return nil, err
		}
		cfg.S3Region = getEnvDefault("S3_REGION", "us-east-1")
		cfg.S3Endpoint = os.Getenv("S3_ENDPOINT")
		cfg.S3AccessKey = os.Getenv("S3_ACCESS_KEY")
		cfg.S3SecretKey = os.Getenv("S3_SECRET_KEY")
	default:
		return nil, fmt.Errorf("BLOB_STORE: invalid value %q, allowed: drive, gcs, s3, memory", cfg.BlobStore)
	}

	cfg.Mailer = getEnvDefault("MAILER", MailerGmail)
	if cfg.Mailer != MailerGmail && cfg.Mailer != MailerNoop {
		return nil, fmt.Errorf("MAILER: invalid value %q, allowed: gmail, noop", cfg.Mailer)
	}
	cfg.AdminEmail = os.Getenv("ADMIN_EMAIL")
	if cfg.Mailer == MailerGmail && cfg.AdminEmail == "" {
		return nil, fmt.Errorf("ADMIN_EMAIL: required environment variable is not set")
	}

	if cfg.Event.Name, err = getEnvRequired("EVENT_NAME"); err != nil {
		return nil, err
	}
	cfg.Event.Date = os.Getenv("EVENT_DATE")
	cfg.Event.Venue = os.Getenv("EVENT_VENUE")

	cfg.AllowedMIMETypes = getEnvList("ALLOWED_MIME_TYPES", DefaultAllowedMIMETypes)
	if cfg.MaxUploadBytes, err = getEnvInt64("MAX_UPLOAD_BYTES", 50*1024*1024); err != nil {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES: %w", err)
	}
	if cfg.MaxUploadBytes < 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES: value must not be negative")
	}

	if cfg.AlbumCacheTTL, err = getEnvDuration("ALBUM_CACHE_TTL", 10*time.Minute); err != nil {
		return nil, fmt.Errorf("ALBUM_CACHE_TTL: %w", err)
	}
	if cfg.ShutdownTimeout, err = getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

func getEnvRequired(key string) (string, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return "", fmt.Errorf("%s: required environment variable is not set", key)
	}
	return val, nil
}

func getEnvDefault(key, defaultVal string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid integer: %q", val)
	}
	return n, nil
}

func getEnvInt64(key string, defaultVal int64) (int64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer: %q", val)
	}
	return n, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid duration: %q (use Go format: 30s, 10m, 1h)", val)
	}
	return d, nil
}

// getEnvList splits a comma separated variable, dropping blanks.
func getEnvList(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if strings.TrimSpace(val) == "" {
		out := make([]string, len(defaultVal))
		copy(out, defaultVal)
		return out
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid level %q, allowed: debug, info, warn, error", level)
	}
}
