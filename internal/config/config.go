package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"inventory-media-service/internal/adapters/secondary/filesystem"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Database DatabaseConfig
	Storage  StorageConfig
	Media    MediaConfig
	Worker   WorkerConfig
	Metrics  MetricsConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level      string
	Format     string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SQLitePath      string
}

// DSN is the libpq connection string for the postgres driver.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type StorageConfig struct {
	UploadDir   string
	DocumentDir string
	QRDir       string
}

// Layout converts the configured roots into the value handed to the store.
func (s StorageConfig) Layout() filesystem.Layout {
	return filesystem.Layout{UploadDir: s.UploadDir, DocumentDir: s.DocumentDir, QRDir: s.QRDir}
}

type MediaConfig struct {
	MaxImageBytes    int64
	MaxDocumentBytes int64
	MaxDimension     int
	ThumbnailSize    int
	JPEGQuality      int
	ThumbnailQuality int
	AutoOrient       bool
	MaxPixels        int64
}

type WorkerConfig struct {
	Count     int
	QueueSize int
}

type MetricsConfig struct {
	Enabled   bool
	Path      string
	Namespace string
}

// Load reads the environment, after applying an optional .env file from the
// working directory. Variables already set in the environment win over .env.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "10s")

	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")
	v.SetDefault("LOGGER_FILE", "")
	v.SetDefault("LOGGER_MAX_SIZE_MB", 100)
	v.SetDefault("LOGGER_MAX_BACKUPS", 5)
	v.SetDefault("LOGGER_MAX_AGE_DAYS", 30)
	v.SetDefault("LOGGER_COMPRESS", true)

	v.SetDefault("DATABASE_DRIVER", DriverSQLite)
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", 5432)
	v.SetDefault("DATABASE_USER", "inventory")
	v.SetDefault("DATABASE_PASSWORD", "")
	v.SetDefault("DATABASE_NAME", "inventory")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 10)
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 2)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("DATABASE_SQLITE_PATH", "data/inventory.db")

	v.SetDefault("STORAGE_UPLOAD_DIR", "data/uploads")
	v.SetDefault("STORAGE_DOCUMENT_DIR", "data/documents")
	v.SetDefault("STORAGE_QR_DIR", "data/qr_codes")

	v.SetDefault("MEDIA_MAX_IMAGE_BYTES", 10*1024*1024)
	v.SetDefault("MEDIA_MAX_DOCUMENT_BYTES", 20*1024*1024)
	v.SetDefault("MEDIA_MAX_DIMENSION", 1920)
	v.SetDefault("MEDIA_THUMBNAIL_SIZE", 300)
	v.SetDefault("MEDIA_JPEG_QUALITY", 85)
	v.SetDefault("MEDIA_THUMBNAIL_QUALITY", 80)
	v.SetDefault("MEDIA_AUTO_ORIENT", true)
	v.SetDefault("MEDIA_MAX_PIXELS", 178956970)

	v.SetDefault("WORKER_COUNT", 4)
	v.SetDefault("WORKER_QUEUE_SIZE", 64)

	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("METRICS_PATH", "/metrics")
	v.SetDefault("METRICS_NAMESPACE", "inventory_media")

	// Env
	v.AutomaticEnv()

	shutdownTimeout, err := time.ParseDuration(v.GetString("SERVER_SHUTDOWN_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("parse SERVER_SHUTDOWN_TIMEOUT: %w", err)
	}
	connMaxLifetime, err := time.ParseDuration(v.GetString("DATABASE_CONN_MAX_LIFETIME"))
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_CONN_MAX_LIFETIME: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:            v.GetString("SERVER_HOST"),
			Port:            v.GetInt("SERVER_PORT"),
			ShutdownTimeout: shutdownTimeout,
		},
		Logger: LoggerConfig{
			Level:      v.GetString("LOGGER_LEVEL"),
			Format:     v.GetString("LOGGER_FORMAT"),
			File:       v.GetString("LOGGER_FILE"),
			MaxSizeMB:  v.GetInt("LOGGER_MAX_SIZE_MB"),
			MaxBackups: v.GetInt("LOGGER_MAX_BACKUPS"),
			MaxAgeDays: v.GetInt("LOGGER_MAX_AGE_DAYS"),
			Compress:   v.GetBool("LOGGER_COMPRESS"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("DATABASE_DRIVER"),
			Host:            v.GetString("DATABASE_HOST"),
			Port:            v.GetInt("DATABASE_PORT"),
			User:            v.GetString("DATABASE_USER"),
			Password:        v.GetString("DATABASE_PASSWORD"),
			Name:            v.GetString("DATABASE_NAME"),
			SSLMode:         v.GetString("DATABASE_SSLMODE"),
			MaxOpenConns:    v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DATABASE_MAX_IDLE_CONNS"),
			ConnMaxLifetime: connMaxLifetime,
			SQLitePath:      v.GetString("DATABASE_SQLITE_PATH"),
		},
		Storage: StorageConfig{
			UploadDir:   v.GetString("STORAGE_UPLOAD_DIR"),
			DocumentDir: v.GetString("STORAGE_DOCUMENT_DIR"),
			QRDir:       v.GetString("STORAGE_QR_DIR"),
		},
		Media: MediaConfig{
			MaxImageBytes:    v.GetInt64("MEDIA_MAX_IMAGE_BYTES"),
			MaxDocumentBytes: v.GetInt64("MEDIA_MAX_DOCUMENT_BYTES"),
			MaxDimension:     v.GetInt("MEDIA_MAX_DIMENSION"),
			ThumbnailSize:    v.GetInt("MEDIA_THUMBNAIL_SIZE"),
			JPEGQuality:      v.GetInt("MEDIA_JPEG_QUALITY"),
			ThumbnailQuality: v.GetInt("MEDIA_THUMBNAIL_QUALITY"),
			AutoOrient:       v.GetBool("MEDIA_AUTO_ORIENT"),
			MaxPixels:        v.GetInt64("MEDIA_MAX_PIXELS"),
		},
		Worker: WorkerConfig{
			Count:     v.GetInt("WORKER_COUNT"),
			QueueSize: v.GetInt("WORKER_QUEUE_SIZE"),
		},
		Metrics: MetricsConfig{
			Enabled:   v.GetBool("METRICS_ENABLED"),
			Path:      v.GetString("METRICS_PATH"),
			Namespace: v.GetString("METRICS_NAMESPACE"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT out of range: %d", c.Server.Port))
	}

	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.Name == "" {
			errs = append(errs, errors.New("postgres driver requires DATABASE_HOST and DATABASE_NAME"))
		}
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			errs = append(errs, errors.New("sqlite driver requires DATABASE_SQLITE_PATH"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DATABASE_DRIVER %q", c.Database.Driver))
	}

	for name, dir := range map[string]string{
		"STORAGE_UPLOAD_DIR":   c.Storage.UploadDir,
		"STORAGE_DOCUMENT_DIR": c.Storage.DocumentDir,
		"STORAGE_QR_DIR":       c.Storage.QRDir,
	} {
		if dir == "" {
			errs = append(errs, fmt.Errorf("%s must not be empty", name))
		}
	}

	if c.Media.MaxImageBytes <= 0 {
		errs = append(errs, errors.New("MEDIA_MAX_IMAGE_BYTES must be positive"))
	}
	if c.Media.MaxDocumentBytes <= 0 {
		errs = append(errs, errors.New("MEDIA_MAX_DOCUMENT_BYTES must be positive"))
	}
	if c.Media.MaxDimension <= 0 || c.Media.ThumbnailSize <= 0 {
		errs = append(errs, errors.New("MEDIA_MAX_DIMENSION and MEDIA_THUMBNAIL_SIZE must be positive"))
	}
	if c.Media.MaxPixels <= 0 {
		errs = append(errs, errors.New("MEDIA_MAX_PIXELS must be positive"))
	}
	if c.Media.JPEGQuality < 1 || c.Media.JPEGQuality > 100 {
		errs = append(errs, fmt.Errorf("MEDIA_JPEG_QUALITY must be within 1..100, got %d", c.Media.JPEGQuality))
	}
	if c.Media.ThumbnailQuality < 1 || c.Media.ThumbnailQuality > 100 {
		errs = append(errs, fmt.Errorf("MEDIA_THUMBNAIL_QUALITY must be within 1..100, got %d", c.Media.ThumbnailQuality))
	}

	if c.Worker.Count <= 0 {
		errs = append(errs, errors.New("WORKER_COUNT must be positive"))
	}
	if c.Worker.QueueSize < 0 {
		errs = append(errs, errors.New("WORKER_QUEUE_SIZE must not be negative"))
	}

	return errors.Join(errs...)
}
