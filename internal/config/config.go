// Package config loads service settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/iskkyy/LNFRP/internal/db"
)

// Environment keys.
const (
	Port = "PORT"
	Host = "HOST"

	DBDriver   = "DB_DRIVER"
	DBHost     = "DB_HOST"
	DBPort     = "DB_PORT"
	DBUser     = "DB_USER"
	DBPassword = "DB_PASSWORD"
	DBName     = "DB_NAME"
	DBSSL      = "DB_SSL"
	DBPath     = "DB_PATH"
	DBPoolSize = "DB_POOL_SIZE"

	CORSOrigins = "CORS_ORIGINS"

	AuthEnabled = "AUTH_ENABLED"
	JWTSecret   = "JWT_SECRET"
	JWTExpiry   = "JWT_EXPIRY"

	LogLevel  = "LOG_LEVEL"
	LogFormat = "LOG_FORMAT"
	LogFile   = "LOG_FILE"

	PhotoBackend = "PHOTO_BACKEND"
	S3Bucket     = "S3_BUCKET"
	S3Region     = "S3_REGION"
	S3Endpoint   = "S3_ENDPOINT"
	S3AccessKey  = "S3_ACCESS_KEY"
	S3SecretKey  = "S3_SECRET_KEY"
)

// Photo backends.
const (
	PhotoBackendDB = "db"
	PhotoBackendS3 = "s3"
)

// Config holds all service configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Auth     AuthConfig
	Logging  LoggingConfig
	Photos   PhotoConfig
}

// ServerConfig is the HTTP listener.
type ServerConfig struct {
	Host string
	Port string
}

// Addr is the listen address.
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// DatabaseConfig selects the driver and its connection settings.
// Path is used by sqlite only; the host fields by postgres only.
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSL      bool
	Path     string
	PoolSize int
}

// DBConfig returns the pool settings for db.Open.
func (c DatabaseConfig) DBConfig() db.Config {
	cfg := db.Config{Dialect: db.Dialect(c.Driver), PoolSize: c.PoolSize}
	switch cfg.Dialect {
	case db.DialectSQLite:
		cfg.DSN = db.SQLiteDSN(c.Path)
	default:
		cfg.DSN = db.PostgresDSN(c.Host, c.Port, c.User, c.Password, c.Name, c.SSL)
	}
	return cfg
}

// CORSConfig lists the origins allowed to call the API from a browser.
type CORSConfig struct {
	Origins []string
}

// AuthConfig controls the auth guard and JWT issuing.
type AuthConfig struct {
	Enabled     bool
	JWTSecret   string
	TokenExpiry time.Duration
}

// LoggingConfig sets the zerolog level, output format and optional log file.
type LoggingConfig struct {
	Level  string
	Format string
	File   string
}

// PhotoConfig selects where item photos are kept (db or s3).
type PhotoConfig struct {
	Backend   string
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// Load reads configuration from the environment, overlaid on an optional
// .env file in the working directory. Environment variables win.
func Load() (*Config, error) {
	return load(viper.New(), ".")
}

func load(v *viper.Viper, dir string) (*Config, error) {
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(dir)
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading .env: %w", err)
		}
	}

	return &Config{
		Server: ServerConfig{
			Host: v.GetString(Host),
			Port: v.GetString(Port),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(v.GetString(DBDriver)),
			Host:     v.GetString(DBHost),
			Port:     v.GetInt(DBPort),
			User:     v.GetString(DBUser),
			Password: v.GetString(DBPassword),
			Name:     v.GetString(DBName),
			SSL:      v.GetBool(DBSSL),
			Path:     v.GetString(DBPath),
			PoolSize: v.GetInt(DBPoolSize),
		},
		CORS: CORSConfig{
			Origins: splitList(v.GetString(CORSOrigins)),
		},
		Auth: AuthConfig{
			Enabled:     v.GetBool(AuthEnabled),
			JWTSecret:   v.GetString(JWTSecret),
			TokenExpiry: v.GetDuration(JWTExpiry),
		},
		Logging: LoggingConfig{
			Level:  v.GetString(LogLevel),
			Format: v.GetString(LogFormat),
			File:   v.GetString(LogFile),
		},
		Photos: PhotoConfig{
			Backend:   strings.ToLower(v.GetString(PhotoBackend)),
			Bucket:    v.GetString(S3Bucket),
			Region:    v.GetString(S3Region),
			Endpoint:  v.GetString(S3Endpoint),
			AccessKey: v.GetString(S3AccessKey),
			SecretKey: v.GetString(S3SecretKey),
		},
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(Port, "3000")
	v.SetDefault(Host, "")

	v.SetDefault(DBDriver, string(db.DialectPostgres))
	v.SetDefault(DBHost, "localhost")
	v.SetDefault(DBPort, 5432)
	v.SetDefault(DBUser, "postgres")
	v.SetDefault(DBPassword, "")
	v.SetDefault(DBName, "lostfound")
	v.SetDefault(DBSSL, false)
	v.SetDefault(DBPath, "lostfound.sqlite3")
	v.SetDefault(DBPoolSize, db.DefaultPoolSize)

	v.SetDefault(CORSOrigins, "http://localhost:3000,https://lostandfoundappwebapp.vercel.app")

	v.SetDefault(AuthEnabled, false)
	v.SetDefault(JWTSecret, "")
	v.SetDefault(JWTExpiry, "24h")

	v.SetDefault(LogLevel, "info")
	v.SetDefault(LogFormat, "json")
	v.SetDefault(LogFile, "")

	v.SetDefault(PhotoBackend, PhotoBackendDB)
	v.SetDefault(S3Bucket, "")
	v.SetDefault(S3Region, "us-east-1")
	v.SetDefault(S3Endpoint, "")
	v.SetDefault(S3AccessKey, "")
	v.SetDefault(S3SecretKey, "")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server port is required")
	}

	switch db.Dialect(c.Database.Driver) {
	case db.DialectPostgres:
		if c.Database.Name == "" {
			return errors.New("database name is required")
		}
	case db.DialectSQLite:
		if c.Database.Path == "" {
			return errors.New("database path is required")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Database.PoolSize <= 0 {
		return fmt.Errorf("database pool size must be positive, got %d", c.Database.PoolSize)
	}

	if c.Auth.TokenExpiry <= 0 {
		return errors.New("token expiry must be positive")
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}

	switch c.Photos.Backend {
	case PhotoBackendDB:
	case PhotoBackendS3:
		if c.Photos.Bucket == "" {
			return errors.New("S3 bucket is required for the s3 photo backend")
		}
	default:
		return fmt.Errorf("unknown photo backend %q", c.Photos.Backend)
	}

	return nil
}
