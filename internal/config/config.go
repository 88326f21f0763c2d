// Package config provides application configuration management with support for
// command-line flags, environment variables, .env files and an optional TOML file.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds the application configuration.
type Config struct {
	App           AppConfig
	Logger        LoggerConfig
	Server        ServerConfig
	Database      DatabaseConfig
	Auth          AuthConfig
	Feed          FeedConfig
	Notifications NotificationConfig
	RateLimit     RateLimitConfig
	Bus           BusConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string        // default: 8080
	ReadTimeout  time.Duration // default: 15s
	WriteTimeout time.Duration // default: 15s
	IdleTimeout  time.Duration // default: 60s
	CORSOrigins  []string      // default: *
}

// DatabaseConfig holds document store configuration.
type DatabaseConfig struct {
	// URI is a mongodb:// URI, or memory:// for the embedded engine.
	URI            string
	Name           string
	ConnectTimeout time.Duration
}

// IsMemory reports whether the embedded in-memory engine is requested.
func (d DatabaseConfig) IsMemory() bool {
	return strings.HasPrefix(d.URI, "memory://")
}

// AuthConfig holds token verification configuration.
type AuthConfig struct {
	// DataPath is where the PASETO key file lives.
	DataPath string
	// PASETO v4 symmetric key (32 bytes), set by auth.LoadOrGenerateKey.
	AccessTokenKey      []byte
	AccessTokenDuration time.Duration
}

// FeedConfig holds feed paging limits.
type FeedConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

// NotificationConfig holds notification retention settings.
type NotificationConfig struct {
	// Retention is how long read notifications are kept. Zero disables purging.
	Retention       time.Duration
	CleanupInterval time.Duration
}

// RateLimitConfig holds write endpoint limits per caller (user, or IP when anonymous).
type RateLimitConfig struct {
	WritesPerMinute int
	Burst           int
}

// BusConfig holds the optional Kafka event bus settings.
// An empty broker list disables publishing.
type BusConfig struct {
	Brokers []string
	Topic   string
}

// Enabled reports whether domain events should be published.
func (b BusConfig) Enabled() bool {
	return len(b.Brokers) > 0 && b.Topic != ""
}

// fileConfig mirrors the TOML layout. Every value is a string so the
// same parsing path handles file, env and flag values.
type fileConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	Server   struct {
		Port         string `toml:"port"`
		ReadTimeout  string `toml:"read_timeout"`
		WriteTimeout string `toml:"write_timeout"`
		IdleTimeout  string `toml:"idle_timeout"`
		CORSOrigins  string `toml:"cors_origins"`
	} `toml:"server"`
	Database struct {
		URI            string `toml:"uri"`
		Name           string `toml:"name"`
		ConnectTimeout string `toml:"connect_timeout"`
	} `toml:"database"`
	Auth struct {
		DataPath            string `toml:"data_path"`
		AccessTokenDuration string `toml:"access_token_duration"`
	} `toml:"auth"`
	Feed struct {
		DefaultPageSize string `toml:"default_page_size"`
		MaxPageSize     string `toml:"max_page_size"`
	} `toml:"feed"`
	Notifications struct {
		Retention       string `toml:"retention"`
		CleanupInterval string `toml:"cleanup_interval"`
	} `toml:"notifications"`
	RateLimit struct {
		WritesPerMinute string `toml:"writes_per_minute"`
		Burst           string `toml:"burst"`
	} `toml:"rate_limit"`
	Bus struct {
		Brokers string `toml:"brokers"`
		Topic   string `toml:"topic"`
	} `toml:"bus"`
}

// LoadConfig loads configuration from the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load builds configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. TOML config file.
// 5. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("lounge-server", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	envFile := fs.String("env-file", ".env", "Path to .env file")
	configFile := fs.String("config", "", "Path to TOML config file")

	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := fs.String("cors-origins", "", "Comma-separated allowed origins (default: *)")

	dbURI := fs.String("db-uri", "", "MongoDB URI or memory:// (default: mongodb://localhost:27017)")
	dbName := fs.String("db-name", "", "Database name (default: lounge)")
	dbConnectTimeout := fs.String("db-connect-timeout", "", "Database connect timeout (default: 10s)")

	dataPath := fs.String("data-path", "", "Directory for the auth key (default: ~/.lounge)")
	accessTokenDuration := fs.String("access-token-duration", "", "Access token lifetime for issued dev tokens (default: 24h)")

	defaultPageSize := fs.String("page-size", "", "Default feed page size (default: 10)")
	maxPageSize := fs.String("max-page-size", "", "Maximum feed page size (default: 100)")

	retention := fs.String("notification-retention", "", "Keep read notifications this long, 0 keeps forever (default: 720h)")
	cleanupInterval := fs.String("notification-cleanup-interval", "", "Retention job interval (default: 1h)")

	writesPerMinute := fs.String("writes-per-minute", "", "Write requests per minute per caller (default: 30)")
	writeBurst := fs.String("write-burst", "", "Write burst size per caller (default: 10)")

	busBrokers := fs.String("kafka-brokers", "", "Comma-separated Kafka brokers (default: disabled)")
	busTopic := fs.String("kafka-topic", "", "Kafka topic for domain events (default: lounge.events)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	var file fileConfig
	if path := getConfigValue(*configFile, "CONFIG_FILE", ""); path != "" {
		if _, err := toml.DecodeFile(path, &file); err != nil {
			return nil, fmt.Errorf("read config file %q: %w", path, err)
		}
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", or(file.Env, "development")),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", or(file.LogLevel, "info")),
		},
		Server: ServerConfig{
			Port:        getConfigValue(*serverPort, "SERVER_PORT", or(file.Server.Port, "8080")),
			CORSOrigins: splitList(getConfigValue(*corsOrigins, "CORS_ORIGINS", or(file.Server.CORSOrigins, "*"))),
		},
		Database: DatabaseConfig{
			URI:  getConfigValue(*dbURI, "MONGODB_URI", or(file.Database.URI, "mongodb://localhost:27017")),
			Name: getConfigValue(*dbName, "MONGODB_DB", or(file.Database.Name, "lounge")),
		},
		Auth: AuthConfig{
			DataPath: getConfigValue(*dataPath, "DATA_PATH", file.Auth.DataPath),
		},
		Feed: FeedConfig{
			DefaultPageSize: getIntConfigValue(*defaultPageSize, "FEED_PAGE_SIZE", intOr(file.Feed.DefaultPageSize, 10)),
			MaxPageSize:     getIntConfigValue(*maxPageSize, "FEED_MAX_PAGE_SIZE", intOr(file.Feed.MaxPageSize, 100)),
		},
		RateLimit: RateLimitConfig{
			WritesPerMinute: getIntConfigValue(*writesPerMinute, "RATE_LIMIT_WRITES_PER_MINUTE", intOr(file.RateLimit.WritesPerMinute, 30)),
			Burst:           getIntConfigValue(*writeBurst, "RATE_LIMIT_BURST", intOr(file.RateLimit.Burst, 10)),
		},
		Bus: BusConfig{
			Brokers: splitList(getConfigValue(*busBrokers, "KAFKA_BROKERS", file.Bus.Brokers)),
			Topic:   getConfigValue(*busTopic, "KAFKA_TOPIC", or(file.Bus.Topic, "lounge.events")),
		},
	}

	durations := []struct {
		dst                *time.Duration
		flag, env, def, nm string
	}{
		{&cfg.Server.ReadTimeout, *readTimeout, "SERVER_READ_TIMEOUT", or(file.Server.ReadTimeout, "15s"), "read timeout"},
		{&cfg.Server.WriteTimeout, *writeTimeout, "SERVER_WRITE_TIMEOUT", or(file.Server.WriteTimeout, "15s"), "write timeout"},
		{&cfg.Server.IdleTimeout, *idleTimeout, "SERVER_IDLE_TIMEOUT", or(file.Server.IdleTimeout, "60s"), "idle timeout"},
		{&cfg.Database.ConnectTimeout, *dbConnectTimeout, "MONGODB_CONNECT_TIMEOUT", or(file.Database.ConnectTimeout, "10s"), "database connect timeout"},
		{&cfg.Auth.AccessTokenDuration, *accessTokenDuration, "ACCESS_TOKEN_DURATION", or(file.Auth.AccessTokenDuration, "24h"), "access token duration"},
		{&cfg.Notifications.Retention, *retention, "NOTIFICATION_RETENTION", or(file.Notifications.Retention, "720h"), "notification retention"},
		{&cfg.Notifications.CleanupInterval, *cleanupInterval, "NOTIFICATION_CLEANUP_INTERVAL", or(file.Notifications.CleanupInterval, "1h"), "notification cleanup interval"},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flag, d.env, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.nm, raw, err)
		}
		*d.dst = parsed
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if !strings.HasPrefix(c.Database.URI, "mongodb://") &&
		!strings.HasPrefix(c.Database.URI, "mongodb+srv://") &&
		!c.Database.IsMemory() {
		return fmt.Errorf("invalid database uri %q (must start with mongodb://, mongodb+srv:// or memory://)", c.Database.URI)
	}
	if c.Database.Name == "" {
		return errors.New("database name cannot be empty")
	}

	if c.Feed.DefaultPageSize < 1 || c.Feed.MaxPageSize < 1 {
		return errors.New("feed page sizes must be positive")
	}
	if c.Feed.DefaultPageSize > c.Feed.MaxPageSize {
		return fmt.Errorf("default page size %d exceeds max page size %d", c.Feed.DefaultPageSize, c.Feed.MaxPageSize)
	}

	if c.Notifications.Retention < 0 {
		return errors.New("notification retention cannot be negative")
	}
	if c.Notifications.Retention > 0 && c.Notifications.CleanupInterval <= 0 {
		return errors.New("notification cleanup interval must be positive when retention is enabled")
	}

	if c.RateLimit.WritesPerMinute < 1 || c.RateLimit.Burst < 1 {
		return errors.New("rate limit values must be positive")
	}

	return nil
}

// expandDataPath expands ~ and makes the path absolute.
// Defaults to ~/.lounge.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	expanded, err := expandPath(c.Auth.DataPath, filepath.Join(homeDir, ".lounge"))
	if err != nil {
		return err
	}
	c.Auth.DataPath = expanded
	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, uses defaultPath.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

func or(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func intOr(value string, fallback int) int {
	var result int
	if value == "" {
		return fallback
	}
	if _, err := fmt.Sscanf(value, "%d", &result); err != nil {
		return fallback
	}
	return result
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Real env vars take precedence over the .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
