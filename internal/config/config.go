package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Store backends.
const (
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
)

// Config holds application configuration.
// Every field can come from baseDir/config.json; most can also come from the environment.
type Config struct {
	// DiscordToken is the bot token used to open the gateway session.
	DiscordToken string `json:"discord_token,omitempty" env:"DISCORD_TOKEN"`

	// Dev installs slash commands on DevGuildID only, which takes effect immediately.
	Dev bool `json:"dev,omitempty" env:"DEV"`

	// DevGuildID is the guild used when Dev is set.
	DevGuildID string `json:"dev_guild_id,omitempty" env:"GUILD_ID"`

	// SetGlobalCommands installs slash commands globally on startup.
	SetGlobalCommands bool `json:"set_global_commands,omitempty" env:"SET_GLOBAL"`

	// StoreBackend selects the guild state store: "sqlite" (default) or "mongo".
	StoreBackend string `json:"store_backend,omitempty" env:"STORE_BACKEND"`

	// MongoURI is the connection string for the mongo backend.
	MongoURI string `json:"mongo_uri,omitempty" env:"MONGO_URI"`

	// MongoDatabase is the database name for the mongo backend.
	MongoDatabase string `json:"mongo_database,omitempty" env:"DB_NAME"`

	// MongoUsername and MongoPassword are optional credentials for the mongo backend.
	MongoUsername string `json:"mongo_username,omitempty" env:"MONGO_INITDB_ROOT_USERNAME"`
	MongoPassword string `json:"mongo_password,omitempty" env:"MONGO_INITDB_ROOT_PASSWORD"`

	// DBMaxOpenConns limits the maximum number of open SQLite connections.
	// If set to 1, all database access is serialized (reduces "database is locked" errors).
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty" env:"DB_MAX_OPEN_CONNS"`

	// DBMaxIdleConns limits the maximum number of idle SQLite connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty" env:"DB_MAX_IDLE_CONNS"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty" env:"LOG_LEVEL"`

	// LogFormat is text or json.
	LogFormat string `json:"log_format,omitempty" env:"LOG_FORMAT"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty" env:"DISABLED_TOOLS" envSeparator:","`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		StoreBackend:  BackendSQLite,
		MongoDatabase: "court-bot",
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.courtbot.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithEnv loads baseDir/config.json and overlays values set in the environment.
// Environment values take precedence for scalars; arrays are merged.
func LoadWithEnv(baseDir string) (*Config, error) {
	cfg, err := Load(baseDir)
	if err != nil {
		return nil, err
	}

	fromEnv := &Config{}
	if err := env.Parse(fromEnv); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	return Merge(cfg, fromEnv), nil
}

// Validate checks cross-field requirements.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendSQLite:
	case BackendMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("mongo_uri (MONGO_URI) is required for the mongo backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q (want %s or %s)", c.StoreBackend, BackendSQLite, BackendMongo)
	}
	if c.Dev && c.DevGuildID == "" {
		return fmt.Errorf("dev_guild_id (GUILD_ID) must be set when dev mode is enabled")
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// ParseLogLevel maps a config level name to a slog.Level.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	// Scalars: overlay wins if non-zero, else base
	result.DiscordToken = pickString(base.DiscordToken, overlay.DiscordToken)
	result.DevGuildID = pickString(base.DevGuildID, overlay.DevGuildID)
	result.StoreBackend = pickString(base.StoreBackend, overlay.StoreBackend)
	result.MongoURI = pickString(base.MongoURI, overlay.MongoURI)
	result.MongoDatabase = pickString(base.MongoDatabase, overlay.MongoDatabase)
	result.MongoUsername = pickString(base.MongoUsername, overlay.MongoUsername)
	result.MongoPassword = pickString(base.MongoPassword, overlay.MongoPassword)
	result.LogLevel = pickString(base.LogLevel, overlay.LogLevel)
	result.LogFormat = pickString(base.LogFormat, overlay.LogFormat)

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	// Booleans: overlay wins if true, else base
	result.Dev = base.Dev || overlay.Dev
	result.SetGlobalCommands = base.SetGlobalCommands || overlay.SetGlobalCommands

	// Arrays: merge and deduplicate
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

func pickString(base, overlay string) string {
	if overlay != "" {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
