package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultFile is the optional JSON config read when no explicit path is given.
const DefaultFile = "config/config.json"

// Config is the whole runtime configuration. Every value can come from
// config/config.json, a .env file or the process environment; environment
// variables win. Nested keys map to env vars by joining with "_":
//
//	port             -> PORT
//	db.driver        -> DB_DRIVER (mysql|postgres|sqlite)
//	db.host          -> DB_HOST
//	db.port          -> DB_PORT
//	db.user          -> DB_USER
//	db.password      -> DB_PASSWORD
//	db.database      -> DB_DATABASE
//	db.pool_size     -> DB_POOL_SIZE
//	db.max_attempts  -> DB_MAX_ATTEMPTS
//	db.retry_delay   -> DB_RETRY_DELAY (e.g. 2s)
//	db.advisory_lock -> DB_ADVISORY_LOCK
//	schema_path      -> SCHEMA_PATH
//	templates_dir    -> TEMPLATES_DIR
//	public_dir       -> PUBLIC_DIR
//	log              -> LOG ("1" to enable)
//	log_level        -> LOG_LEVEL (debug|info|warn|error|off)
type Config struct {
	Port         string `mapstructure:"port"`
	DB           DB     `mapstructure:"db"`
	SchemaPath   string `mapstructure:"schema_path"`
	TemplatesDir string `mapstructure:"templates_dir"`
	PublicDir    string `mapstructure:"public_dir"`
	Log          string `mapstructure:"log"`
	LogLevel     string `mapstructure:"log_level"`
}

// DB holds the database server settings used by the bootstrapper.
type DB struct {
	Driver       string        `mapstructure:"driver"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	User         string        `mapstructure:"user"`
	Password     string        `mapstructure:"password"`
	Database     string        `mapstructure:"database"`
	PoolSize     int           `mapstructure:"pool_size"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
	RetryDelay   time.Duration `mapstructure:"retry_delay"`
	AdvisoryLock bool          `mapstructure:"advisory_lock"`
}

var defaults = map[string]any{
	"port":             "3000",
	"db.driver":        "mysql",
	"db.host":          "db",
	"db.port":          0,
	"db.user":          "root",
	"db.password":      "",
	"db.database":      "portfolio_db",
	"db.pool_size":     10,
	"db.max_attempts":  30,
	"db.retry_delay":   2 * time.Second,
	"db.advisory_lock": false,
	"schema_path":      "",
	"templates_dir":    "templates",
	"public_dir":       "public",
	"log":              "1",
	"log_level":        "",
}

// Load builds the configuration. path may be empty, in which case
// config/config.json is used when present. A missing .env is fine; a
// malformed one is an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	c.DB.Driver = strings.ToLower(strings.TrimSpace(c.DB.Driver))
	switch c.DB.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want mysql, postgres or sqlite)", c.DB.Driver)
	}
	if c.DB.Database == "" {
		return errors.New("DB_DATABASE must not be empty")
	}
	if c.DB.MaxAttempts < 1 {
		return fmt.Errorf("DB_MAX_ATTEMPTS must be at least 1, got %d", c.DB.MaxAttempts)
	}
	if c.DB.PoolSize < 1 {
		return fmt.Errorf("DB_POOL_SIZE must be at least 1, got %d", c.DB.PoolSize)
	}
	if c.DB.RetryDelay < 0 {
		return fmt.Errorf("DB_RETRY_DELAY must not be negative, got %s", c.DB.RetryDelay)
	}
	if c.SchemaPath == "" {
		c.SchemaPath = "db/schema/" + c.DB.Driver + ".sql"
	}
	return nil
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
