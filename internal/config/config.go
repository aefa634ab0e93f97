package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const configFileEnvKey = "COOKINGHUB_CONFIG"

// Storage backends.
const (
	BackendMongo  = "mongo"
	BackendMySQL  = "mysql"
	BackendMemory = "memory"
)

type Config struct {
	Server ServerConfig `toml:"server"`

	// MongoDB holds users, likes, comments, chats and the GridFS bucket
	MongoDB MongoDBConfig `toml:"mongodb"`

	// Database is the MySQL side used by the "mysql" backend
	Database DatabaseConfig `toml:"database"`

	Storage StorageConfig `toml:"storage"`

	Logging LoggingConfig `toml:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host         string `toml:"host"`
	Port         string `toml:"port"`
	ReadTimeout  int    `toml:"read_timeout"`  // seconds
	WriteTimeout int    `toml:"write_timeout"` // seconds
	Environment  string `toml:"environment"`   // development, staging, production
}

type MongoDBConfig struct {
	URI          string `toml:"uri"` // full connection string, wins over the parts below
	Host         string `toml:"host"`
	Port         string `toml:"port"`
	Username     string `toml:"username"`
	Password     string `toml:"password"`
	Database     string `toml:"database"`
	GridFSBucket string `toml:"gridfs_bucket"`
}

// DatabaseConfig contains MySQL connection configuration
type DatabaseConfig struct {
	Host         string `toml:"host"`
	Port         string `toml:"port"`
	Username     string `toml:"username"`
	Password     string `toml:"password"`
	DatabaseName string `toml:"database_name"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

type StorageConfig struct {
	Backend         string `toml:"backend"`           // mongo, mysql, memory
	AccountCacheTTL int    `toml:"account_cache_ttl"` // seconds, 0 disables the cache
	Timeout         int    `toml:"timeout"`           // seconds per storage operation
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `toml:"level"`       // debug, info, warn, error
	Format     string `toml:"format"`      // json, console
	OutputPath string `toml:"output_path"` // stdout, stderr, or file path
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         "8080",
			ReadTimeout:  15,
			WriteTimeout: 60,
			Environment:  "development",
		},
		MongoDB: MongoDBConfig{
			Host:         "localhost",
			Port:         "27017",
			Database:     "cooking_hub",
			GridFSBucket: "media_files",
		},
		Database: DatabaseConfig{
			Host:         "localhost",
			Port:         "3306",
			Username:     "cookinghub",
			DatabaseName: "cooking_hub",
			MaxOpenConns: 25,
			MaxIdleConns: 5,
		},
		Storage: StorageConfig{
			Backend:         BackendMongo,
			AccountCacheTTL: 0,
			Timeout:         30,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig reads .env (if present), the optional TOML file named by
// COOKINGHUB_CONFIG and then the environment, later sources winning.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := Default()
	if path := strings.TrimSpace(os.Getenv(configFileEnvKey)); path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return nil, err
		}
	}
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile decodes a TOML file over cfg.
func LoadFile(path string, cfg *Config) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Host = getEnvOrDefault("SERVER_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvOrDefault("MEDIA_SERVER_PORT", cfg.Server.Port)
	cfg.Server.ReadTimeout = getEnvIntOrDefault("SERVER_READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = getEnvIntOrDefault("SERVER_WRITE_TIMEOUT", cfg.Server.WriteTimeout)
	cfg.Server.Environment = getEnvOrDefault("APP_ENV", cfg.Server.Environment)

	cfg.MongoDB.URI = getEnvOrDefault("MONGO_URI", cfg.MongoDB.URI)
	cfg.MongoDB.Host = getEnvOrDefault("MONGO_HOST", cfg.MongoDB.Host)
	cfg.MongoDB.Port = getEnvOrDefault("MONGO_PORT", cfg.MongoDB.Port)
	cfg.MongoDB.Username = getEnvOrDefault("MONGO_USERNAME", cfg.MongoDB.Username)
	cfg.MongoDB.Password = getEnvOrDefault("MONGO_PASSWORD", cfg.MongoDB.Password)
	cfg.MongoDB.Database = getEnvOrDefault("MONGO_DATABASE", cfg.MongoDB.Database)
	cfg.MongoDB.GridFSBucket = getEnvOrDefault("MONGO_GRIDFS_BUCKET", cfg.MongoDB.GridFSBucket)

	cfg.Database.Host = getEnvOrDefault("MYSQL_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnvOrDefault("MYSQL_PORT", cfg.Database.Port)
	cfg.Database.Username = getEnvOrDefault("MYSQL_USERNAME", cfg.Database.Username)
	cfg.Database.Password = getEnvOrDefault("MYSQL_PASSWORD", cfg.Database.Password)
	cfg.Database.DatabaseName = getEnvOrDefault("MYSQL_DATABASE", cfg.Database.DatabaseName)
	cfg.Database.MaxOpenConns = getEnvIntOrDefault("MYSQL_MAX_OPEN_CONNS", cfg.Database.MaxOpenConns)
	cfg.Database.MaxIdleConns = getEnvIntOrDefault("MYSQL_MAX_IDLE_CONNS", cfg.Database.MaxIdleConns)

	cfg.Storage.Backend = getEnvOrDefault("STORAGE_BACKEND", cfg.Storage.Backend)
	cfg.Storage.AccountCacheTTL = getEnvIntOrDefault("ACCOUNT_CACHE_TTL", cfg.Storage.AccountCacheTTL)
	cfg.Storage.Timeout = getEnvIntOrDefault("STORAGE_TIMEOUT", cfg.Storage.Timeout)

	cfg.Logging.Level = getEnvOrDefault("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnvOrDefault("LOG_FORMAT", cfg.Logging.Format)
	cfg.Logging.OutputPath = getEnvOrDefault("LOG_OUTPUT", cfg.Logging.OutputPath)
}

func (cfg *Config) Validate() error {
	switch cfg.Storage.Backend {
	case BackendMongo, BackendMySQL, BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	// The memory stores serialize every write behind one lock per store.
	if cfg.Storage.Backend == BackendMemory && cfg.Server.Environment == "production" {
		return fmt.Errorf("memory storage backend is for development and tests only")
	}
	if cfg.Storage.AccountCacheTTL < 0 {
		return fmt.Errorf("account cache ttl must not be negative")
	}
	return nil
}

// GetMongoURI builds the MongoDB connection string.
func (cfg *Config) GetMongoURI() string {
	m := cfg.MongoDB
	if m.URI != "" {
		return m.URI
	}
	if m.Username == "" {
		return fmt.Sprintf("mongodb://%s:%s/%s", m.Host, m.Port, m.Database)
	}
	return fmt.Sprintf("mongodb://%s:%s@%s:%s/%s?authSource=admin",
		url.QueryEscape(m.Username),
		url.QueryEscape(m.Password),
		m.Host,
		m.Port,
		m.Database,
	)
}

func (cfg *Config) DSN() string {
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == "" {
		cfg.Database.Port = "3306"
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DatabaseName,
	)
}

// StorageTimeout is the per-operation deadline applied by callers that
// have no deadline of their own.
func (cfg *Config) StorageTimeout() time.Duration {
	return time.Duration(cfg.Storage.Timeout) * time.Second
}

func (cfg *Config) AccountCacheTTL() time.Duration {
	return time.Duration(cfg.Storage.AccountCacheTTL) * time.Second
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Ignoring %s=%q: not an integer", key, value)
		return defaultValue
	}
	return parsed
}
