package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Storage backends
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// DefaultQuoteURL is the public quote endpoint for the two tracked assets
const DefaultQuoteURL = "https://api.coingecko.com/api/v3/simple/price?ids=bitcoin,solana&vs_currencies=brl"

// Config holds application configuration
type Config struct {
	// Server settings
	ListenAddr string
	Debug      bool

	// Storage
	Backend       string
	DataDirectory string
	Password      string // unlocks an encrypted file store

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MongoURI      string
	MongoDatabase string

	// Price quotes
	QuoteURL       string
	PollInterval   time.Duration
	RequestTimeout time.Duration
}

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() *Config {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}

	return &Config{
		ListenAddr:     ":8080",
		Backend:        BackendFile,
		DataDirectory:  filepath.Join(wd, "data"),
		RedisAddr:      "localhost:6379",
		MongoURI:       "mongodb://localhost:27017",
		MongoDatabase:  "fintrack",
		QuoteURL:       DefaultQuoteURL,
		PollInterval:   60 * time.Second,
		RequestTimeout: 10 * time.Second,
	}
}

// Load reads an optional .env file, then overrides the defaults from FINTRACK_* variables
func Load(logger zerolog.Logger) *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn().Err(err).Msg("could not read .env file")
	}

	cfg := DefaultConfig()

	if addr := os.Getenv("FINTRACK_LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
	if debug := os.Getenv("FINTRACK_DEBUG"); debug == "true" || debug == "1" {
		cfg.Debug = true
	}
	if backend := os.Getenv("FINTRACK_BACKEND"); backend != "" {
		cfg.Backend = backend
	}
	if dataDir := os.Getenv("FINTRACK_DATA_DIR"); dataDir != "" {
		cfg.DataDirectory = dataDir
	}
	cfg.Password = os.Getenv("FINTRACK_PASSWORD")

	if addr := os.Getenv("FINTRACK_REDIS_ADDR"); addr != "" {
		cfg.RedisAddr = addr
	}
	cfg.RedisPassword = os.Getenv("FINTRACK_REDIS_PASSWORD")
	if db := os.Getenv("FINTRACK_REDIS_DB"); db != "" {
		n, err := strconv.Atoi(db)
		if err != nil {
			logger.Warn().Str("value", db).Msg("invalid FINTRACK_REDIS_DB, using 0")
		} else {
			cfg.RedisDB = n
		}
	}

	if uri := os.Getenv("FINTRACK_MONGO_URI"); uri != "" {
		cfg.MongoURI = uri
	}
	if db := os.Getenv("FINTRACK_MONGO_DB"); db != "" {
		cfg.MongoDatabase = db
	}

	if url := os.Getenv("FINTRACK_QUOTE_URL"); url != "" {
		cfg.QuoteURL = url
	}
	cfg.PollInterval = durationEnv(logger, "FINTRACK_POLL_INTERVAL", cfg.PollInterval)
	cfg.RequestTimeout = durationEnv(logger, "FINTRACK_REQUEST_TIMEOUT", cfg.RequestTimeout)

	if cfg.Backend == BackendFile {
		cfg.ensureDirectories(logger)
	}

	return cfg
}

// durationEnv parses a Go duration from the environment, keeping def when unset or invalid
func durationEnv(logger zerolog.Logger, name string, def time.Duration) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		logger.Warn().Str("name", name).Str("value", v).Msg("invalid duration, using default")
		return def
	}
	return d
}

// ensureDirectories creates required directories if they don't exist
func (c *Config) ensureDirectories(logger zerolog.Logger) {
	if err := os.MkdirAll(c.DataDirectory, 0755); err != nil {
		logger.Warn().Err(err).Str("dir", c.DataDirectory).Msg("could not create directory")
	}
}
