package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the ytsummary server.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Store      StoreConfig      `yaml:"store"`
	Transcript TranscriptConfig `yaml:"transcript"`
	AI         AIConfig         `yaml:"ai"`
}

type ServerConfig struct {
	Port     int    `yaml:"port"`
	Env      string `yaml:"env"`
	LogLevel string `yaml:"logLevel"`
}

type StoreConfig struct {
	Driver     string         `yaml:"driver"`
	Database   DatabaseConfig `yaml:"database"`
	SQLitePath string         `yaml:"sqlitePath"`
	Mongo      MongoConfig    `yaml:"mongo"`
}

type DatabaseConfig struct {
	URL             string        `yaml:"url"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

type MongoConfig struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

type TranscriptConfig struct {
	BaseURL  string        `yaml:"baseUrl"`
	Language string        `yaml:"language"`
	Timeout  time.Duration `yaml:"timeout"`
}

type AIConfig struct {
	Provider           string        `yaml:"provider"`
	InferenceTimeout   time.Duration `yaml:"inferenceTimeout"`
	MaxTranscriptChars int           `yaml:"maxTranscriptChars"`
	OpenAI             OpenAIConfig  `yaml:"openai"`
	Ollama             OllamaConfig  `yaml:"ollama"`
	VLLM               VLLMConfig    `yaml:"vllm"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"apiKey"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"baseUrl"`
}

type OllamaConfig struct {
	BaseURL string `yaml:"baseUrl"`
	Model   string `yaml:"model"`
}

type VLLMConfig struct {
	BaseURL string `yaml:"baseUrl"`
	Model   string `yaml:"model"`
}

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

var validDrivers = map[string]bool{
	DriverPostgres: true,
	DriverSQLite:   true,
	DriverMongo:    true,
	DriverMemory:   true,
}

// minTimeout is the smallest accepted transcript or inference timeout.
const minTimeout = time.Second

var validProviders = map[string]bool{
	"openai": true,
	"ollama": true,
	"vllm":   true,
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Load builds a Config from defaults, then the YAML file named by
// YTSUMMARY_CONFIG_FILE (if set), then environment variables, and validates it.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("YTSUMMARY_CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:     8080,
			Env:      "development",
			LogLevel: "info",
		},
		Store: StoreConfig{
			Driver: DriverSQLite,
			Database: DatabaseConfig{
				MaxOpenConns:    25,
				MaxIdleConns:    5,
				ConnMaxLifetime: 5 * time.Minute,
			},
			SQLitePath: "ytsummary.db",
			Mongo: MongoConfig{
				Database:   "ytsummary",
				Collection: "saved_analyses",
			},
		},
		Transcript: TranscriptConfig{
			BaseURL:  "https://www.youtube.com",
			Language: "en",
			Timeout:  30 * time.Second,
		},
		AI: AIConfig{
			InferenceTimeout:   60 * time.Second,
			MaxTranscriptChars: 48000,
			OpenAI: OpenAIConfig{
				Model: "gpt-4o-mini",
			},
			Ollama: OllamaConfig{
				BaseURL: "http://localhost:11434",
				Model:   "llama3",
			},
			VLLM: VLLMConfig{
				BaseURL: "http://localhost:8000",
			},
		},
	}
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = envInt("YTSUMMARY_PORT", cfg.Server.Port)
	cfg.Server.Env = envString("YTSUMMARY_ENV", cfg.Server.Env)
	cfg.Server.LogLevel = strings.ToLower(envString("YTSUMMARY_LOG_LEVEL", cfg.Server.LogLevel))

	cfg.Store.Driver = strings.ToLower(envString("STORE_DRIVER", cfg.Store.Driver))
	// The test environment keeps nothing on disk unless a driver is chosen.
	if cfg.Server.Env == "test" && os.Getenv("STORE_DRIVER") == "" {
		cfg.Store.Driver = DriverMemory
	}
	cfg.Store.Database.URL = envString("DATABASE_URL", cfg.Store.Database.URL)
	cfg.Store.Database.MaxOpenConns = envInt("DATABASE_MAX_OPEN_CONNS", cfg.Store.Database.MaxOpenConns)
	cfg.Store.Database.MaxIdleConns = envInt("DATABASE_MAX_IDLE_CONNS", cfg.Store.Database.MaxIdleConns)
	cfg.Store.Database.ConnMaxLifetime = envDuration("DATABASE_CONN_MAX_LIFETIME", cfg.Store.Database.ConnMaxLifetime)
	cfg.Store.SQLitePath = envString("SQLITE_PATH", cfg.Store.SQLitePath)
	cfg.Store.Mongo.URI = envString("MONGO_URI", cfg.Store.Mongo.URI)
	cfg.Store.Mongo.Database = envString("MONGO_DATABASE", cfg.Store.Mongo.Database)
	cfg.Store.Mongo.Collection = envString("MONGO_COLLECTION", cfg.Store.Mongo.Collection)

	cfg.Transcript.BaseURL = envString("YOUTUBE_BASE_URL", cfg.Transcript.BaseURL)
	cfg.Transcript.Language = envString("TRANSCRIPT_LANGUAGE", cfg.Transcript.Language)
	cfg.Transcript.Timeout = envDuration("TRANSCRIPT_TIMEOUT", cfg.Transcript.Timeout)

	cfg.AI.Provider = strings.ToLower(envString("AI_PROVIDER", cfg.AI.Provider))
	cfg.AI.InferenceTimeout = envDurationSecs("AI_INFERENCE_TIMEOUT_SECS", cfg.AI.InferenceTimeout)
	cfg.AI.MaxTranscriptChars = envInt("AI_MAX_TRANSCRIPT_CHARS", cfg.AI.MaxTranscriptChars)
	cfg.AI.OpenAI.APIKey = envString("OPENAI_API_KEY", cfg.AI.OpenAI.APIKey)
	cfg.AI.OpenAI.Model = envString("OPENAI_MODEL", cfg.AI.OpenAI.Model)
	cfg.AI.OpenAI.BaseURL = envString("OPENAI_BASE_URL", cfg.AI.OpenAI.BaseURL)
	cfg.AI.Ollama.BaseURL = envString("OLLAMA_BASE_URL", cfg.AI.Ollama.BaseURL)
	cfg.AI.Ollama.Model = envString("OLLAMA_MODEL", cfg.AI.Ollama.Model)
	cfg.AI.VLLM.BaseURL = envString("VLLM_BASE_URL", cfg.AI.VLLM.BaseURL)
	cfg.AI.VLLM.Model = envString("VLLM_MODEL", cfg.AI.VLLM.Model)
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("YTSUMMARY_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if _, ok := logLevels[c.Server.LogLevel]; !ok {
		return fmt.Errorf("YTSUMMARY_LOG_LEVEL must be one of debug, info, warn, error; got %q", c.Server.LogLevel)
	}

	if !validDrivers[c.Store.Driver] {
		return fmt.Errorf("STORE_DRIVER must be one of postgres, sqlite, mongo, memory; got %q", c.Store.Driver)
	}
	switch c.Store.Driver {
	case DriverPostgres:
		if c.Store.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER is postgres")
		}
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when STORE_DRIVER is sqlite")
		}
	case DriverMongo:
		if c.Store.Mongo.URI == "" {
			return fmt.Errorf("MONGO_URI is required when STORE_DRIVER is mongo")
		}
	}

	if !strings.HasPrefix(c.Transcript.BaseURL, "http://") && !strings.HasPrefix(c.Transcript.BaseURL, "https://") {
		return fmt.Errorf("YOUTUBE_BASE_URL must start with http:// or https://, got %q", c.Transcript.BaseURL)
	}
	if c.Transcript.Timeout < minTimeout {
		return fmt.Errorf("TRANSCRIPT_TIMEOUT must be at least %s, got %s", minTimeout, c.Transcript.Timeout)
	}

	if c.AI.Provider == "" {
		return fmt.Errorf("AI_PROVIDER is required")
	}
	if !validProviders[c.AI.Provider] {
		return fmt.Errorf("AI_PROVIDER must be one of openai, ollama, vllm; got %q", c.AI.Provider)
	}
	if c.AI.Provider == "openai" && c.AI.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when AI_PROVIDER is openai")
	}
	if c.AI.Provider == "vllm" && c.AI.VLLM.Model == "" {
		return fmt.Errorf("VLLM_MODEL is required when AI_PROVIDER is vllm")
	}
	if c.AI.InferenceTimeout < minTimeout {
		return fmt.Errorf("AI_INFERENCE_TIMEOUT_SECS must be at least 1, got %s", c.AI.InferenceTimeout)
	}
	if c.AI.MaxTranscriptChars <= 0 {
		return fmt.Errorf("AI_MAX_TRANSCRIPT_CHARS must be positive, got %d", c.AI.MaxTranscriptChars)
	}

	return nil
}

// SlogLevel returns the configured log level. Unknown values fall back to info.
func (s ServerConfig) SlogLevel() slog.Level {
	if lvl, ok := logLevels[s.LogLevel]; ok {
		return lvl
	}
	return slog.LevelInfo
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
