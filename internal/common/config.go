package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production"
	Server      ServerConfig     `toml:"server"`
	Storage     StorageConfig    `toml:"storage"`
	Logging     LoggingConfig    `toml:"logging"`
	Gemini      GeminiConfig     `toml:"gemini"`
	Exa         ExaConfig        `toml:"exa"`
	FileSearch  FileSearchConfig `toml:"file_search"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Format string   `toml:"format"` // "json" or "text"
	Output []string `toml:"output"` // "stdout", "file"
}

// GeminiConfig contains Google Gemini API configuration for chat streaming
type GeminiConfig struct {
	APIKey              string  `toml:"api_key"`              // Google Gemini API key
	Model               string  `toml:"model"`                // Default chat model (default: "gemini-flash-latest")
	Timeout             string  `toml:"timeout"`              // Per-turn timeout as duration string (default: "5m")
	Temperature         float32 `toml:"temperature"`          // Sampling temperature for standard mode (default: 0.7)
	GroundedTemperature float32 `toml:"grounded_temperature"` // Sampling temperature for grounded modes (default: 0.3)
}

// ExaConfig contains Exa search API configuration
type ExaConfig struct {
	APIKey         string `toml:"api_key"`         // Exa API key
	BaseURL        string `toml:"base_url"`        // API base URL (default: "https://api.exa.ai")
	RequestTimeout string `toml:"request_timeout"` // HTTP request timeout (default: "30s")
	RateLimit      int    `toml:"rate_limit"`      // Requests per second (default: 5)
}

// FileSearchConfig contains configuration for file-search store indexing and querying
type FileSearchConfig struct {
	Model             string  `toml:"model"`                // Model for file-grounded queries (default: "gemini-2.5-flash")
	MaxTokensPerChunk int     `toml:"max_tokens_per_chunk"` // Chunk size in provider token units (default: 300)
	MaxOverlapTokens  int     `toml:"max_overlap_tokens"`   // Inter-chunk overlap in token units (default: 30)
	PollInterval      string  `toml:"poll_interval"`        // Indexing operation poll interval (default: "2s")
	IndexTimeout      string  `toml:"index_timeout"`        // Upper bound on total indexing wait (default: "10m")
	Temperature       float32 `toml:"temperature"`          // Sampling temperature for file-grounded queries (default: 0.2)
}

// NewDefaultConfig creates a configuration with default values.
// Only user-facing settings are exposed in warm.toml; API keys normally
// arrive via environment variables.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8000,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout", "file"},
		},
		Gemini: GeminiConfig{
			APIKey:              "", // User must provide API key (no fallback)
			Model:               "gemini-flash-latest",
			Timeout:             "5m",
			Temperature:         0.7,
			GroundedTemperature: 0.3,
		},
		Exa: ExaConfig{
			APIKey:         "",
			BaseURL:        "https://api.exa.ai",
			RequestTimeout: "30s",
			RateLimit:      5,
		},
		FileSearch: FileSearchConfig{
			Model:             "gemini-2.5-flash",
			MaxTokensPerChunk: 300,
			MaxOverlapTokens:  30,
			PollInterval:      "2s",
			IndexTimeout:      "10m",
			Temperature:       0.2,
		},
	}
}

// LoadFromFile loads configuration from a single optional file
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration with priority: defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files; environment variables override all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("WARM_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("WARM_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("WARM_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if badgerPath := os.Getenv("WARM_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	if level := os.Getenv("WARM_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("WARM_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if output := os.Getenv("WARM_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	if key := os.Getenv("WARM_GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if model := os.Getenv("WARM_GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}
	if timeout := os.Getenv("WARM_GEMINI_TIMEOUT"); timeout != "" {
		config.Gemini.Timeout = timeout
	}

	if key := os.Getenv("WARM_EXA_API_KEY"); key != "" {
		config.Exa.APIKey = key
	}
	if baseURL := os.Getenv("WARM_EXA_BASE_URL"); baseURL != "" {
		config.Exa.BaseURL = baseURL
	}

	if timeout := os.Getenv("WARM_FILE_SEARCH_INDEX_TIMEOUT"); timeout != "" {
		config.FileSearch.IndexTimeout = timeout
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// ParseDuration parses a duration string from config, falling back to the
// given default when the value is empty or malformed.
func ParseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
