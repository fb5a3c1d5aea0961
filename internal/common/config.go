package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Logging     LoggingConfig   `toml:"logging"`
	Storage     StorageConfig   `toml:"storage"`
	Vector      VectorConfig    `toml:"vector"`
	LLM         LLMConfig       `toml:"llm"`
	OpenAI      OpenAIConfig    `toml:"openai"`
	Gemini      GeminiConfig    `toml:"gemini"`
	Claude      ClaudeConfig    `toml:"claude"`
	Indexing    IndexingConfig  `toml:"indexing"`
	Answer      AnswerConfig    `toml:"answer"`
	Ingest      IngestConfig    `toml:"ingest"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "console", "file"
}

// StorageConfig selects the article store backend
type StorageConfig struct {
	Type     string         `toml:"type"` // "badger" or "postgres"
	Badger   BadgerConfig   `toml:"badger"`
	Postgres PostgresConfig `toml:"postgres"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete the database directory before opening
	InMemory       bool   `toml:"in_memory"`        // Tests only
}

type PostgresConfig struct {
	DSN      string `toml:"dsn"`
	MaxConns int32  `toml:"max_conns"`
}

// VectorConfig selects the vector index backend
type VectorConfig struct {
	Type        string       `toml:"type"`         // "badger" or "qdrant"
	Collection  string       `toml:"collection"`   // Collection holding one point per article URL
	ScrollLimit int          `toml:"scroll_limit"` // Caps date-ordered scans; 0 reads every point
	Qdrant      QdrantConfig `toml:"qdrant"`
}

type QdrantConfig struct {
	URL     string `toml:"url"`
	APIKey  string `toml:"api_key"`
	Timeout string `toml:"timeout"` // e.g. "30s"
}

// LLMConfig chooses which provider backs embeddings and which backs answers
type LLMConfig struct {
	EmbedProvider  string `toml:"embed_provider"` // "openai" or "gemini"
	ChatProvider   string `toml:"chat_provider"`  // "openai", "gemini" or "claude"
	MaxEmbedTokens int    `toml:"max_embed_tokens"`
	MaxRetries     int    `toml:"max_retries"` // Provider-level retries on rate limits, 0 disables
}

type OpenAIConfig struct {
	APIKey     string `toml:"api_key"`
	BaseURL    string `toml:"base_url"`
	Model      string `toml:"model"`
	EmbedModel string `toml:"embed_model"`
}

type GeminiConfig struct {
	APIKey     string `toml:"api_key"`
	Model      string `toml:"model"`
	EmbedModel string `toml:"embed_model"`
}

type ClaudeConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

type IndexingConfig struct {
	BatchSize int `toml:"batch_size"`
}

type AnswerConfig struct {
	DefaultTopK  int      `toml:"default_top_k"`
	MaxTopK      int      `toml:"max_top_k"`
	MaxTokens    int      `toml:"max_tokens"`
	Temperature  *float32 `toml:"temperature"`   // Unset keeps the default; 0 is honoured
	ContentChars int      `toml:"content_chars"` // Body prefix rendered per context block
	SnippetChars int      `toml:"snippet_chars"` // Body prefix returned per reference
}

type IngestConfig struct {
	SitemapURL     string `toml:"sitemap_url"`
	PathFilter     string `toml:"path_filter"`     // Only sitemap locations containing this are scraped
	RequestDelay   string `toml:"request_delay"`   // Politeness delay between page fetches
	RequestTimeout string `toml:"request_timeout"` // Per-request HTTP timeout
	UserAgent      string `toml:"user_agent"`
	MaxArticles    int    `toml:"max_articles"` // 0 = no limit
}

type SchedulerConfig struct {
	Enabled    bool   `toml:"enabled"`
	Schedule   string `toml:"schedule"`
	RunOnStart bool   `toml:"run_on_start"`
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8000,
			Host: "localhost",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"console"},
		},
		Storage: StorageConfig{
			Type: "badger",
			Badger: BadgerConfig{
				Path: "./data/blograg",
			},
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
		},
		Vector: VectorConfig{
			Type:        "badger",
			Collection:  "blog_articles",
			Qdrant: QdrantConfig{
				URL:     "http://localhost:6333",
				Timeout: "30s",
			},
		},
		LLM: LLMConfig{
			EmbedProvider:  "openai",
			ChatProvider:   "openai",
			MaxEmbedTokens: 8192,
			MaxRetries:     0,
		},
		OpenAI: OpenAIConfig{
			Model:      "gpt-3.5-turbo",
			EmbedModel: "text-embedding-3-small",
		},
		Gemini: GeminiConfig{
			Model:      "gemini-2.5-flash",
			EmbedModel: "text-embedding-004",
		},
		Claude: ClaudeConfig{
			Model: "claude-sonnet-4-20250514",
		},
		Indexing: IndexingConfig{
			BatchSize: 50,
		},
		Answer: AnswerConfig{
			DefaultTopK:  20,
			MaxTopK:      100,
			MaxTokens:    400,
			Temperature:  Float32(0.2),
			ContentChars: 1000,
			SnippetChars: 300,
		},
		Ingest: IngestConfig{
			SitemapURL:     "https://www.bitovi.com/sitemap.xml",
			PathFilter:     "/blog/",
			RequestDelay:   "200ms",
			RequestTimeout: "30s",
			UserAgent:      "blograg/1.0 (+https://github.com/ternarybob/blograg)",
		},
		Scheduler: SchedulerConfig{
			Enabled:  true,
			Schedule: "@every 24h",
		},
	}
}

// LoadFromFiles loads configuration with priority: defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files. CLI flags are applied afterwards with ApplyFlagOverrides.
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

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("BLOGRAG_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("BLOGRAG_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("BLOGRAG_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Logging configuration
	if level := os.Getenv("BLOGRAG_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("BLOGRAG_LOG_OUTPUT"); output != "" {
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

	// Storage configuration
	if storageType := os.Getenv("BLOGRAG_STORAGE_TYPE"); storageType != "" {
		config.Storage.Type = storageType
	}
	if badgerPath := os.Getenv("BLOGRAG_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
	if dsn := firstEnv("BLOGRAG_POSTGRES_DSN", "DATABASE_URL"); dsn != "" {
		config.Storage.Postgres.DSN = dsn
	}

	// Vector index configuration
	if vectorType := os.Getenv("BLOGRAG_VECTOR_TYPE"); vectorType != "" {
		config.Vector.Type = vectorType
	}
	if collection := os.Getenv("BLOGRAG_VECTOR_COLLECTION"); collection != "" {
		config.Vector.Collection = collection
	}
	if qdrantURL := firstEnv("BLOGRAG_QDRANT_URL", "QDRANT_URL"); qdrantURL != "" {
		config.Vector.Qdrant.URL = qdrantURL
	}
	if qdrantKey := firstEnv("BLOGRAG_QDRANT_API_KEY", "QDRANT_API_KEY"); qdrantKey != "" {
		config.Vector.Qdrant.APIKey = qdrantKey
	}

	// LLM providers
	if provider := os.Getenv("BLOGRAG_EMBED_PROVIDER"); provider != "" {
		config.LLM.EmbedProvider = provider
	}
	if provider := os.Getenv("BLOGRAG_CHAT_PROVIDER"); provider != "" {
		config.LLM.ChatProvider = provider
	}
	if key := firstEnv("BLOGRAG_OPENAI_API_KEY", "OPENAI_API_KEY"); key != "" {
		config.OpenAI.APIKey = key
	}
	if model := firstEnv("BLOGRAG_OPENAI_MODEL", "OPENAI_LLM_MODEL"); model != "" {
		config.OpenAI.Model = model
	}
	if model := firstEnv("BLOGRAG_OPENAI_EMBED_MODEL", "OPENAI_EMBED_MODEL"); model != "" {
		config.OpenAI.EmbedModel = model
	}
	if key := firstEnv("BLOGRAG_GEMINI_API_KEY", "GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if key := firstEnv("BLOGRAG_CLAUDE_API_KEY", "ANTHROPIC_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}

	// Ingest and scheduler
	if sitemap := os.Getenv("BLOGRAG_SITEMAP_URL"); sitemap != "" {
		config.Ingest.SitemapURL = sitemap
	}
	if enabled := os.Getenv("BLOGRAG_SCHEDULER_ENABLED"); enabled != "" {
		if b, err := strconv.ParseBool(enabled); err == nil {
			config.Scheduler.Enabled = b
		}
	}
	if schedule := os.Getenv("BLOGRAG_SCHEDULER_SCHEDULE"); schedule != "" {
		config.Scheduler.Schedule = schedule
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks values that would otherwise fail deep inside a service
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case "badger", "postgres":
	default:
		return fmt.Errorf("invalid storage type '%s': must be 'badger' or 'postgres'", c.Storage.Type)
	}

	if c.Storage.Type == "postgres" && c.Storage.Postgres.DSN == "" {
		return fmt.Errorf("postgres dsn is required when storage type is 'postgres' (set DATABASE_URL)")
	}

	switch c.Vector.Type {
	case "badger", "qdrant":
	default:
		return fmt.Errorf("invalid vector type '%s': must be 'badger' or 'qdrant'", c.Vector.Type)
	}

	if c.Vector.Collection == "" {
		return fmt.Errorf("vector collection name is required")
	}

	switch c.LLM.EmbedProvider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("invalid embed provider '%s': must be 'openai' or 'gemini'", c.LLM.EmbedProvider)
	}

	switch c.LLM.ChatProvider {
	case "openai", "gemini", "claude":
	default:
		return fmt.Errorf("invalid chat provider '%s': must be 'openai', 'gemini' or 'claude'", c.LLM.ChatProvider)
	}

	if c.Indexing.BatchSize <= 0 {
		return fmt.Errorf("indexing batch_size must be greater than 0, got %d", c.Indexing.BatchSize)
	}

	if c.LLM.MaxEmbedTokens <= 0 {
		return fmt.Errorf("max_embed_tokens must be greater than 0, got %d", c.LLM.MaxEmbedTokens)
	}

	if c.Answer.DefaultTopK <= 0 {
		return fmt.Errorf("answer default_top_k must be greater than 0, got %d", c.Answer.DefaultTopK)
	}

	if _, err := ParseDuration(c.Ingest.RequestDelay, 0); err != nil {
		return fmt.Errorf("invalid ingest request_delay: %w", err)
	}

	if c.Scheduler.Enabled {
		if err := ValidateSchedule(c.Scheduler.Schedule); err != nil {
			return err
		}
	}

	return nil
}

// ValidateSchedule validates a cron schedule expression, descriptors like "@every 24h" included
func ValidateSchedule(schedule string) error {
	if strings.TrimSpace(schedule) == "" {
		return fmt.Errorf("schedule is required")
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid schedule '%s': %w", schedule, err)
	}

	return nil
}

// ParseDuration parses a config duration string, returning fallback for an empty value
func ParseDuration(value string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	return time.ParseDuration(value)
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// Float32 returns a pointer to v, for optional config values
func Float32(v float32) *float32 {
	return &v
}
