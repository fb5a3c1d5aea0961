package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blograg.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	assert.Equal(t, 8000, config.Server.Port)
	assert.Equal(t, "badger", config.Storage.Type)
	assert.Equal(t, "badger", config.Vector.Type)
	assert.Equal(t, 50, config.Indexing.BatchSize)
	assert.Equal(t, 8192, config.LLM.MaxEmbedTokens)
	assert.Equal(t, 400, config.Answer.MaxTokens)
	require.NotNil(t, config.Answer.Temperature)
	assert.InDelta(t, 0.2, *config.Answer.Temperature, 1e-6)
	assert.Equal(t, 300, config.Answer.SnippetChars)
	assert.Zero(t, config.Vector.ScrollLimit)
	assert.Equal(t, "/blog/", config.Ingest.PathFilter)
	assert.NoError(t, config.Validate())
}

func TestLoadFromFiles_LaterFileWins(t *testing.T) {
	first := writeConfig(t, `
[server]
port = 9000
host = "0.0.0.0"

[vector]
collection = "first"
`)
	second := writeConfig(t, `
[vector]
collection = "second"

[answer]
default_top_k = 5
`)

	config, err := LoadFromFiles(first, second)
	require.NoError(t, err)

	assert.Equal(t, 9000, config.Server.Port)
	assert.Equal(t, "0.0.0.0", config.Server.Host)
	assert.Equal(t, "second", config.Vector.Collection)
	assert.Equal(t, 5, config.Answer.DefaultTopK)
	assert.Equal(t, 400, config.Answer.MaxTokens)
}

func TestLoadFromFiles_ZeroTemperature(t *testing.T) {
	path := writeConfig(t, `
[answer]
temperature = 0.0
`)

	config, err := LoadFromFiles(path)
	require.NoError(t, err)

	require.NotNil(t, config.Answer.Temperature)
	assert.Zero(t, *config.Answer.Temperature)
}

func TestLoadFromFiles_MissingFile(t *testing.T) {
	_, err := LoadFromFiles(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoadFromFiles_InvalidTOML(t *testing.T) {
	path := writeConfig(t, "[server\nport = ")
	_, err := LoadFromFiles(path)
	assert.Error(t, err)
}

func TestLoadFromFiles_EnvOverrides(t *testing.T) {
	t.Setenv("BLOGRAG_SERVER_PORT", "7070")
	t.Setenv("BLOGRAG_VECTOR_TYPE", "qdrant")
	t.Setenv("QDRANT_URL", "http://qdrant:6333")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("BLOGRAG_LOG_OUTPUT", "console, file")
	t.Setenv("BLOGRAG_SCHEDULER_ENABLED", "false")

	config, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, 7070, config.Server.Port)
	assert.Equal(t, "qdrant", config.Vector.Type)
	assert.Equal(t, "http://qdrant:6333", config.Vector.Qdrant.URL)
	assert.Equal(t, "sk-test", config.OpenAI.APIKey)
	assert.Equal(t, []string{"console", "file"}, config.Logging.Output)
	assert.False(t, config.Scheduler.Enabled)
}

func TestLoadFromFiles_PrefixedEnvWins(t *testing.T) {
	t.Setenv("BLOGRAG_OPENAI_API_KEY", "sk-prefixed")
	t.Setenv("OPENAI_API_KEY", "sk-plain")

	config, err := LoadFromFiles()
	require.NoError(t, err)
	assert.Equal(t, "sk-prefixed", config.OpenAI.APIKey)
}

func TestApplyFlagOverrides(t *testing.T) {
	config := NewDefaultConfig()

	ApplyFlagOverrides(config, 0, "")
	assert.Equal(t, 8000, config.Server.Port)
	assert.Equal(t, "localhost", config.Server.Host)

	ApplyFlagOverrides(config, 9999, "127.0.0.1")
	assert.Equal(t, 9999, config.Server.Port)
	assert.Equal(t, "127.0.0.1", config.Server.Host)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown storage type", func(c *Config) { c.Storage.Type = "sqlite" }},
		{"postgres without dsn", func(c *Config) { c.Storage.Type = "postgres" }},
		{"unknown vector type", func(c *Config) { c.Vector.Type = "faiss" }},
		{"empty collection", func(c *Config) { c.Vector.Collection = "" }},
		{"unknown embed provider", func(c *Config) { c.LLM.EmbedProvider = "claude" }},
		{"unknown chat provider", func(c *Config) { c.LLM.ChatProvider = "llama" }},
		{"zero batch size", func(c *Config) { c.Indexing.BatchSize = 0 }},
		{"zero embed tokens", func(c *Config) { c.LLM.MaxEmbedTokens = 0 }},
		{"zero default top k", func(c *Config) { c.Answer.DefaultTopK = 0 }},
		{"bad request delay", func(c *Config) { c.Ingest.RequestDelay = "soon" }},
		{"bad schedule", func(c *Config) { c.Scheduler.Schedule = "every day" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := NewDefaultConfig()
			tt.mutate(config)
			assert.Error(t, config.Validate())
		})
	}
}

func TestValidate_PostgresWithDSN(t *testing.T) {
	config := NewDefaultConfig()
	config.Storage.Type = "postgres"
	config.Storage.Postgres.DSN = "postgres://localhost/blog"
	assert.NoError(t, config.Validate())
}

func TestValidate_DisabledSchedulerSkipsSchedule(t *testing.T) {
	config := NewDefaultConfig()
	config.Scheduler.Enabled = false
	config.Scheduler.Schedule = ""
	assert.NoError(t, config.Validate())
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("@every 24h"))
	assert.NoError(t, ValidateSchedule("0 3 * * *"))
	assert.NoError(t, ValidateSchedule("@daily"))
	assert.Error(t, ValidateSchedule(""))
	assert.Error(t, ValidateSchedule("0 3 * *"))
}

func TestParseDuration(t *testing.T) {
	d, err := ParseDuration("", 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, d)

	d, err = ParseDuration("250ms", time.Second)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, d)

	_, err = ParseDuration("fast", time.Second)
	assert.Error(t, err)
}

func TestIsProduction(t *testing.T) {
	config := NewDefaultConfig()
	assert.False(t, config.IsProduction())
	config.Environment = "Production"
	assert.True(t, config.IsProduction())
}
