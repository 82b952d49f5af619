package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, ":7071", cfg.Server.HTTPPort)
	assert.Equal(t, "localhost", cfg.Qdrant.Host)
	assert.Equal(t, 6334, cfg.Qdrant.Port)
	assert.Equal(t, "documents", cfg.Qdrant.Collection)
	assert.Equal(t, 1500, cfg.Documents.ChunkSize)
	assert.Equal(t, 100, cfg.Documents.ChunkOverlap)
	assert.Equal(t, 3, cfg.Chat.TopK)
}

func TestNewConfig_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  http_port: ":8080"
qdrant:
  host: qdrant.internal
  collection: kb
documents:
  chunk_size: 800
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.HTTPPort)
	assert.Equal(t, "qdrant.internal", cfg.Qdrant.Host)
	assert.Equal(t, "kb", cfg.Qdrant.Collection)
	assert.Equal(t, 800, cfg.Documents.ChunkSize)
	// 未设置的字段仍取默认值
	assert.Equal(t, 100, cfg.Documents.ChunkOverlap)
}

func TestNewConfig_EnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("OPENAI_API_ENDPOINT", "https://api.example.com/v1")
	t.Setenv("QDRANT_PORT", "7334")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/v1", cfg.OpenAI.Endpoint)
	assert.Equal(t, 7334, cfg.Qdrant.Port)
}

func TestConfig_ManagedBackend(t *testing.T) {
	t.Run("配置了端点则使用托管后端", func(t *testing.T) {
		cfg := &Config{OpenAI: OpenAIConfig{Endpoint: "https://api.example.com/v1"}}
		assert.True(t, cfg.ManagedBackend())
	})

	t.Run("未配置端点则回退到本地后端", func(t *testing.T) {
		cfg := &Config{}
		assert.False(t, cfg.ManagedBackend())
	})
}
