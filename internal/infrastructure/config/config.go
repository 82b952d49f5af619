package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 应用配置
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Ollama    OllamaConfig    `yaml:"ollama"`
	Qdrant    QdrantConfig    `yaml:"qdrant"`
	Documents DocumentsConfig `yaml:"documents"`
	Chat      ChatConfig      `yaml:"chat"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	HTTPPort string `yaml:"http_port"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Path SQLite 数据库路径，留空表示 ~/.consto/consto.db
	Path string `yaml:"path"`
}

// OpenAIConfig OpenAI 兼容 API 配置（托管后端）
// Endpoint 非空时选择托管后端，否则回退到本地 Ollama
type OpenAIConfig struct {
	Endpoint       string `yaml:"endpoint"`
	APIKey         string `yaml:"api_key"`
	ChatModel      string `yaml:"chat_model"`
	EmbeddingModel string `yaml:"embedding_model"`
}

// OllamaConfig 本地 Ollama 配置（本地后端）
type OllamaConfig struct {
	Endpoint       string `yaml:"endpoint"`
	ChatModel      string `yaml:"chat_model"`
	EmbeddingModel string `yaml:"embedding_model"`
}

// QdrantConfig Qdrant 向量库配置
type QdrantConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	APIKey     string `yaml:"api_key"`
	Collection string `yaml:"collection"`
}

// DocumentsConfig 文档存储与摄取配置
type DocumentsConfig struct {
	// StorageDir 原始文件落盘目录
	StorageDir string `yaml:"storage_dir"`
	// WatchDir 监听目录，放入文件后自动摄取；留空表示禁用监听
	WatchDir     string `yaml:"watch_dir"`
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap"`
}

// ChatConfig 对话管线配置
type ChatConfig struct {
	// SystemPrompt 覆盖默认系统提示词，必须包含 {context} 占位符
	SystemPrompt string `yaml:"system_prompt"`
	// TopK 每次检索返回的文档片段数
	TopK int `yaml:"top_k"`
}

// NewConfig 加载配置
// 顺序：.env -> config.yaml（存在时）-> 环境变量覆盖 -> 默认值
func NewConfig() (*Config, error) {
	// .env 不存在时忽略（与本地开发约定一致）
	_ = godotenv.Load()

	cfg := &Config{}

	path := getEnv("CONFIG_PATH", "config.yaml")
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	return cfg, nil
}

// ManagedBackend 是否使用托管后端（OpenAI 兼容 API + 远端 Qdrant）
// 未配置 Endpoint 时使用本地 Ollama 模型
func (c *Config) ManagedBackend() bool {
	return c.OpenAI.Endpoint != ""
}

// DatabasePath 解析数据库落盘路径
func (c *Config) DatabasePath() (string, error) {
	if c.Database.Path != "" {
		return c.Database.Path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".consto", "consto.db"), nil
}

// applyEnvOverrides 环境变量覆盖文件配置
func applyEnvOverrides(cfg *Config) {
	cfg.Server.HTTPPort = getEnv("HTTP_PORT", cfg.Server.HTTPPort)
	cfg.Database.Path = getEnv("DATABASE_PATH", cfg.Database.Path)

	cfg.OpenAI.Endpoint = getEnv("OPENAI_API_ENDPOINT", cfg.OpenAI.Endpoint)
	cfg.OpenAI.APIKey = getEnv("OPENAI_API_KEY", cfg.OpenAI.APIKey)
	cfg.OpenAI.ChatModel = getEnv("OPENAI_CHAT_MODEL", cfg.OpenAI.ChatModel)
	cfg.OpenAI.EmbeddingModel = getEnv("OPENAI_EMBEDDING_MODEL", cfg.OpenAI.EmbeddingModel)

	cfg.Ollama.Endpoint = getEnv("OLLAMA_ENDPOINT", cfg.Ollama.Endpoint)
	cfg.Ollama.ChatModel = getEnv("OLLAMA_CHAT_MODEL", cfg.Ollama.ChatModel)
	cfg.Ollama.EmbeddingModel = getEnv("OLLAMA_EMBEDDING_MODEL", cfg.Ollama.EmbeddingModel)

	cfg.Qdrant.Host = getEnv("QDRANT_HOST", cfg.Qdrant.Host)
	cfg.Qdrant.Port = getEnvInt("QDRANT_PORT", cfg.Qdrant.Port)
	cfg.Qdrant.APIKey = getEnv("QDRANT_API_KEY", cfg.Qdrant.APIKey)
	cfg.Qdrant.Collection = getEnv("QDRANT_COLLECTION", cfg.Qdrant.Collection)

	cfg.Documents.StorageDir = getEnv("DOCUMENTS_STORAGE_DIR", cfg.Documents.StorageDir)
	cfg.Documents.WatchDir = getEnv("DOCUMENTS_WATCH_DIR", cfg.Documents.WatchDir)
}

// applyDefaults 填充默认值
func applyDefaults(cfg *Config) {
	if cfg.Server.HTTPPort == "" {
		cfg.Server.HTTPPort = ":7071"
	}
	if cfg.OpenAI.ChatModel == "" {
		cfg.OpenAI.ChatModel = "gpt-4o-mini"
	}
	if cfg.OpenAI.EmbeddingModel == "" {
		cfg.OpenAI.EmbeddingModel = "text-embedding-3-small"
	}
	if cfg.Ollama.Endpoint == "" {
		cfg.Ollama.Endpoint = "http://localhost:11434"
	}
	if cfg.Ollama.ChatModel == "" {
		cfg.Ollama.ChatModel = "mistral:v0.2"
	}
	if cfg.Ollama.EmbeddingModel == "" {
		cfg.Ollama.EmbeddingModel = "all-minilm:l6-v2"
	}
	if cfg.Qdrant.Host == "" {
		cfg.Qdrant.Host = "localhost"
	}
	if cfg.Qdrant.Port == 0 {
		cfg.Qdrant.Port = 6334
	}
	if cfg.Qdrant.Collection == "" {
		cfg.Qdrant.Collection = "documents"
	}
	if cfg.Documents.StorageDir == "" {
		cfg.Documents.StorageDir = "data"
	}
	if cfg.Documents.ChunkSize == 0 {
		cfg.Documents.ChunkSize = 1500
	}
	if cfg.Documents.ChunkOverlap == 0 {
		cfg.Documents.ChunkOverlap = 100
	}
	if cfg.Chat.TopK == 0 {
		cfg.Chat.TopK = 3
	}
}

// getEnv 获取环境变量，空值时返回回退值
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getEnvInt 获取整型环境变量
func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return intValue
}
