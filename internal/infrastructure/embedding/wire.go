package embedding

import (
	"context"

	domainChat "github.com/consto/backend/internal/domain/chat"
	"github.com/consto/backend/internal/infrastructure/config"
	"github.com/google/wire"
)

// ProviderSet Embedding 基础设施 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideEmbedder,
)

// DimensionProber 支持探测向量维度的 Embedder
// 两个客户端都实现了它，集合初始化时据此确定向量参数
type DimensionProber interface {
	domainChat.Embedder
	VectorDimension(ctx context.Context) (int, error)
}

// ProvideEmbedder 根据配置选择 Embedding 后端
// 配置了 OpenAI 端点时走托管后端，否则走本地 Ollama
func ProvideEmbedder(cfg *config.Config) domainChat.Embedder {
	if cfg.ManagedBackend() {
		return NewClient(cfg.OpenAI.Endpoint, cfg.OpenAI.APIKey, cfg.OpenAI.EmbeddingModel)
	}
	return NewOllamaClient(cfg.Ollama.Endpoint, cfg.Ollama.EmbeddingModel)
}
