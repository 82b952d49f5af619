package llm

import (
	domainChat "github.com/consto/backend/internal/domain/chat"
	"github.com/consto/backend/internal/infrastructure/config"
	"github.com/google/wire"
)

// ProviderSet LLM 基础设施 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideChatModel,
)

// ProvideChatModel 根据配置选择聊天模型后端
// 配置了 OpenAI 端点时走托管后端，否则走本地 Ollama
func ProvideChatModel(cfg *config.Config) domainChat.ChatModel {
	if cfg.ManagedBackend() {
		return NewClient(cfg.OpenAI.Endpoint, cfg.OpenAI.APIKey, cfg.OpenAI.ChatModel)
	}
	return NewOllamaClient(cfg.Ollama.Endpoint, cfg.Ollama.ChatModel)
}
