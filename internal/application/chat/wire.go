package chat

import (
	"fmt"

	domainChat "github.com/consto/backend/internal/domain/chat"
	"github.com/consto/backend/internal/infrastructure/config"
	"github.com/google/wire"
)

// ProviderSet 聊天应用层 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideChatService,
)

// ProvideChatService 根据配置装配聊天服务
func ProvideChatService(
	cfg *config.Config,
	retriever domainChat.Retriever,
	model domainChat.ChatModel,
	history domainChat.HistoryRepository,
) (*ChatService, error) {
	prompts, err := NewPromptBuilderWithTemplate(cfg.Chat.SystemPrompt)
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt templates: %w", err)
	}
	return NewChatService(retriever, model, prompts, history, cfg.Chat.TopK), nil
}
