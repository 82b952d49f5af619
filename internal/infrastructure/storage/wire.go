package storage

import (
	domainChat "github.com/consto/backend/internal/domain/chat"
	"github.com/consto/backend/internal/infrastructure/config"
	"github.com/google/wire"
)

// ProviderSet Storage 基础设施层 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideDB,            // 提供数据库连接
	NewHistoryRepository, // 会话历史仓储
	ProvideDocumentStore, // 原始文档存储
)

// ProvideDocumentStore 根据配置创建文档存储
func ProvideDocumentStore(cfg *config.Config) (domainChat.DocumentStore, error) {
	return NewDocumentStore(cfg.Documents.StorageDir)
}
