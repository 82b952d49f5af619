package ingestion

import (
	domainChat "github.com/consto/backend/internal/domain/chat"
	"github.com/consto/backend/internal/infrastructure/config"
	"github.com/google/wire"
)

// ProviderSet 入库应用层 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideService,
)

// ProvideService 根据配置装配入库服务
func ProvideService(
	cfg *config.Config,
	extractor TextExtractor,
	index DocumentIndex,
	store domainChat.DocumentStore,
	notifier Notifier,
) *Service {
	return NewService(extractor, index, store, notifier,
		cfg.Documents.ChunkSize, cfg.Documents.ChunkOverlap)
}
