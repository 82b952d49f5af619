package vector

import (
	"github.com/consto/backend/internal/application/ingestion"
	domainChat "github.com/consto/backend/internal/domain/chat"
	"github.com/consto/backend/internal/infrastructure/config"
	"github.com/google/wire"
)

// ProviderSet 向量存储 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideStore,
	wire.Bind(new(domainChat.Retriever), new(*Store)),
	wire.Bind(new(ingestion.DocumentIndex), new(*Store)),
)

// ProvideStore 根据配置连接 Qdrant
func ProvideStore(cfg *config.Config, embedder domainChat.Embedder) (*Store, error) {
	return NewStore(
		cfg.Qdrant.Host,
		cfg.Qdrant.Port,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
		embedder,
	)
}
