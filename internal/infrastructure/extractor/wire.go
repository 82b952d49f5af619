package extractor

import (
	"github.com/consto/backend/internal/application/ingestion"
	"github.com/google/wire"
)

// ProviderSet 文本提取 ProviderSet
var ProviderSet = wire.NewSet(
	NewExtractor,
	wire.Bind(new(ingestion.TextExtractor), new(*Extractor)),
)
