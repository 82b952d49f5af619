package application

import (
	"github.com/consto/backend/internal/application/chat"
	"github.com/consto/backend/internal/application/ingestion"
	"github.com/google/wire"
)

// ProviderSet Application 层总 ProviderSet
var ProviderSet = wire.NewSet(
	chat.ProviderSet,
	ingestion.ProviderSet,
)
