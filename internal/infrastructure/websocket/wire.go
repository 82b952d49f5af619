package websocket

import (
	"github.com/consto/backend/internal/application/ingestion"
	"github.com/google/wire"
)

// ProviderSet WebSocket 基础设施层 ProviderSet
var ProviderSet = wire.NewSet(
	NewHub,
	wire.Bind(new(ingestion.Notifier), new(*Hub)),
)
