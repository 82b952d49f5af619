package infrastructure

import (
	"github.com/consto/backend/internal/infrastructure/config"
	"github.com/consto/backend/internal/infrastructure/embedding"
	"github.com/consto/backend/internal/infrastructure/extractor"
	"github.com/consto/backend/internal/infrastructure/llm"
	"github.com/consto/backend/internal/infrastructure/storage"
	"github.com/consto/backend/internal/infrastructure/vector"
	"github.com/consto/backend/internal/infrastructure/watcher"
	"github.com/consto/backend/internal/infrastructure/websocket"
	"github.com/google/wire"
)

// ProviderSet Infrastructure 层总 ProviderSet
var ProviderSet = wire.NewSet(
	config.ProviderSet,
	storage.ProviderSet,
	embedding.ProviderSet,
	llm.ProviderSet,
	vector.ProviderSet,
	extractor.ProviderSet,
	watcher.ProviderSet,
	websocket.ProviderSet,
)
