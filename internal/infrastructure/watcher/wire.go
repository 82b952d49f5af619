package watcher

import (
	"github.com/consto/backend/internal/application/ingestion"
	"github.com/consto/backend/internal/infrastructure/config"
	"github.com/google/wire"
)

// ProviderSet Watcher 基础设施层 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideFileWatcher,
)

// ProvideFileWatcher 根据配置创建目录监听器
func ProvideFileWatcher(cfg *config.Config, ingestionService *ingestion.Service) (*FileWatcher, error) {
	return NewFileWatcher(DefaultWatchConfig(cfg.Documents.WatchDir), ingestionService)
}
