package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/consto/backend/internal/application/ingestion"
	"github.com/consto/backend/internal/infrastructure/log"
	"github.com/fsnotify/fsnotify"
)

// WatchConfig FileWatcher 配置
type WatchConfig struct {
	// WatchDir 监听目录，放入支持的文档后自动入库；空值禁用监听
	WatchDir string
	// DebounceDelay 防抖延迟，同一文件的连续写入合并为一次入库
	DebounceDelay time.Duration
}

// DefaultWatchConfig 返回默认配置
func DefaultWatchConfig(watchDir string) WatchConfig {
	return WatchConfig{
		WatchDir:      watchDir,
		DebounceDelay: 500 * time.Millisecond,
	}
}

// FileWatcher 文档目录监听器
// 文件落盘后经防抖窗口触发入库，启动时先对目录做一次全量入库
type FileWatcher struct {
	config    WatchConfig
	ingestion *ingestion.Service
	watcher   *fsnotify.Watcher
	logger    *slog.Logger

	// 防抖相关
	debounceTimers map[string]*time.Timer
	debounceMu     sync.Mutex

	// 控制
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewFileWatcher 创建目录监听器
func NewFileWatcher(config WatchConfig, ingestionService *ingestion.Service) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &FileWatcher{
		config:         config,
		ingestion:      ingestionService,
		watcher:        watcher,
		logger:         log.NewModuleLogger("watcher", "file_watcher"),
		debounceTimers: make(map[string]*time.Timer),
		stopCh:         make(chan struct{}),
	}, nil
}

// Start 启动目录监听
func (fw *FileWatcher) Start() error {
	if fw.config.WatchDir == "" {
		fw.logger.Info("Watch directory not configured, watcher disabled")
		return nil
	}

	fw.logger.Info("Starting file watcher", "watch_dir", fw.config.WatchDir)

	if err := os.MkdirAll(fw.config.WatchDir, 0755); err != nil {
		return err
	}

	// 启动前先把目录里已有的文档入库一遍
	fw.scanExisting()

	if err := fw.watcher.Add(fw.config.WatchDir); err != nil {
		return err
	}

	fw.wg.Add(1)
	go fw.watchLoop()

	return nil
}

// Stop 停止目录监听
func (fw *FileWatcher) Stop() {
	fw.logger.Info("Stopping file watcher")

	close(fw.stopCh)
	fw.watcher.Close()
	fw.wg.Wait()

	// 取消所有防抖定时器
	fw.debounceMu.Lock()
	for _, timer := range fw.debounceTimers {
		timer.Stop()
	}
	fw.debounceMu.Unlock()

	fw.logger.Info("File watcher stopped")
}

// scanExisting 全量入库目录里已有的文档
func (fw *FileWatcher) scanExisting() {
	entries, err := os.ReadDir(fw.config.WatchDir)
	if err != nil {
		fw.logger.Error("Failed to read watch directory", "error", err)
		return
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() || !fw.ingestion.Supports(entry.Name()) {
			continue
		}

		path := filepath.Join(fw.config.WatchDir, entry.Name())
		if err := fw.ingestion.IngestPath(context.Background(), path); err != nil {
			fw.logger.Error("Failed to ingest existing file",
				"path", path, "error", err)
			continue
		}
		count++
	}

	if count > 0 {
		fw.logger.Info("Ingested existing documents", "count", count)
	}
}

// watchLoop 事件处理循环
func (fw *FileWatcher) watchLoop() {
	defer fw.wg.Done()

	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Error("Watcher error", "error", err)

		case <-fw.stopCh:
			return
		}
	}
}

// handleEvent 处理单个文件系统事件
// 只关心写入类事件，编辑器的多次写入经防抖合并
func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if !fw.ingestion.Supports(event.Name) {
		return
	}

	fw.debounceMu.Lock()
	defer fw.debounceMu.Unlock()

	if timer, ok := fw.debounceTimers[event.Name]; ok {
		timer.Stop()
	}

	path := event.Name
	fw.debounceTimers[path] = time.AfterFunc(fw.config.DebounceDelay, func() {
		fw.debounceMu.Lock()
		delete(fw.debounceTimers, path)
		fw.debounceMu.Unlock()

		select {
		case <-fw.stopCh:
			return
		default:
		}

		if err := fw.ingestion.IngestPath(context.Background(), path); err != nil {
			fw.logger.Error("Failed to ingest watched file",
				"path", path, "error", err)
			return
		}
		fw.logger.Info("Ingested watched file", "path", path)
	})
}
