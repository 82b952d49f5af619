package wire

import (
	"context"
	"database/sql"
	"time"

	"log/slog"

	domainChat "github.com/consto/backend/internal/domain/chat"
	"github.com/consto/backend/internal/infrastructure/embedding"
	applog "github.com/consto/backend/internal/infrastructure/log"
	"github.com/consto/backend/internal/infrastructure/vector"
	"github.com/consto/backend/internal/infrastructure/watcher"
	"github.com/consto/backend/internal/infrastructure/websocket"
	"github.com/consto/backend/internal/interfaces"
)

// App 应用主结构，组合所有服务
type App struct {
	HTTPServer  *interfaces.HTTPServer
	MCPServer   *interfaces.MCPServer
	wsHub       *websocket.Hub
	fileWatcher *watcher.FileWatcher
	vectorStore *vector.Store
	embedder    domainChat.Embedder
	db          *sql.DB
	logger      *slog.Logger
}

// NewApp 创建应用实例
func NewApp(
	httpServer *interfaces.HTTPServer,
	mcpServer *interfaces.MCPServer,
	wsHub *websocket.Hub,
	fileWatcher *watcher.FileWatcher,
	vectorStore *vector.Store,
	embedder domainChat.Embedder,
	db *sql.DB,
) *App {
	return &App{
		HTTPServer:  httpServer,
		MCPServer:   mcpServer,
		wsHub:       wsHub,
		fileWatcher: fileWatcher,
		vectorStore: vectorStore,
		embedder:    embedder,
		db:          db,
		logger:      applog.NewModuleLogger("app", "main"),
	}
}

// Start 启动所有服务
func (a *App) Start() error {
	a.logger.Info("Starting Consto chat backend")

	// 启动 WebSocket Hub
	a.wsHub.Start()

	// 确保向量集合就绪（Qdrant 不可达时只告警，请求阶段再报错）
	a.ensureCollection()

	// 启动文档目录监听（未配置目录时为空操作）
	if a.fileWatcher != nil {
		if err := a.fileWatcher.Start(); err != nil {
			a.logger.Error("Failed to start document watcher",
				"error", err,
			)
		}
	}

	// 启动 HTTP 服务器（goroutine）
	go func() {
		if err := a.HTTPServer.Start(); err != nil {
			a.logger.Error("Failed to start HTTP server",
				"error", err,
			)
		}
	}()

	a.logger.Info("Consto chat backend started successfully")

	// MCP 服务器通过 HTTP Handler 提供服务，不需要单独启动
	// 已在 HTTP 服务器中注册 /mcp/sse 端点

	return nil
}

// ensureCollection 探测向量维度并创建缺失的集合
func (a *App) ensureCollection() {
	prober, ok := a.embedder.(embedding.DimensionProber)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dimension, err := prober.VectorDimension(ctx)
	if err != nil {
		a.logger.Warn("Failed to probe embedding dimension, skipping collection setup",
			"error", err,
		)
		return
	}

	if err := a.vectorStore.EnsureCollection(ctx, uint64(dimension)); err != nil {
		a.logger.Warn("Failed to ensure vector collection",
			"error", err,
		)
		return
	}
	a.logger.Info("Vector collection ready", "dimension", dimension)
}

// Stop 停止所有服务
func (a *App) Stop() error {
	a.logger.Info("Stopping Consto chat backend")

	// 停止文档目录监听
	if a.fileWatcher != nil {
		a.fileWatcher.Stop()
		a.logger.Info("Document watcher stopped")
	}

	if err := a.HTTPServer.Stop(); err != nil {
		a.logger.Error("Failed to stop HTTP server",
			"error", err,
		)
		return err
	}

	// 关闭向量库连接
	if a.vectorStore != nil {
		if err := a.vectorStore.Close(); err != nil {
			a.logger.Error("Failed to close vector store connection",
				"error", err,
			)
		}
	}

	// 关闭数据库连接
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("Failed to close database connection",
				"error", err,
			)
			return err
		}
	}

	a.logger.Info("Consto chat backend stopped successfully")

	return nil
}
