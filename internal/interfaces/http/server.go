package http

import (
	"context"
	"net/http"
	"time"

	"log/slog"

	"github.com/consto/backend/internal/infrastructure/config"
	"github.com/consto/backend/internal/infrastructure/log"
	"github.com/consto/backend/internal/interfaces/http/handler"
	"github.com/consto/backend/internal/interfaces/mcp"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/consto/backend/docs" // Swagger docs
)

// HTTPServer HTTP 服务器
type HTTPServer struct {
	router   *gin.Engine
	httpPort string
	server   *http.Server
	logger   *slog.Logger
}

// NewServer 创建 HTTP 服务器
func NewServer(
	cfg *config.Config,
	chatHandler *handler.ChatHandler,
	historyHandler *handler.HistoryHandler,
	documentHandler *handler.DocumentHandler,
	eventsHandler *handler.EventsHandler,
	mcpServer *mcp.MCPServer,
) *HTTPServer {
	router := gin.Default()

	logger := log.NewModuleLogger("http", "server")

	// 注册路由
	api := router.Group("/api")
	{
		// 聊天相关路由
		api.POST("/chats/stream", chatHandler.Stream)
		api.GET("/chats", historyHandler.List)
		api.GET("/chats/:sessionId", historyHandler.Get)
		api.DELETE("/chats/:sessionId", historyHandler.Delete)

		// 文档相关路由
		api.POST("/documents", documentHandler.Upload)
		api.GET("/documents/:fileName", documentHandler.Download)

		// 服务端事件推送
		api.GET("/events", eventsHandler.Subscribe)
	}

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// MCP SSE 端点
	if mcpServer != nil {
		router.Any("/mcp/sse", gin.WrapH(mcpServer.GetHandler()))
	}

	return &HTTPServer{
		router:   router,
		httpPort: cfg.Server.HTTPPort,
		logger:   logger,
	}
}

// Start 启动服务器
func (s *HTTPServer) Start() error {
	s.server = &http.Server{
		Addr:    s.httpPort,
		Handler: s.router,
	}

	s.logger.Info("HTTP server starting", "port", s.httpPort)

	return s.server.ListenAndServe()
}

// Shutdown 优雅关闭
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Stop 停止服务器
func (s *HTTPServer) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}
