package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/consto/backend/internal/infrastructure/log"
	infraWS "github.com/consto/backend/internal/infrastructure/websocket"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// EventsHandler 服务端事件推送处理器
type EventsHandler struct {
	hub      *infraWS.Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewEventsHandler 创建事件推送处理器
func NewEventsHandler(hub *infraWS.Hub) *EventsHandler {
	return &EventsHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// 本地应用，前端与后端同机部署
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: log.NewModuleLogger("http", "events_handler"),
	}
}

// Subscribe 升级为 WebSocket 并订阅服务端事件
// @Summary 订阅服务端事件
// @Description 升级为 WebSocket，推送文档入库等事件
// @Tags events
// @Success 101
// @Router /events [get]
func (h *EventsHandler) Subscribe(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("failed to upgrade websocket", "error", err)
		return
	}

	client := &infraWS.Connection{Send: make(chan []byte, 16)}
	h.hub.Register(client)

	// 写循环：把 hub 的事件推给客户端
	go func() {
		defer conn.Close()
		for data := range client.Send {
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.hub.Unregister(client)
				return
			}
		}
	}()

	// 读循环：只为感知断连，收到的内容全部丢弃
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.hub.Unregister(client)
				return
			}
		}
	}()
}
