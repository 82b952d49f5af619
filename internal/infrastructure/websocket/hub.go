package websocket

import (
	"encoding/json"
	"sync"
	"time"
)

// Hub WebSocket 连接管理中心
// 向所有在线客户端推送服务端事件（文档入库完成等）
type Hub struct {
	connections map[*Connection]bool
	register    chan *Connection
	unregister  chan *Connection
	broadcast   chan []byte
	mu          sync.RWMutex
}

// Connection WebSocket 连接
type Connection struct {
	Send chan []byte
}

// Event 推送给客户端的事件
type Event struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// NewHub 创建 Hub
func NewHub() *Hub {
	return &Hub{
		connections: make(map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		broadcast:   make(chan []byte),
	}
}

// Run 运行 Hub（需要在 goroutine 中运行）
func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.connections[conn] = true
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.connections[conn]; ok {
				delete(h.connections, conn)
				close(conn.Send)
			}
			h.mu.Unlock()

		case data := <-h.broadcast:
			h.mu.Lock()
			for conn := range h.connections {
				select {
				case conn.Send <- data:
				default:
					// 消费不过来的连接直接踢掉
					close(conn.Send)
					delete(h.connections, conn)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Start 启动 Hub（启动后台 goroutine）
func (h *Hub) Start() {
	go h.Run()
}

// Register 注册连接
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister 注销连接
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// Broadcast 向所有连接广播事件
func (h *Hub) Broadcast(eventType string, payload interface{}) error {
	data, err := json.Marshal(&Event{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		return err
	}
	h.broadcast <- data
	return nil
}

// NotifyDocumentIngested 文档入库完成事件
func (h *Hub) NotifyDocumentIngested(name string, chunks int) {
	_ = h.Broadcast("document_ingested", map[string]interface{}{
		"name":   name,
		"chunks": chunks,
	})
}

// ConnectionCount 当前在线连接数
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}
