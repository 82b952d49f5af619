package handler

import (
	"errors"
	"log/slog"

	appChat "github.com/consto/backend/internal/application/chat"
	domainChat "github.com/consto/backend/internal/domain/chat"
	"github.com/consto/backend/internal/infrastructure/log"
	"github.com/consto/backend/internal/interfaces/http/response"
	"github.com/gin-gonic/gin"
)

// defaultUserID 未携带用户头时的匿名用户
const defaultUserID = "default-user"

// userIDHeader 网关注入的用户标识头
const userIDHeader = "x-user-id"

// ChatHandler 聊天处理器
type ChatHandler struct {
	service *appChat.ChatService
	logger  *slog.Logger
}

// NewChatHandler 创建聊天处理器
func NewChatHandler(service *appChat.ChatService) *ChatHandler {
	return &ChatHandler{
		service: service,
		logger:  log.NewModuleLogger("http", "chat_handler"),
	}
}

// ChatMessageDTO 聊天消息 DTO
type ChatMessageDTO struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

// ChatContextDTO 请求携带的会话上下文
type ChatContextDTO struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
}

// StreamChatRequest 流式聊天请求
type StreamChatRequest struct {
	Messages []ChatMessageDTO `json:"messages"`
	Context  *ChatContextDTO  `json:"context"`
}

// userID 解析请求的用户标识
func userID(c *gin.Context) string {
	if id := c.GetHeader(userIDHeader); id != "" {
		return id
	}
	return defaultUserID
}

// Stream 流式聊天
// @Summary 流式聊天
// @Description 以 NDJSON 流返回基于知识库的回答
// @Tags chats
// @Accept json
// @Produce application/x-ndjson
// @Param body body StreamChatRequest true "对话消息"
// @Success 200 {string} string "NDJSON 流"
// @Failure 400 {object} response.ErrorBody
// @Failure 503 {object} response.ErrorBody
// @Router /chats/stream [post]
func (h *ChatHandler) Stream(c *gin.Context) {
	var req StreamChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid or missing messages in the request body")
		return
	}

	messages := make([]*domainChat.Message, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, &domainChat.Message{Role: msg.Role, Content: msg.Content})
	}

	sessionID := ""
	user := c.GetHeader(userIDHeader)
	if req.Context != nil {
		sessionID = req.Context.SessionID
		if user == "" {
			user = req.Context.UserID
		}
	}
	if user == "" {
		user = defaultUserID
	}

	result, err := h.service.StreamChat(c.Request.Context(), &appChat.StreamRequest{
		Messages:  messages,
		SessionID: sessionID,
		UserID:    user,
	})
	if err != nil {
		if errors.Is(err, domainChat.ErrInvalidRequest) {
			response.BadRequest(c, "Invalid or missing messages in the request body")
			return
		}
		h.logger.Error("failed to start chat stream", "error", err)
		response.ServiceUnavailable(c)
		return
	}

	c.Header("Content-Type", "application/x-ndjson")
	c.Status(200)

	encoder := appChat.NewStreamEncoder(c.Writer, result.SessionID)
	defer encoder.Close()

	for fragment := range result.Fragments {
		if fragment.Err != nil {
			// 流已经开始，无法再改状态码，只能中断
			h.logger.Error("chat stream interrupted", "error", fragment.Err)
			return
		}
		if err := encoder.WriteFragment(fragment.Content); err != nil {
			h.logger.Warn("client disconnected from chat stream", "error", err)
			return
		}
	}
}
