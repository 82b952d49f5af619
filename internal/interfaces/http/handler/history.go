package handler

import (
	"errors"
	"log/slog"
	"net/http"

	appChat "github.com/consto/backend/internal/application/chat"
	domainChat "github.com/consto/backend/internal/domain/chat"
	"github.com/consto/backend/internal/infrastructure/log"
	"github.com/consto/backend/internal/interfaces/http/response"
	"github.com/gin-gonic/gin"
)

// HistoryHandler 会话历史处理器
type HistoryHandler struct {
	service *appChat.ChatService
	logger  *slog.Logger
}

// NewHistoryHandler 创建会话历史处理器
func NewHistoryHandler(service *appChat.ChatService) *HistoryHandler {
	return &HistoryHandler{
		service: service,
		logger:  log.NewModuleLogger("http", "history_handler"),
	}
}

// SessionDTO 会话 DTO
type SessionDTO struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// List 列出当前用户的会话
// @Summary 列出会话
// @Tags chats
// @Produce json
// @Success 200 {array} SessionDTO
// @Router /chats [get]
func (h *HistoryHandler) List(c *gin.Context) {
	sessions, err := h.service.ListSessions(userID(c))
	if err != nil {
		h.logger.Error("failed to list sessions", "error", err)
		response.ServiceUnavailable(c)
		return
	}

	dtos := make([]SessionDTO, 0, len(sessions))
	for _, session := range sessions {
		dtos = append(dtos, SessionDTO{ID: session.ID, Title: session.Title})
	}
	c.JSON(http.StatusOK, dtos)
}

// Get 获取会话的全部消息
// @Summary 获取会话消息
// @Tags chats
// @Produce json
// @Param sessionId path string true "会话 ID"
// @Success 200 {array} domainChat.Message
// @Failure 404 {object} response.ErrorBody
// @Router /chats/{sessionId} [get]
func (h *HistoryHandler) Get(c *gin.Context) {
	sessionID := c.Param("sessionId")

	messages, err := h.service.GetSessionMessages(sessionID, userID(c))
	if err != nil {
		if errors.Is(err, domainChat.ErrSessionNotFound) {
			response.NotFound(c, "Session not found")
			return
		}
		h.logger.Error("failed to get session messages",
			"session_id", sessionID, "error", err)
		response.ServiceUnavailable(c)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// Delete 删除会话
// @Summary 删除会话
// @Tags chats
// @Param sessionId path string true "会话 ID"
// @Success 204
// @Failure 404 {object} response.ErrorBody
// @Router /chats/{sessionId} [delete]
func (h *HistoryHandler) Delete(c *gin.Context) {
	sessionID := c.Param("sessionId")

	if err := h.service.DeleteSession(sessionID, userID(c)); err != nil {
		if errors.Is(err, domainChat.ErrSessionNotFound) {
			response.NotFound(c, "Session not found")
			return
		}
		h.logger.Error("failed to delete session",
			"session_id", sessionID, "error", err)
		response.ServiceUnavailable(c)
		return
	}
	c.Status(http.StatusNoContent)
}
