package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	domainChat "github.com/consto/backend/internal/domain/chat"
	"github.com/consto/backend/internal/infrastructure/log"
	"github.com/google/uuid"
)

// maxTitleLength 会话标题最大长度（按 rune 计）
const maxTitleLength = 32

// StreamRequest 流式聊天请求
// Messages 为完整对话（时间顺序），最后一条必须是非空的 user 消息
type StreamRequest struct {
	Messages  []*domainChat.Message
	SessionID string
	UserID    string
}

// StreamResult 流式聊天结果
// Fragments 按生成顺序交付回答片段，生成结束后关闭
type StreamResult struct {
	SessionID string
	Fragments <-chan domainChat.Fragment
}

// ChatService 聊天应用服务
// 串联检索、上下文拼装、prompt 构建和流式生成
type ChatService struct {
	retriever domainChat.Retriever
	model     domainChat.ChatModel
	prompts   *PromptBuilder
	history   domainChat.HistoryRepository
	topK      int
	logger    *slog.Logger
}

// NewChatService 创建聊天服务
// history 可以为 nil，此时不持久化会话
func NewChatService(
	retriever domainChat.Retriever,
	model domainChat.ChatModel,
	prompts *PromptBuilder,
	history domainChat.HistoryRepository,
	topK int,
) *ChatService {
	if topK <= 0 {
		topK = 3
	}
	return &ChatService{
		retriever: retriever,
		model:     model,
		prompts:   prompts,
		history:   history,
		topK:      topK,
		logger:    log.NewModuleLogger("application", "chat"),
	}
}

// StreamChat 执行一轮流式聊天
// 校验在任何网关调用之前完成，非法请求不会触碰检索和模型；
// 流正常结束后整轮对话（含解析出的引用和追问）才会写入历史，
// 中途失败或取消不留半轮记录
func (s *ChatService) StreamChat(ctx context.Context, req *StreamRequest) (*StreamResult, error) {
	question, err := validateStreamRequest(req)
	if err != nil {
		return nil, err
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	userID := req.UserID

	history, firstTurn := s.loadHistory(sessionID, userID, req.Messages)

	docs, err := s.retriever.Retrieve(ctx, question, s.topK)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve documents: %w", err)
	}
	s.logger.Debug("retrieved context documents",
		"session_id", sessionID, "count", len(docs))

	messages := s.prompts.BuildChatMessages(FormatDocuments(docs), history, question)

	upstream, err := s.model.Stream(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("failed to start chat completion: %w", err)
	}

	out := make(chan domainChat.Fragment)
	go s.forward(ctx, upstream, out, sessionID, userID, question, firstTurn)

	return &StreamResult{SessionID: sessionID, Fragments: out}, nil
}

// forward 把上游片段转发给调用方并累积完整回答
// 上游通道关闭且最后一个片段无错误时视为正常结束
func (s *ChatService) forward(
	ctx context.Context,
	upstream <-chan domainChat.Fragment,
	out chan<- domainChat.Fragment,
	sessionID, userID, question string,
	firstTurn bool,
) {
	defer close(out)

	var answer strings.Builder
	completed := true

	for fragment := range upstream {
		if fragment.Err != nil {
			completed = false
		} else {
			answer.WriteString(fragment.Content)
		}

		select {
		case out <- fragment:
		case <-ctx.Done():
			return
		}
	}
	if ctx.Err() != nil {
		return
	}

	if completed {
		s.persistTurn(sessionID, userID, question, answer.String())
		if firstTurn {
			s.generateTitle(sessionID, userID, question)
		}
	}
}

// persistTurn 持久化一轮完整对话
// assistant 消息附带从完整回答解析出的引用和追问
func (s *ChatService) persistTurn(sessionID, userID, question, answer string) {
	if s.history == nil {
		return
	}

	parsed := ParseMessage(answer)
	turn := []*domainChat.Message{
		{Role: domainChat.RoleUser, Content: question},
		{
			Role:    domainChat.RoleAssistant,
			Content: answer,
			Context: &domainChat.MessageContext{
				SessionID:         sessionID,
				Citations:         parsed.Citations,
				FollowupQuestions: parsed.FollowupQuestions,
			},
		},
	}

	if err := s.history.AppendMessages(sessionID, userID, turn); err != nil {
		s.logger.Error("failed to persist chat turn",
			"session_id", sessionID, "error", err)
	}
}

// generateTitle 为新会话生成一次标题
// 标题生成失败只记日志，不影响已经交付的回答
func (s *ChatService) generateTitle(sessionID, userID, question string) {
	if s.history == nil {
		return
	}

	title, err := s.model.Complete(context.Background(), s.prompts.BuildTitleMessages(question))
	if err != nil {
		s.logger.Warn("failed to generate session title",
			"session_id", sessionID, "error", err)
		return
	}

	title = strings.TrimSpace(strings.Trim(strings.TrimSpace(title), `"`))
	if runes := []rune(title); len(runes) > maxTitleLength {
		title = string(runes[:maxTitleLength])
	}
	if title == "" {
		return
	}

	if err := s.history.SetTitle(sessionID, userID, title); err != nil {
		s.logger.Warn("failed to save session title",
			"session_id", sessionID, "error", err)
	}
}

// loadHistory 加载会话历史
// 仓库中已有记录时以仓库为准，否则退回请求携带的历史轮次；
// firstTurn 表示仓库中还没有该会话的任何消息
func (s *ChatService) loadHistory(sessionID, userID string, requestMessages []*domainChat.Message) ([]*domainChat.Message, bool) {
	prior := requestMessages[:len(requestMessages)-1]

	if s.history == nil {
		return prior, false
	}

	stored, err := s.history.GetMessages(sessionID, userID)
	if err != nil || len(stored) == 0 {
		return prior, len(prior) == 0
	}
	return stored, false
}

// Answer 执行一轮非流式问答（无会话历史，不持久化）
// 供 MCP 工具等一次性调用方使用
func (s *ChatService) Answer(ctx context.Context, question string) (*ParsedMessage, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question must not be empty", domainChat.ErrInvalidRequest)
	}

	docs, err := s.retriever.Retrieve(ctx, question, s.topK)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve documents: %w", err)
	}

	messages := s.prompts.BuildChatMessages(FormatDocuments(docs), nil, question)
	answer, err := s.model.Complete(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("failed to complete chat: %w", err)
	}

	return ParseMessage(answer), nil
}

// SearchDocuments 直接检索知识库
func (s *ChatService) SearchDocuments(ctx context.Context, query string, limit int) ([]domainChat.RetrievedDocument, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query must not be empty", domainChat.ErrInvalidRequest)
	}
	if limit <= 0 {
		limit = s.topK
	}
	return s.retriever.Retrieve(ctx, query, limit)
}

// ListSessions 列出用户的全部会话
func (s *ChatService) ListSessions(userID string) ([]*domainChat.Session, error) {
	if s.history == nil {
		return []*domainChat.Session{}, nil
	}
	return s.history.ListSessions(userID)
}

// GetSessionMessages 获取会话的全部消息
func (s *ChatService) GetSessionMessages(sessionID, userID string) ([]*domainChat.Message, error) {
	if s.history == nil {
		return nil, domainChat.ErrSessionNotFound
	}
	if _, err := s.history.GetSession(sessionID, userID); err != nil {
		return nil, err
	}
	return s.history.GetMessages(sessionID, userID)
}

// DeleteSession 删除会话及其全部消息
func (s *ChatService) DeleteSession(sessionID, userID string) error {
	if s.history == nil {
		return domainChat.ErrSessionNotFound
	}
	return s.history.DeleteSession(sessionID, userID)
}

// validateStreamRequest 校验流式请求并返回当前问题
func validateStreamRequest(req *StreamRequest) (string, error) {
	if req == nil || len(req.Messages) == 0 {
		return "", fmt.Errorf("%w: messages must not be empty", domainChat.ErrInvalidRequest)
	}

	last := req.Messages[len(req.Messages)-1]
	if last == nil || last.Role != domainChat.RoleUser {
		return "", fmt.Errorf("%w: last message must be a user message", domainChat.ErrInvalidRequest)
	}
	if strings.TrimSpace(last.Content) == "" {
		return "", fmt.Errorf("%w: last message content must not be empty", domainChat.ErrInvalidRequest)
	}
	return last.Content, nil
}
