package chat

// 消息角色
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message 一轮对话中的一条消息
// assistant 消息在流式生成结束后才会附带 Context
type Message struct {
	Role    string          `json:"role"`
	Content string          `json:"content"`
	Context *MessageContext `json:"context,omitempty"`
}

// MessageContext assistant 消息的附加上下文
// 在流结束并完成解析后写入，之后不再变更
type MessageContext struct {
	SessionID         string   `json:"sessionId,omitempty"`
	Citations         []string `json:"citations,omitempty"`
	FollowupQuestions []string `json:"followupQuestions,omitempty"`
}

// RetrievedDocument 检索返回的一个文档片段
// Source 既用于上下文拼装，也是模型被要求原样引用的标记
// 仅在单次请求内存活，prompt 拼装完成后即丢弃
type RetrievedDocument struct {
	Source  string
	Content string
	Score   float32
}

// Session 会话（标题在首轮对话完成后生成一次）
type Session struct {
	ID        string `json:"id"`
	UserID    string `json:"-"`
	Title     string `json:"title"`
	CreatedAt int64  `json:"-"`
}

// PromptMessage 发送给聊天模型的结构化消息
type PromptMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
