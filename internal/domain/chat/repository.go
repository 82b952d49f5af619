package chat

// HistoryRepository 会话历史仓库接口
type HistoryRepository interface {
	// 消息相关方法
	AppendMessages(sessionID, userID string, messages []*Message) error
	GetMessages(sessionID, userID string) ([]*Message, error)

	// 会话相关方法
	GetSession(sessionID, userID string) (*Session, error)
	ListSessions(userID string) ([]*Session, error)
	SetTitle(sessionID, userID, title string) error
	DeleteSession(sessionID, userID string) error
}

// DocumentStore 原始文档存储接口（引用标记可直接作为文件名取回原文）
type DocumentStore interface {
	Save(name, contentType string, data []byte) error
	Load(name string) (data []byte, contentType string, err error)
}
