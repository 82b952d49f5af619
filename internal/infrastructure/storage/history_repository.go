package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	domainChat "github.com/consto/backend/internal/domain/chat"
	"github.com/google/uuid"
)

// historyRepository 会话历史 SQLite 仓储实现
type historyRepository struct {
	db *sql.DB
}

// NewHistoryRepository 创建会话历史仓储实例
func NewHistoryRepository(db *sql.DB) (domainChat.HistoryRepository, error) {
	if err := initHistoryTables(db); err != nil {
		return nil, fmt.Errorf("failed to init history tables: %w", err)
	}
	return &historyRepository{db: db}, nil
}

// initHistoryTables 初始化会话与消息表
func initHistoryTables(db *sql.DB) error {
	createTablesSQL := `
	CREATE TABLE IF NOT EXISTS chat_sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS chat_messages (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		context TEXT,
		created_at INTEGER NOT NULL
	);`

	if _, err := db.Exec(createTablesSQL); err != nil {
		return fmt.Errorf("failed to create history tables: %w", err)
	}

	createIndexSQL := `
	CREATE INDEX IF NOT EXISTS idx_chat_sessions_user ON chat_sessions(user_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_chat_messages_session ON chat_messages(session_id, created_at);
	`

	if _, err := db.Exec(createIndexSQL); err != nil {
		return fmt.Errorf("failed to create history indexes: %w", err)
	}
	return nil
}

// AppendMessages 追加一批消息，会话不存在时自动创建
func (r *historyRepository) AppendMessages(sessionID, userID string, messages []*domainChat.Message) error {
	if len(messages) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().Unix()
	_, err = tx.Exec(`
		INSERT INTO chat_sessions (id, user_id, title, created_at)
		VALUES (?, ?, '', ?)
		ON CONFLICT(id) DO NOTHING`,
		sessionID, userID, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}

	for i, msg := range messages {
		var contextJSON sql.NullString
		if msg.Context != nil {
			data, err := json.Marshal(msg.Context)
			if err != nil {
				return fmt.Errorf("failed to marshal message context: %w", err)
			}
			contextJSON = sql.NullString{String: string(data), Valid: true}
		}

		// 同一批内的消息用递增时间戳保证排序稳定
		_, err = tx.Exec(`
			INSERT INTO chat_messages (id, session_id, user_id, role, content, context, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), sessionID, userID, msg.Role, msg.Content, contextJSON, now*1000+int64(i),
		)
		if err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetMessages 按时间顺序返回会话的全部消息
func (r *historyRepository) GetMessages(sessionID, userID string) ([]*domainChat.Message, error) {
	rows, err := r.db.Query(`
		SELECT role, content, context
		FROM chat_messages
		WHERE session_id = ? AND user_id = ?
		ORDER BY created_at ASC`,
		sessionID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []*domainChat.Message
	for rows.Next() {
		msg := &domainChat.Message{}
		var contextJSON sql.NullString
		if err := rows.Scan(&msg.Role, &msg.Content, &contextJSON); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		if contextJSON.Valid && contextJSON.String != "" {
			msgContext := &domainChat.MessageContext{}
			if err := json.Unmarshal([]byte(contextJSON.String), msgContext); err != nil {
				return nil, fmt.Errorf("failed to unmarshal message context: %w", err)
			}
			msg.Context = msgContext
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}
	return messages, nil
}

// GetSession 获取单个会话
func (r *historyRepository) GetSession(sessionID, userID string) (*domainChat.Session, error) {
	session := &domainChat.Session{}
	err := r.db.QueryRow(`
		SELECT id, user_id, title, created_at
		FROM chat_sessions
		WHERE id = ? AND user_id = ?`,
		sessionID, userID,
	).Scan(&session.ID, &session.UserID, &session.Title, &session.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domainChat.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}
	return session, nil
}

// ListSessions 列出用户的全部会话，最新的在前
func (r *historyRepository) ListSessions(userID string) ([]*domainChat.Session, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, title, created_at
		FROM chat_sessions
		WHERE user_id = ?
		ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]*domainChat.Session, 0)
	for rows.Next() {
		session := &domainChat.Session{}
		if err := rows.Scan(&session.ID, &session.UserID, &session.Title, &session.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	return sessions, nil
}

// SetTitle 设置会话标题
func (r *historyRepository) SetTitle(sessionID, userID, title string) error {
	result, err := r.db.Exec(`
		UPDATE chat_sessions SET title = ?
		WHERE id = ? AND user_id = ?`,
		title, sessionID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session title: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return domainChat.ErrSessionNotFound
	}
	return nil
}

// DeleteSession 删除会话及其全部消息
func (r *historyRepository) DeleteSession(sessionID, userID string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.Exec(`DELETE FROM chat_sessions WHERE id = ? AND user_id = ?`, sessionID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return domainChat.ErrSessionNotFound
	}

	if _, err := tx.Exec(`DELETE FROM chat_messages WHERE session_id = ? AND user_id = ?`, sessionID, userID); err != nil {
		return fmt.Errorf("failed to delete session messages: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
