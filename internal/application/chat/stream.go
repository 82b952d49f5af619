package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	domainChat "github.com/consto/backend/internal/domain/chat"
)

// ErrStreamClosed 向已结束的流写入时返回
var ErrStreamClosed = errors.New("stream already closed")

// ChunkDelta 单条流式记录的增量内容
type ChunkDelta struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

// ChunkContext 单条流式记录携带的会话上下文
type ChunkContext struct {
	SessionID string `json:"sessionId"`
}

// CompletionChunk NDJSON 流式响应的单条记录
type CompletionChunk struct {
	Delta   ChunkDelta   `json:"delta"`
	Context ChunkContext `json:"context"`
}

// flusher 支持即时刷出缓冲的 writer，gin 的 ResponseWriter 实现了它
type flusher interface {
	Flush()
}

// StreamEncoder 把回答片段编码为 NDJSON 记录写入下游
// 每条记录一行，写一条刷一条；空片段直接丢弃，不产生记录。
// 并发安全：片段转发协程和取消路径可能同时触碰编码器
type StreamEncoder struct {
	mu        sync.Mutex
	w         io.Writer
	sessionID string
	closed    bool
	failed    bool
}

// NewStreamEncoder 创建绑定到 w 的编码器，sessionID 附在每条记录上
func NewStreamEncoder(w io.Writer, sessionID string) *StreamEncoder {
	return &StreamEncoder{w: w, sessionID: sessionID}
}

// WriteFragment 编码并写出一个回答片段
// 空片段被静默跳过；流已结束返回 ErrStreamClosed；
// 下游写失败后编码器进入失败态，后续写入不再尝试
func (e *StreamEncoder) WriteFragment(content string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || e.failed {
		return ErrStreamClosed
	}
	if content == "" {
		return nil
	}

	chunk := CompletionChunk{
		Delta: ChunkDelta{
			Content: content,
			Role:    domainChat.RoleAssistant,
		},
		Context: ChunkContext{SessionID: e.sessionID},
	}

	line, err := json.Marshal(chunk)
	if err != nil {
		e.failed = true
		return fmt.Errorf("failed to encode completion chunk: %w", err)
	}
	line = append(line, '\n')

	if _, err := e.w.Write(line); err != nil {
		e.failed = true
		return fmt.Errorf("failed to write completion chunk: %w", err)
	}
	if f, ok := e.w.(flusher); ok {
		f.Flush()
	}
	return nil
}

// Close 结束流，之后的写入返回 ErrStreamClosed
// 重复调用无害
func (e *StreamEncoder) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
}

// Failed 报告下游写入是否失败过
func (e *StreamEncoder) Failed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.failed
}
