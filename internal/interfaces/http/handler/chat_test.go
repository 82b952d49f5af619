package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	appChat "github.com/consto/backend/internal/application/chat"
	domainChat "github.com/consto/backend/internal/domain/chat"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubRetriever 计数的检索桩
type stubRetriever struct {
	calls int
	docs  []domainChat.RetrievedDocument
}

func (r *stubRetriever) Retrieve(_ context.Context, _ string, _ int) ([]domainChat.RetrievedDocument, error) {
	r.calls++
	return r.docs, nil
}

// stubModel 计数的聊天模型桩
type stubModel struct {
	streamCalls int
	fragments   []domainChat.Fragment
}

func (m *stubModel) Complete(_ context.Context, _ []domainChat.PromptMessage) (string, error) {
	return "Title", nil
}

func (m *stubModel) Stream(_ context.Context, _ []domainChat.PromptMessage) (<-chan domainChat.Fragment, error) {
	m.streamCalls++
	out := make(chan domainChat.Fragment, len(m.fragments))
	for _, fragment := range m.fragments {
		out <- fragment
	}
	close(out)
	return out, nil
}

// setupChatRouter 创建测试路由
func setupChatRouter(t *testing.T, retriever *stubRetriever, model *stubModel) *gin.Engine {
	t.Helper()

	prompts, err := appChat.NewPromptBuilder()
	require.NoError(t, err)
	service := appChat.NewChatService(retriever, model, prompts, nil, 3)

	router := gin.New()
	handler := NewChatHandler(service)
	router.POST("/api/chats/stream", handler.Stream)
	return router
}

func TestChatHandler_Stream(t *testing.T) {
	t.Run("返回 NDJSON 流", func(t *testing.T) {
		model := &stubModel{fragments: []domainChat.Fragment{
			{Content: "Hello"},
			{Content: " world"},
		}}
		router := setupChatRouter(t, &stubRetriever{}, model)

		body := `{"messages":[{"role":"user","content":"hi"}]}`
		req := httptest.NewRequest(http.MethodPost, "/api/chats/stream", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/x-ndjson", w.Header().Get("Content-Type"))

		lines := strings.Split(strings.TrimRight(w.Body.String(), "\n"), "\n")
		require.Len(t, lines, 2)

		var chunk appChat.CompletionChunk
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &chunk))
		assert.Equal(t, "Hello", chunk.Delta.Content)
		assert.Equal(t, "assistant", chunk.Delta.Role)
		assert.NotEmpty(t, chunk.Context.SessionID)
	})

	t.Run("沿用请求携带的会话 ID", func(t *testing.T) {
		model := &stubModel{fragments: []domainChat.Fragment{{Content: "ok"}}}
		router := setupChatRouter(t, &stubRetriever{}, model)

		body := `{"messages":[{"role":"user","content":"hi"}],"context":{"sessionId":"session-42"}}`
		req := httptest.NewRequest(http.MethodPost, "/api/chats/stream", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		var chunk appChat.CompletionChunk
		require.NoError(t, json.Unmarshal([]byte(strings.Split(w.Body.String(), "\n")[0]), &chunk))
		assert.Equal(t, "session-42", chunk.Context.SessionID)
	})

	t.Run("非法请求返回 400 且不触碰网关", func(t *testing.T) {
		tests := []struct {
			name string
			body string
		}{
			{"空消息列表", `{"messages":[]}`},
			{"缺少 messages 字段", `{}`},
			{"最后一条不是用户消息", `{"messages":[{"role":"assistant","content":"hi"}]}`},
			{"用户消息内容为空", `{"messages":[{"role":"user","content":"  "}]}`},
			{"非法 JSON", `{messages}`},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				retriever := &stubRetriever{}
				model := &stubModel{}
				router := setupChatRouter(t, retriever, model)

				req := httptest.NewRequest(http.MethodPost, "/api/chats/stream", bytes.NewBufferString(tt.body))
				req.Header.Set("Content-Type", "application/json")
				w := httptest.NewRecorder()

				router.ServeHTTP(w, req)

				assert.Equal(t, http.StatusBadRequest, w.Code)

				var errBody map[string]string
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errBody))
				assert.NotEmpty(t, errBody["error"])

				assert.Zero(t, retriever.calls)
				assert.Zero(t, model.streamCalls)
			})
		}
	})
}
