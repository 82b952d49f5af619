package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	domainChat "github.com/consto/backend/internal/domain/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, fragments <-chan domainChat.Fragment) (string, error) {
	t.Helper()
	var answer string
	for fragment := range fragments {
		if fragment.Err != nil {
			return answer, fragment.Err
		}
		answer += fragment.Content
	}
	return answer, nil
}

func TestClient_Stream(t *testing.T) {
	t.Run("解析 SSE 增量", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/chat/completions", r.URL.Path)
			w.Header().Set("Content-Type", "text/event-stream")
			_, _ = w.Write([]byte(
				"data: {\"choices\":[{\"delta\":{\"role\":\"assistant\",\"content\":\"Hel\"}}]}\n\n" +
					"data: {\"choices\":[{\"delta\":{\"content\":\"lo\"}}]}\n\n" +
					"data: {\"choices\":[{\"delta\":{}}]}\n\n" +
					"data: [DONE]\n\n",
			))
		}))
		defer server.Close()

		client := NewClient(server.URL+"/v1", "test-key", "gpt-4")
		fragments, err := client.Stream(context.Background(), []domainChat.PromptMessage{
			{Role: domainChat.RoleUser, Content: "hi"},
		})
		require.NoError(t, err)

		answer, streamErr := collect(t, fragments)
		require.NoError(t, streamErr)
		assert.Equal(t, "Hello", answer)
	})

	t.Run("非 200 状态直接报错", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := NewClient(server.URL+"/v1", "test-key", "gpt-4")
		_, err := client.Stream(context.Background(), []domainChat.PromptMessage{
			{Role: domainChat.RoleUser, Content: "hi"},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "429")
	})
}

func TestClient_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Short title"}}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/v1", "test-key", "gpt-4")
	answer, err := client.Complete(context.Background(), []domainChat.PromptMessage{
		{Role: domainChat.RoleUser, Content: "hi"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Short title", answer)
}

func TestOllamaClient_Stream(t *testing.T) {
	t.Run("解析 NDJSON 增量", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/chat", r.URL.Path)
			w.Header().Set("Content-Type", "application/x-ndjson")
			_, _ = w.Write([]byte(
				`{"message":{"role":"assistant","content":"Hel"},"done":false}` + "\n" +
					`{"message":{"role":"assistant","content":"lo"},"done":false}` + "\n" +
					`{"message":{"role":"assistant","content":""},"done":true}` + "\n",
			))
		}))
		defer server.Close()

		client := NewOllamaClient(server.URL, "mistral")
		fragments, err := client.Stream(context.Background(), []domainChat.PromptMessage{
			{Role: domainChat.RoleUser, Content: "hi"},
		})
		require.NoError(t, err)

		answer, streamErr := collect(t, fragments)
		require.NoError(t, streamErr)
		assert.Equal(t, "Hello", answer)
	})

	t.Run("上游错误通过片段传递", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(
				`{"message":{"role":"assistant","content":"par"},"done":false}` + "\n" +
					`{"error":"model crashed"}` + "\n",
			))
		}))
		defer server.Close()

		client := NewOllamaClient(server.URL, "mistral")
		fragments, err := client.Stream(context.Background(), []domainChat.PromptMessage{
			{Role: domainChat.RoleUser, Content: "hi"},
		})
		require.NoError(t, err)

		answer, streamErr := collect(t, fragments)
		require.Error(t, streamErr)
		assert.Equal(t, "par", answer)
		assert.Contains(t, streamErr.Error(), "model crashed")
	})
}

func TestOllamaClient_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"done"},"done":true}`))
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL, "mistral")
	answer, err := client.Complete(context.Background(), []domainChat.PromptMessage{
		{Role: domainChat.RoleUser, Content: "hi"},
	})
	require.NoError(t, err)
	assert.Equal(t, "done", answer)
}
