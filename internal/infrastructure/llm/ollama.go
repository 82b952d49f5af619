package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	domainChat "github.com/consto/backend/internal/domain/chat"
	"github.com/consto/backend/internal/infrastructure/log"
)

// OllamaClient 本地 Ollama Chat 客户端
// Ollama 的流式响应是 NDJSON，每行一条消息增量
type OllamaClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewOllamaClient 创建 Ollama Chat 客户端
func NewOllamaClient(baseURL, model string) *OllamaClient {
	return &OllamaClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		// 本地推理可能很慢，时长由 ctx 控制
		httpClient: &http.Client{},
		logger:     log.NewModuleLogger("llm", "ollama"),
	}
}

// ollamaChatRequest Ollama Chat 请求体
type ollamaChatRequest struct {
	Model    string                     `json:"model"`
	Messages []domainChat.PromptMessage `json:"messages"`
	Stream   bool                       `json:"stream"`
}

// ollamaChatResponse Ollama Chat 响应体（流式时每行一条）
type ollamaChatResponse struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done  bool   `json:"done"`
	Error string `json:"error,omitempty"`
}

// Complete 非流式聊天补全
func (c *OllamaClient) Complete(ctx context.Context, messages []domainChat.PromptMessage) (string, error) {
	resp, err := c.send(ctx, ollamaChatRequest{Model: c.model, Messages: messages, Stream: false})
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	var chatResp ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if chatResp.Error != "" {
		return "", fmt.Errorf("ollama returned error: %s", chatResp.Error)
	}
	return chatResp.Message.Content, nil
}

// Stream 流式聊天补全
// 逐行解析 NDJSON，把增量内容写入返回的通道
func (c *OllamaClient) Stream(ctx context.Context, messages []domainChat.PromptMessage) (<-chan domainChat.Fragment, error) {
	resp, err := c.send(ctx, ollamaChatRequest{Model: c.model, Messages: messages, Stream: true})
	if err != nil {
		return nil, err
	}

	out := make(chan domainChat.Fragment)
	go func() {
		defer close(out)
		defer func() { _ = resp.Body.Close() }()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			var chunk ollamaChatResponse
			if err := json.Unmarshal([]byte(line), &chunk); err != nil {
				c.logger.Warn("skipping malformed stream line", "error", err)
				continue
			}
			if chunk.Error != "" {
				select {
				case out <- domainChat.Fragment{Err: fmt.Errorf("ollama returned error: %s", chunk.Error)}:
				case <-ctx.Done():
				}
				return
			}
			if chunk.Done {
				return
			}
			if chunk.Message.Content == "" {
				continue
			}

			select {
			case out <- domainChat.Fragment{Content: chunk.Message.Content}:
			case <-ctx.Done():
				return
			}
		}

		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			select {
			case out <- domainChat.Fragment{Err: fmt.Errorf("stream interrupted: %w", err)}:
			case <-ctx.Done():
			}
		}
	}()

	return out, nil
}

// send 发送 Chat 请求并校验状态码
func (c *OllamaClient) send(ctx context.Context, body ollamaChatRequest) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + "/api/chat"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("Sending ollama chat request",
		"url", url,
		"model", c.model,
		"stream", body.Stream,
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(data))
	}
	return resp, nil
}
