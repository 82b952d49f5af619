package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/consto/backend/internal/infrastructure/log"
)

// OllamaClient 本地 Ollama Embedding 客户端
// Ollama 的 embeddings 接口一次只接受一个文本，逐条请求
type OllamaClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewOllamaClient 创建 Ollama Embedding 客户端
func NewOllamaClient(baseURL, model string) *OllamaClient {
	return &OllamaClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: log.NewModuleLogger("embedding", "ollama"),
	}
}

// ollamaEmbeddingRequest Ollama Embedding 请求体
type ollamaEmbeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// ollamaEmbeddingResponse Ollama Embedding 响应体
type ollamaEmbeddingResponse struct {
	Embedding []float32 `json:"embedding"`
}

// EmbedTexts 批量向量化文本
// 向量顺序与输入顺序一致
func (c *OllamaClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("texts cannot be empty")
	}

	vectors := make([][]float32, 0, len(texts))
	for i, text := range texts {
		vector, err := c.embedOne(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("failed to embed text %d: %w", i, err)
		}
		vectors = append(vectors, vector)
	}

	c.logger.Debug("embedded texts via ollama",
		"count", len(vectors), "model", c.model)
	return vectors, nil
}

// embedOne 向量化单个文本
func (c *OllamaClient) embedOne(ctx context.Context, text string) ([]float32, error) {
	jsonData, err := json.Marshal(ollamaEmbeddingRequest{Model: c.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + "/api/embeddings"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(body))
	}

	var embeddingResp ollamaEmbeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&embeddingResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(embeddingResp.Embedding) == 0 {
		return nil, fmt.Errorf("ollama returned an empty embedding")
	}
	return embeddingResp.Embedding, nil
}

// VectorDimension 通过一次探测请求获取向量维度
func (c *OllamaClient) VectorDimension(ctx context.Context) (int, error) {
	vector, err := c.embedOne(ctx, "dimension probe")
	if err != nil {
		return 0, err
	}
	return len(vector), nil
}
