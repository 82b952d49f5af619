package chat

import "context"

// Fragment 聊天模型流式输出的一个片段
// Err 非空表示生成中途失败，通道随后关闭
type Fragment struct {
	Content string
	Err     error
}

// Embedder 文本向量化网关
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ChatModel 聊天补全网关
// Stream 返回的通道按到达顺序逐片段交付，生成结束后关闭
// 取消 ctx 会中止底层生成并关闭通道
type ChatModel interface {
	Complete(ctx context.Context, messages []PromptMessage) (string, error)
	Stream(ctx context.Context, messages []PromptMessage) (<-chan Fragment, error)
}

// Retriever 向量检索网关
// 返回按相似度从高到低排序的文档片段，顺序稳定
type Retriever interface {
	Retrieve(ctx context.Context, query string, limit int) ([]RetrievedDocument, error)
}
