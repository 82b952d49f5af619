package mcp

import (
	"net/http"

	appChat "github.com/consto/backend/internal/application/chat"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// MCPServer MCP 服务器
// 把知识库问答和检索以 MCP 工具的形式暴露给外部 Agent
type MCPServer struct {
	server      *mcp.Server
	handler     http.Handler
	chatService *appChat.ChatService
}

// NewServer 创建 MCP 服务器
func NewServer(chatService *appChat.ChatService) *MCPServer {
	// 创建 MCP 服务器实例
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "consto-chat-backend",
			Version: "0.1.0",
		},
		nil, // 使用默认能力
	)

	mcpServer := &MCPServer{
		server:      server,
		chatService: chatService,
	}

	// 注册工具：search_documents
	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_documents",
		Description: "Search the document knowledge base. Parameters: query (string, required) - natural language search query; limit (int, optional) - maximum number of results, defaults to 3. Returns matching document chunks with source file names and similarity scores.",
	}, mcpServer.searchDocumentsTool)

	// 注册工具：ask_question
	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask_question",
		Description: "Ask a question answered from the document knowledge base. Parameters: question (string, required). Returns the answer text with source citations and suggested follow-up questions.",
	}, mcpServer.askQuestionTool)

	// 创建 SSE Handler
	handler := mcp.NewSSEHandler(
		func(r *http.Request) *mcp.Server {
			// 每个请求返回同一个服务器实例
			return server
		},
		nil, // SSEOptions，使用默认值
	)

	mcpServer.handler = handler
	return mcpServer
}

// GetHandler 获取 HTTP Handler（用于集成到 HTTP 服务器）
func (s *MCPServer) GetHandler() http.Handler {
	return s.handler
}
