package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SearchDocumentsInput 知识库检索工具输入
type SearchDocumentsInput struct {
	Query string `json:"query" jsonschema:"Search query - describe what you're looking for in natural language (required)"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of results to return, defaults to 3"`
}

// SearchDocumentsOutput 知识库检索工具输出
type SearchDocumentsOutput struct {
	Results []DocumentResult `json:"results" jsonschema:"List of matching document chunks"`
}

// DocumentResult 单条检索结果
type DocumentResult struct {
	Source  string  `json:"source" jsonschema:"Source file name"`
	Content string  `json:"content" jsonschema:"Chunk text content"`
	Score   float32 `json:"score" jsonschema:"Similarity score, higher is more relevant"`
}

// searchDocumentsTool 知识库检索工具实现
func (s *MCPServer) searchDocumentsTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input SearchDocumentsInput,
) (*mcp.CallToolResult, SearchDocumentsOutput, error) {
	output := SearchDocumentsOutput{Results: []DocumentResult{}}

	if input.Query == "" {
		return nil, output, fmt.Errorf("query is required")
	}

	docs, err := s.chatService.SearchDocuments(ctx, input.Query, input.Limit)
	if err != nil {
		return nil, output, fmt.Errorf("search failed: %w", err)
	}

	for _, doc := range docs {
		output.Results = append(output.Results, DocumentResult{
			Source:  doc.Source,
			Content: doc.Content,
			Score:   doc.Score,
		})
	}
	return nil, output, nil
}

// AskQuestionInput 知识库问答工具输入
type AskQuestionInput struct {
	Question string `json:"question" jsonschema:"Question to answer from the knowledge base (required)"`
}

// AskQuestionOutput 知识库问答工具输出
type AskQuestionOutput struct {
	Answer            string   `json:"answer" jsonschema:"Answer text with numbered citation markers"`
	Citations         []string `json:"citations,omitempty" jsonschema:"Source file names in citation order"`
	FollowupQuestions []string `json:"followup_questions,omitempty" jsonschema:"Suggested follow-up questions"`
}

// askQuestionTool 知识库问答工具实现
func (s *MCPServer) askQuestionTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input AskQuestionInput,
) (*mcp.CallToolResult, AskQuestionOutput, error) {
	var output AskQuestionOutput

	if input.Question == "" {
		return nil, output, fmt.Errorf("question is required")
	}

	parsed, err := s.chatService.Answer(ctx, input.Question)
	if err != nil {
		return nil, output, fmt.Errorf("failed to answer question: %w", err)
	}

	output.Answer = parsed.DisplayText
	output.Citations = parsed.Citations
	output.FollowupQuestions = parsed.FollowupQuestions
	return nil, output, nil
}
