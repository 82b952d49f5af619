package chat

import (
	"fmt"
	"strings"

	domainChat "github.com/consto/backend/internal/domain/chat"
)

// contextPlaceholder 系统提示词中的上下文占位符
const contextPlaceholder = "{context}"

// defaultSystemPrompt 默认 RAG 系统提示词
// 约定：来源格式 "[filename]: information"、引用格式 "[filename]"、
// 追问用双尖括号包裹——解析器按这些约定提取引用和追问
const defaultSystemPrompt = `Assistant helps the Consto Real Estate company customers with questions and support requests. Be brief in your answers. Answer only plain text, DO NOT use Markdown.
Answer ONLY with information from the sources below. If there isn't enough information in the sources, say you don't know. Do not generate answers that don't use the sources. If asking a clarifying question to the user would help, ask the question.
If the user question is not in English, answer in the language used in the question.

Each source has the format "[filename]: information". ALWAYS reference the source filename for every part used in the answer. Use the format "[filename]" to reference a source, for example: [info1.txt]. List each source separately, for example: [info1.txt][info2.pdf].

Generate 3 very brief follow-up questions that the user would likely ask next.
Enclose the follow-up questions in double angle brackets. Example:
<<Am I allowed to invite friends for a party?>>
<<How can I ask for a refund?>>
<<What If I break something?>>

Do no repeat questions that have already been asked.
Make sure the last question ends with ">>".

SOURCES:
{context}`

// titleSystemPrompt 会话标题生成提示词
const titleSystemPrompt = `Create a title for this chat session, based on the user question. The title should be less than 32 characters. Do NOT use double-quotes.`

// PromptBuilder 结构化 prompt 构建器
// 在进程启动时构建一次，模板缺少 {context} 占位符会立即失败，
// 不会拖到每次请求时才报错
type PromptBuilder struct {
	systemTemplate string
}

// NewPromptBuilder 创建默认模板的构建器
func NewPromptBuilder() (*PromptBuilder, error) {
	return NewPromptBuilderWithTemplate(defaultSystemPrompt)
}

// NewPromptBuilderWithTemplate 创建指定模板的构建器
// template 为空时使用默认模板
func NewPromptBuilderWithTemplate(template string) (*PromptBuilder, error) {
	if template == "" {
		template = defaultSystemPrompt
	}
	if !strings.Contains(template, contextPlaceholder) {
		return nil, fmt.Errorf("system prompt template is missing the %s placeholder", contextPlaceholder)
	}
	return &PromptBuilder{systemTemplate: template}, nil
}

// BuildChatMessages 构建聊天补全消息列表
// 顺序：system（已替换 context）-> 历史轮次（时间顺序）-> 当前问题
// 问题原文透传，不做转义；相同输入总是产生相同输出
func (b *PromptBuilder) BuildChatMessages(contextBlock string, history []*domainChat.Message, question string) []domainChat.PromptMessage {
	messages := make([]domainChat.PromptMessage, 0, len(history)+2)

	messages = append(messages, domainChat.PromptMessage{
		Role:    domainChat.RoleSystem,
		Content: strings.ReplaceAll(b.systemTemplate, contextPlaceholder, contextBlock),
	})

	for _, msg := range history {
		messages = append(messages, domainChat.PromptMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	messages = append(messages, domainChat.PromptMessage{
		Role:    domainChat.RoleUser,
		Content: question,
	})

	return messages
}

// BuildTitleMessages 构建会话标题生成消息列表
func (b *PromptBuilder) BuildTitleMessages(question string) []domainChat.PromptMessage {
	return []domainChat.PromptMessage{
		{Role: domainChat.RoleSystem, Content: titleSystemPrompt},
		{Role: domainChat.RoleUser, Content: question},
	}
}
