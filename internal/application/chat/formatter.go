package chat

import (
	"fmt"
	"strings"

	domainChat "github.com/consto/backend/internal/domain/chat"
)

// FormatDocuments 将检索到的文档渲染为 prompt 上下文文本块
// 每条文档渲染为 "[source]: content\n"，条目之间以空行分隔，保持输入顺序
// 方括号包裹的 source 是引用约定：系统提示词要求模型原样复制该标记，
// 下游引用解析依赖这一分隔符格式
// 空输入返回空字符串，保证 {context} 占位符始终可替换
func FormatDocuments(documents []domainChat.RetrievedDocument) string {
	if len(documents) == 0 {
		return ""
	}

	parts := make([]string, len(documents))
	for i, doc := range documents {
		parts[i] = fmt.Sprintf("[%s]: %s\n", doc.Source, doc.Content)
	}

	return strings.Join(parts, "\n")
}
