package chat

import (
	"strings"
	"testing"

	domainChat "github.com/consto/backend/internal/domain/chat"
	"github.com/stretchr/testify/assert"
)

func TestFormatDocuments(t *testing.T) {
	t.Run("按模板渲染并保持顺序", func(t *testing.T) {
		docs := []domainChat.RetrievedDocument{
			{Source: "a.pdf", Content: "X"},
			{Source: "b.pdf", Content: "Y"},
		}

		result := FormatDocuments(docs)

		assert.Equal(t, "[a.pdf]: X\n\n[b.pdf]: Y\n", result)
	})

	t.Run("空输入返回空字符串", func(t *testing.T) {
		assert.Equal(t, "", FormatDocuments(nil))
		assert.Equal(t, "", FormatDocuments([]domainChat.RetrievedDocument{}))
	})

	t.Run("单条文档", func(t *testing.T) {
		docs := []domainChat.RetrievedDocument{
			{Source: "lease.pdf", Content: "Tenants must not sublet."},
		}

		assert.Equal(t, "[lease.pdf]: Tenants must not sublet.\n", FormatDocuments(docs))
	})

	t.Run("引用标记可被解析器还原", func(t *testing.T) {
		// 格式化输出中的 [source] 标记必须能被消息解析器识别，
		// 这是引用往返链路的分隔符约定
		docs := []domainChat.RetrievedDocument{
			{Source: "info1.txt", Content: "some facts"},
		}

		formatted := FormatDocuments(docs)
		parsed := ParseMessage(formatted)

		assert.Equal(t, []string{"info1.txt"}, parsed.Citations)
		assert.True(t, strings.Contains(formatted, "[info1.txt]"))
	})
}
