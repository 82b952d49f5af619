package chat

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMessage_Citations(t *testing.T) {
	t.Run("首次出现分配序号且去重", func(t *testing.T) {
		parsed := ParseMessage("See [a.pdf] and also [b.pdf] and again [a.pdf].")

		assert.Equal(t, []string{"a.pdf", "b.pdf"}, parsed.Citations)
		assert.Equal(t, "See [1] and also [2] and again [1].", parsed.DisplayText)
	})

	t.Run("无引用时展示文本不变", func(t *testing.T) {
		parsed := ParseMessage("No sources were used.")

		assert.Empty(t, parsed.Citations)
		assert.Equal(t, "No sources were used.", parsed.DisplayText)
	})

	t.Run("相邻引用逐个编号", func(t *testing.T) {
		parsed := ParseMessage("Refunds are possible [info1.txt][info2.pdf]")

		assert.Equal(t, []string{"info1.txt", "info2.pdf"}, parsed.Citations)
		assert.Equal(t, "Refunds are possible [1][2]", parsed.DisplayText)
	})

	t.Run("末尾未闭合引用按普通文本保留", func(t *testing.T) {
		parsed := ParseMessage("Deposit rules are in [lease.pd")

		assert.Empty(t, parsed.Citations)
		assert.Equal(t, "Deposit rules are in [lease.pd", parsed.DisplayText)
	})

	t.Run("自定义渲染器", func(t *testing.T) {
		parsed := ParseMessageWithRenderer("See [a.pdf].", func(citation string, index int) string {
			return fmt.Sprintf(`<sup data-source=%q>%d</sup>`, citation, index)
		})

		assert.Equal(t, `See <sup data-source="a.pdf">1</sup>.`, parsed.DisplayText)
	})
}

func TestParseMessage_FollowupQuestions(t *testing.T) {
	t.Run("按出现顺序提取并移除", func(t *testing.T) {
		parsed := ParseMessage("Answer text.<<Q1?>><<Q2?>>")

		assert.Equal(t, []string{"Q1?", "Q2?"}, parsed.FollowupQuestions)
		assert.Equal(t, "Answer text.", parsed.DisplayText)
	})

	t.Run("未闭合的追问被截断丢弃", func(t *testing.T) {
		parsed := ParseMessage("Answer text.<<Q1?>><<Partial q")

		assert.Equal(t, []string{"Q1?"}, parsed.FollowupQuestions)
		assert.Equal(t, "Answer text.", parsed.DisplayText)
	})

	t.Run("只有未闭合追问时展示文本为正文", func(t *testing.T) {
		parsed := ParseMessage("Answer text. <<cut off mid questi")

		assert.Empty(t, parsed.FollowupQuestions)
		assert.Equal(t, "Answer text.", parsed.DisplayText)
	})
}

func TestParseMessage_Combined(t *testing.T) {
	text := "The lease allows pets [lease.pdf], see also [rules.pdf] and [lease.pdf].\n<<What about cats?>><<Is there a fee?>>"

	parsed := ParseMessage(text)

	assert.Equal(t, []string{"lease.pdf", "rules.pdf"}, parsed.Citations)
	assert.Equal(t, []string{"What about cats?", "Is there a fee?"}, parsed.FollowupQuestions)
	assert.Equal(t, "The lease allows pets [1], see also [2] and [1].", parsed.DisplayText)
}

func TestParseMessage_Idempotent(t *testing.T) {
	text := "See [a.pdf] and [b.pdf].<<Next?>>"

	first := ParseMessage(text)
	second := ParseMessage(text)

	assert.Equal(t, first.Citations, second.Citations)
	assert.Equal(t, first.FollowupQuestions, second.FollowupQuestions)
	assert.Equal(t, first.DisplayText, second.DisplayText)
}
