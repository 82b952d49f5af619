package chat

import (
	"fmt"
	"regexp"
	"strings"
)

// ParsedMessage 解析后的 assistant 消息
type ParsedMessage struct {
	// DisplayText 引用标记已替换为编号引用的展示文本
	DisplayText string
	// Citations 引用来源，按首次出现顺序去重
	Citations []string
	// FollowupQuestions 追问建议，按出现顺序
	FollowupQuestions []string
}

// CitationRenderer 渲染一处引用标记
// index 为该来源的引用编号（1 起始，首次出现时分配）
type CitationRenderer func(citation string, index int) string

var (
	// 追问格式 <<question>>，内部不允许嵌套 <<
	followupPattern = regexp.MustCompile(`<<([^>]+)>>`)
	// 引用格式 [label]，只有左右括号齐全才算引用
	citationPattern = regexp.MustCompile(`\[([^\]]+)]`)
)

// ParseMessage 解析完整的回答文本，提取追问和引用
// 对同一文本重复调用结果相同
func ParseMessage(content string) *ParsedMessage {
	return ParseMessageWithRenderer(content, func(_ string, index int) string {
		return fmt.Sprintf("[%d]", index)
	})
}

// ParseMessageWithRenderer 解析回答文本，引用标记经 render 渲染
func ParseMessageWithRenderer(content string, render CitationRenderer) *ParsedMessage {
	parsed := &ParsedMessage{
		Citations:         []string{},
		FollowupQuestions: []string{},
	}

	// 1. 提取所有完整的 <<...>> 追问并从文本中移除
	text := followupPattern.ReplaceAllStringFunc(content, func(match string) string {
		question := match[2 : len(match)-2]
		parsed.FollowupQuestions = append(parsed.FollowupQuestions, question)
		return ""
	})

	// 2. 剩余的未闭合 << 是被截断的追问，从该处截断展示文本
	if idx := strings.Index(text, "<<"); idx >= 0 {
		text = text[:idx]
	}

	// 3. 去除首尾空白
	text = strings.TrimSpace(text)

	// 4. 提取引用：首次出现的来源分配下一个序号（1 起始），
	//    重复出现复用已有序号，不重复登记
	var builder strings.Builder
	seen := make(map[string]int)
	last := 0
	for _, loc := range citationPattern.FindAllStringSubmatchIndex(text, -1) {
		builder.WriteString(text[last:loc[0]])

		label := text[loc[2]:loc[3]]
		index, ok := seen[label]
		if !ok {
			parsed.Citations = append(parsed.Citations, label)
			index = len(parsed.Citations)
			seen[label] = index
		}
		builder.WriteString(render(label, index))

		last = loc[1]
	}
	// 末尾未闭合的 [label 不构成引用，按普通文本保留
	builder.WriteString(text[last:])

	parsed.DisplayText = builder.String()
	return parsed
}
