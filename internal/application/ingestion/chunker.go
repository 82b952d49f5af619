package ingestion

import (
	"strings"
)

// Chunker 按字符长度切分文档文本
// 优先在段落边界切分，段落超长时退回硬切；相邻片段之间
// 保留上一片段的尾部作为重叠，保证跨边界的语义不被切断
type Chunker struct {
	chunkSize int
	overlap   int
}

// NewChunker 创建切分器
// chunkSize 或 overlap 非法时回退到默认值 1500/100
func NewChunker(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 1500
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 100
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}
}

// Split 把文本切分为片段序列
// 空白文本返回空切片；片段保持原文顺序
func (c *Chunker) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return []string{}
	}

	var chunks []string
	var current strings.Builder

	for _, paragraph := range splitParagraphs(text) {
		// 单个段落超出上限时先硬切
		pieces := []string{paragraph}
		if len([]rune(paragraph)) > c.chunkSize {
			pieces = c.hardSplit(paragraph)
		}

		for _, piece := range pieces {
			if current.Len() == 0 {
				current.WriteString(piece)
				continue
			}

			// 预留段落分隔符的长度
			if len([]rune(current.String()))+2+len([]rune(piece)) <= c.chunkSize {
				current.WriteString("\n\n")
				current.WriteString(piece)
				continue
			}

			chunk := current.String()
			chunks = append(chunks, chunk)
			current.Reset()
			// 重叠尾部加上新段落仍在上限内才保留重叠
			tail := c.overlapTail(chunk)
			if tail != "" && len([]rune(tail))+2+len([]rune(piece)) <= c.chunkSize {
				current.WriteString(tail)
				current.WriteString("\n\n")
			}
			current.WriteString(piece)
		}
	}

	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// hardSplit 把超长段落按 rune 硬切为不超过 chunkSize 的片段
func (c *Chunker) hardSplit(paragraph string) []string {
	runes := []rune(paragraph)
	step := c.chunkSize - c.overlap

	var pieces []string
	for start := 0; start < len(runes); start += step {
		end := start + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		pieces = append(pieces, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return pieces
}

// overlapTail 取片段尾部作为下一片段的重叠前缀
func (c *Chunker) overlapTail(chunk string) string {
	if c.overlap == 0 {
		return ""
	}
	runes := []rune(chunk)
	if len(runes) <= c.overlap {
		return chunk
	}
	return string(runes[len(runes)-c.overlap:])
}

// splitParagraphs 按空行拆分段落并去除空段
func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var paragraphs []string
	for _, paragraph := range strings.Split(text, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph != "" {
			paragraphs = append(paragraphs, paragraph)
		}
	}
	return paragraphs
}
