package ingestion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunker_Split(t *testing.T) {
	t.Run("空文本返回空切片", func(t *testing.T) {
		chunker := NewChunker(1500, 100)

		assert.Empty(t, chunker.Split(""))
		assert.Empty(t, chunker.Split("   \n\n  "))
	})

	t.Run("短文本单片段", func(t *testing.T) {
		chunker := NewChunker(1500, 100)

		chunks := chunker.Split("The deposit is one month of rent.")

		require.Len(t, chunks, 1)
		assert.Equal(t, "The deposit is one month of rent.", chunks[0])
	})

	t.Run("每个片段不超过上限", func(t *testing.T) {
		chunker := NewChunker(100, 20)
		text := strings.Repeat("Tenants must keep the apartment clean. ", 50)

		for _, chunk := range chunker.Split(text) {
			assert.LessOrEqual(t, len([]rune(chunk)), 100)
		}
	})

	t.Run("段落边界优先", func(t *testing.T) {
		chunker := NewChunker(50, 10)
		text := "First paragraph about pets.\n\nSecond paragraph about noise.\n\nThird paragraph about parking."

		chunks := chunker.Split(text)

		require.Greater(t, len(chunks), 1)
		assert.Contains(t, chunks[0], "First paragraph about pets.")
	})

	t.Run("相邻片段保留重叠", func(t *testing.T) {
		chunker := NewChunker(80, 15)
		text := strings.Repeat("a", 55) + "\n\n" + strings.Repeat("b", 55)

		chunks := chunker.Split(text)

		require.Len(t, chunks, 2)
		// 第二个片段以第一个片段的尾部开头
		tail := strings.Repeat("a", 15)
		assert.True(t, strings.HasPrefix(chunks[1], tail))
	})

	t.Run("超长段落硬切", func(t *testing.T) {
		chunker := NewChunker(100, 20)
		text := strings.Repeat("x", 350)

		chunks := chunker.Split(text)

		require.Greater(t, len(chunks), 1)
		for _, chunk := range chunks {
			assert.LessOrEqual(t, len([]rune(chunk)), 100)
		}
		// 拼接去重叠后覆盖全文
		assert.True(t, strings.HasPrefix(chunks[0], "x"))
	})

	t.Run("多字节字符按 rune 切分", func(t *testing.T) {
		chunker := NewChunker(50, 10)
		text := strings.Repeat("租", 120)

		for _, chunk := range chunker.Split(text) {
			assert.LessOrEqual(t, len([]rune(chunk)), 50)
			// 不允许切出半个字符
			assert.True(t, strings.HasPrefix(chunk, "租"))
		}
	})

	t.Run("非法参数回退默认值", func(t *testing.T) {
		chunker := NewChunker(0, -1)

		assert.Equal(t, 1500, chunker.chunkSize)
		assert.Equal(t, 100, chunker.overlap)
	})
}
