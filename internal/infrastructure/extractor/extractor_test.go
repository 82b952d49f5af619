package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_Supports(t *testing.T) {
	extractor := NewExtractor()

	assert.True(t, extractor.Supports("lease.pdf"))
	assert.True(t, extractor.Supports("notes.TXT"))
	assert.True(t, extractor.Supports("README.md"))
	assert.False(t, extractor.Supports("photo.png"))
	assert.False(t, extractor.Supports("archive.zip"))
	assert.False(t, extractor.Supports("noext"))
}

func TestExtractor_Extract(t *testing.T) {
	extractor := NewExtractor()

	t.Run("纯文本透传", func(t *testing.T) {
		text, err := extractor.Extract("notes.txt", []byte("Tenants must not sublet."))
		require.NoError(t, err)
		assert.Equal(t, "Tenants must not sublet.", text)
	})

	t.Run("markdown 透传", func(t *testing.T) {
		text, err := extractor.Extract("faq.md", []byte("# FAQ\n\nNo pets."))
		require.NoError(t, err)
		assert.Equal(t, "# FAQ\n\nNo pets.", text)
	})

	t.Run("非 UTF-8 文本拒绝", func(t *testing.T) {
		_, err := extractor.Extract("bad.txt", []byte{0xff, 0xfe, 0xfd})
		require.Error(t, err)
	})

	t.Run("损坏的 PDF 报错", func(t *testing.T) {
		_, err := extractor.Extract("broken.pdf", []byte("not a pdf"))
		require.Error(t, err)
	})

	t.Run("不支持的格式报错", func(t *testing.T) {
		_, err := extractor.Extract("photo.png", []byte("x"))
		require.Error(t, err)
	})
}
