package storage

import (
	"testing"

	domainChat "github.com/consto/backend/internal/domain/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentStore(t *testing.T) {
	store, err := NewDocumentStore(t.TempDir())
	require.NoError(t, err)

	t.Run("保存后可读回", func(t *testing.T) {
		require.NoError(t, store.Save("lease.pdf", "application/pdf", []byte("%PDF-1.4")))

		data, contentType, err := store.Load("lease.pdf")
		require.NoError(t, err)
		assert.Equal(t, []byte("%PDF-1.4"), data)
		assert.Equal(t, "application/pdf", contentType)
	})

	t.Run("不存在的文档返回领域错误", func(t *testing.T) {
		_, _, err := store.Load("missing.pdf")
		assert.ErrorIs(t, err, domainChat.ErrDocumentNotFound)
	})

	t.Run("路径穿越被剥掉", func(t *testing.T) {
		require.NoError(t, store.Save("../../escape.txt", "", []byte("x")))

		data, _, err := store.Load("escape.txt")
		require.NoError(t, err)
		assert.Equal(t, []byte("x"), data)

		_, _, err = store.Load("../escape.txt")
		require.NoError(t, err) // Base 剥掉目录后等价于 escape.txt
	})

	t.Run("未知扩展名回退 sidecar 内容类型", func(t *testing.T) {
		require.NoError(t, store.Save("notes.custom", "application/x-notes", []byte("n")))

		_, contentType, err := store.Load("notes.custom")
		require.NoError(t, err)
		assert.Equal(t, "application/x-notes", contentType)
	})
}
