package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/consto/backend/internal/application/ingestion"
	"github.com/consto/backend/internal/infrastructure/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubExtractor 只认文本格式的提取桩
type stubExtractor struct{}

func (stubExtractor) Extract(_ string, data []byte) (string, error) {
	return string(data), nil
}

func (stubExtractor) Supports(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".txt" || ext == ".md" || ext == ".pdf"
}

// stubIndex 记录写入的索引桩
type stubIndex struct {
	sources []string
}

func (i *stubIndex) UpsertChunks(_ context.Context, source string, _ []string) error {
	i.sources = append(i.sources, source)
	return nil
}

// setupDocumentRouter 创建测试路由
func setupDocumentRouter(t *testing.T, index *stubIndex) *gin.Engine {
	t.Helper()

	store, err := storage.NewDocumentStore(t.TempDir())
	require.NoError(t, err)

	service := ingestion.NewService(stubExtractor{}, index, store, nil, 1500, 100)

	router := gin.New()
	handler := NewDocumentHandler(service, store)
	router.POST("/api/documents", handler.Upload)
	router.GET("/api/documents/:fileName", handler.Download)
	return router
}

// multipartBody 构造带单个文件字段的 multipart 请求体
func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestDocumentHandler_Upload(t *testing.T) {
	t.Run("上传后入库并可下载", func(t *testing.T) {
		index := &stubIndex{}
		router := setupDocumentRouter(t, index)

		body, contentType := multipartBody(t, "file", "lease.txt", "Tenants must not sublet.")
		req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"lease.txt"}, index.sources)

		// 原始文件可按引用标记取回
		req = httptest.NewRequest(http.MethodGet, "/api/documents/lease.txt", nil)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Tenants must not sublet.", w.Body.String())
	})

	t.Run("缺少 file 字段返回 400", func(t *testing.T) {
		router := setupDocumentRouter(t, &stubIndex{})

		body, contentType := multipartBody(t, "wrong_field", "lease.txt", "x")
		req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var errBody map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errBody))
		assert.Equal(t, `"file" field not found in form data.`, errBody["error"])
	})

	t.Run("不支持的格式返回 400", func(t *testing.T) {
		router := setupDocumentRouter(t, &stubIndex{})

		body, contentType := multipartBody(t, "file", "photo.png", "x")
		req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDocumentHandler_Download_NotFound(t *testing.T) {
	router := setupDocumentRouter(t, &stubIndex{})

	req := httptest.NewRequest(http.MethodGet, "/api/documents/missing.pdf", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var errBody map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errBody))
	assert.Equal(t, "Document not found", errBody["error"])
}
