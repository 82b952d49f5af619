package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/consto/backend/internal/application/ingestion"
	domainChat "github.com/consto/backend/internal/domain/chat"
	"github.com/consto/backend/internal/infrastructure/log"
	"github.com/consto/backend/internal/interfaces/http/response"
	"github.com/gin-gonic/gin"
)

// maxUploadSize 上传文件大小上限
const maxUploadSize = 32 << 20 // 32 MiB

// DocumentHandler 文档处理器
type DocumentHandler struct {
	ingestion *ingestion.Service
	store     domainChat.DocumentStore
	logger    *slog.Logger
}

// NewDocumentHandler 创建文档处理器
func NewDocumentHandler(ingestionService *ingestion.Service, store domainChat.DocumentStore) *DocumentHandler {
	return &DocumentHandler{
		ingestion: ingestionService,
		store:     store,
		logger:    log.NewModuleLogger("http", "document_handler"),
	}
}

// UploadResponse 上传响应
type UploadResponse struct {
	Message string `json:"message"`
}

// Upload 上传并入库文档
// @Summary 上传文档
// @Description 上传 pdf/txt/md 文档并写入知识库
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "文档文件"
// @Success 200 {object} UploadResponse
// @Failure 400 {object} response.ErrorBody
// @Failure 503 {object} response.ErrorBody
// @Router /documents [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, `"file" field not found in form data.`)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("failed to open uploaded file", "error", err)
		response.ServiceUnavailable(c)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("failed to read uploaded file", "error", err)
		response.ServiceUnavailable(c)
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if err := h.ingestion.IngestFile(c.Request.Context(), fileHeader.Filename, contentType, data); err != nil {
		if errors.Is(err, domainChat.ErrInvalidRequest) {
			response.BadRequest(c, err.Error())
			return
		}
		h.logger.Error("failed to ingest document",
			"name", fileHeader.Filename, "error", err)
		response.ServiceUnavailable(c)
		return
	}

	c.JSON(http.StatusOK, UploadResponse{
		Message: "PDF file uploaded successfully.",
	})
}

// Download 下载原始文档
// @Summary 下载文档
// @Description 按文件名取回入库时的原始文档（引用跳转）
// @Tags documents
// @Produce octet-stream
// @Param fileName path string true "文件名"
// @Success 200 {file} binary
// @Failure 404 {object} response.ErrorBody
// @Router /documents/{fileName} [get]
func (h *DocumentHandler) Download(c *gin.Context) {
	name := c.Param("fileName")

	data, contentType, err := h.store.Load(name)
	if err != nil {
		if errors.Is(err, domainChat.ErrDocumentNotFound) {
			response.NotFound(c, "Document not found")
			return
		}
		h.logger.Error("failed to load document", "name", name, "error", err)
		response.ServiceUnavailable(c)
		return
	}

	c.Data(http.StatusOK, contentType, data)
}
