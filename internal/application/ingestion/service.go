package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	domainChat "github.com/consto/backend/internal/domain/chat"
	"github.com/consto/backend/internal/infrastructure/log"
	"github.com/consto/backend/internal/infrastructure/tokenizer"
)

// TextExtractor 从原始文档字节中提取纯文本
type TextExtractor interface {
	Extract(name string, data []byte) (string, error)
	// Supports 报告是否支持该文件名的格式
	Supports(name string) bool
}

// DocumentIndex 向量索引写入口
type DocumentIndex interface {
	// UpsertChunks 写入一个文档的全部片段，同名文档的旧片段被替换
	UpsertChunks(ctx context.Context, source string, chunks []string) error
}

// Notifier 文档入库完成事件通知
type Notifier interface {
	NotifyDocumentIngested(name string, chunks int)
}

// Service 文档入库服务
// 流水线：提取文本 -> 切分 -> 向量索引 -> 原始文件留存 -> 事件通知
type Service struct {
	extractor TextExtractor
	index     DocumentIndex
	store     domainChat.DocumentStore
	notifier  Notifier
	chunker   *Chunker
	logger    *slog.Logger
}

// NewService 创建入库服务
// notifier 可以为 nil，此时跳过事件通知
func NewService(
	extractor TextExtractor,
	index DocumentIndex,
	store domainChat.DocumentStore,
	notifier Notifier,
	chunkSize, chunkOverlap int,
) *Service {
	return &Service{
		extractor: extractor,
		index:     index,
		store:     store,
		notifier:  notifier,
		chunker:   NewChunker(chunkSize, chunkOverlap),
		logger:    log.NewModuleLogger("application", "ingestion"),
	}
}

// IngestFile 入库一份文档
// 文档名既是存储键也是检索引用标记，目录部分会被剥掉；
// 原始文件在索引成功后留存，供引用跳转时下载原文
func (s *Service) IngestFile(ctx context.Context, name, contentType string, data []byte) error {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return fmt.Errorf("%w: file name must not be empty", domainChat.ErrInvalidRequest)
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: file content must not be empty", domainChat.ErrInvalidRequest)
	}
	if !s.extractor.Supports(name) {
		return fmt.Errorf("%w: unsupported file type: %s", domainChat.ErrInvalidRequest, name)
	}

	text, err := s.extractor.Extract(name, data)
	if err != nil {
		return fmt.Errorf("failed to extract text from %s: %w", name, err)
	}

	chunks := s.chunker.Split(text)
	if len(chunks) == 0 {
		return fmt.Errorf("%w: document %s contains no extractable text", domainChat.ErrInvalidRequest, name)
	}

	if estimator, err := tokenizer.GetEstimator(); err == nil {
		s.logger.Debug("document chunked",
			"name", name,
			"chunks", len(chunks),
			"tokens", estimator.CountTokensBatch(chunks),
		)
	}

	if err := s.index.UpsertChunks(ctx, name, chunks); err != nil {
		return fmt.Errorf("failed to index document %s: %w", name, err)
	}

	if err := s.store.Save(name, contentType, data); err != nil {
		return fmt.Errorf("failed to store document %s: %w", name, err)
	}

	s.logger.Info("document ingested", "name", name, "chunks", len(chunks))
	if s.notifier != nil {
		s.notifier.NotifyDocumentIngested(name, len(chunks))
	}
	return nil
}

// IngestPath 从磁盘路径入库一份文档
// 供目录监听器在文件落盘后调用
func (s *Service) IngestPath(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return s.IngestFile(ctx, filepath.Base(path), "", data)
}

// Supports 报告文件名是否属于可入库格式
func (s *Service) Supports(name string) bool {
	return s.extractor.Supports(name)
}
