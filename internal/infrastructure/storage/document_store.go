package storage

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	domainChat "github.com/consto/backend/internal/domain/chat"
)

// documentStore 原始文档的本地文件存储
// 每个文档一个文件，文档名即文件名；内容类型无法从
// 扩展名推断时写入同名 sidecar 文件
type documentStore struct {
	dir string
}

// NewDocumentStore 创建本地文档存储
func NewDocumentStore(dir string) (domainChat.DocumentStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("document storage directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create document storage directory: %w", err)
	}
	return &documentStore{dir: dir}, nil
}

// Save 保存原始文档
func (s *documentStore) Save(name, contentType string, data []byte) error {
	name = filepath.Base(name)
	if name == "" || name == "." {
		return fmt.Errorf("document name must not be empty")
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write document %s: %w", name, err)
	}

	// 扩展名推断不出来的内容类型记到 sidecar 里
	if contentType != "" && mime.TypeByExtension(filepath.Ext(name)) == "" {
		if err := os.WriteFile(path+".contenttype", []byte(contentType), 0644); err != nil {
			return fmt.Errorf("failed to write content type for %s: %w", name, err)
		}
	}
	return nil
}

// Load 读取原始文档及其内容类型
func (s *documentStore) Load(name string) ([]byte, string, error) {
	name = filepath.Base(name)
	if name == "" || name == "." || strings.HasSuffix(name, ".contenttype") {
		return nil, "", domainChat.ErrDocumentNotFound
	}

	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, "", domainChat.ErrDocumentNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to read document %s: %w", name, err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		if sidecar, err := os.ReadFile(path + ".contenttype"); err == nil {
			contentType = strings.TrimSpace(string(sidecar))
		}
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return data, contentType, nil
}
