package chat

import "errors"

// 领域错误
// HTTP 层据此映射状态码：ErrInvalidRequest -> 400，Not Found -> 404
// 其余流开始前的错误统一映射为 503
var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrSessionNotFound  = errors.New("session not found")
	ErrDocumentNotFound = errors.New("document not found")
)
