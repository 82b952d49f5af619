package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// serviceUnavailableMessage 流开始前的内部错误统一对外文案
// 不向客户端暴露后端细节
const serviceUnavailableMessage = "Service temporarily unavailable. Please try again later."

// ErrorBody 错误响应体
type ErrorBody struct {
	Error string `json:"error"`
}

// BadRequest 请求非法
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorBody{Error: message})
}

// NotFound 资源不存在
func NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, ErrorBody{Error: message})
}

// ServiceUnavailable 下游服务不可用
func ServiceUnavailable(c *gin.Context) {
	c.JSON(http.StatusServiceUnavailable, ErrorBody{Error: serviceUnavailableMessage})
}
