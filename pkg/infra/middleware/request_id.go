package middleware

import (
	"crypto/rand"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	"github.com/ISHANT57/Gita-Chatbot/pkg/infra/middleware/common"
	mwopts "github.com/ISHANT57/Gita-Chatbot/pkg/options/middleware"
)

// HeaderXRequestID is re-exported from common for backward compatibility.
const HeaderXRequestID = common.HeaderXRequestID

// ContextKeyRequestID 是 gin context 中存放请求 ID 的键。
const ContextKeyRequestID = "request_id"

// RequestID returns a middleware that adds a unique request ID to each request.
// The request ID is added to:
//   - Response header (X-Request-ID)
//   - Request context (can be retrieved with GetRequestID)
func RequestID() gin.HandlerFunc {
	return RequestIDWithOptions(*mwopts.NewRequestIDOptions())
}

// RequestIDWithOptions 返回一个使用纯配置选项的 RequestID 中间件。
// GeneratorType 支持 "random"/"hex"（加密随机十六进制）和 "ulid"（时间可排序）。
func RequestIDWithOptions(opts mwopts.RequestIDOptions) gin.HandlerFunc {
	header := opts.Header
	if header == "" {
		header = HeaderXRequestID
	}
	generator := generatorFor(opts.GeneratorType)

	return func(c *gin.Context) {
		requestID := c.GetHeader(header)
		if requestID == "" {
			requestID = generator()
		}

		c.Set(ContextKeyRequestID, requestID)
		c.Request = c.Request.WithContext(common.WithRequestID(c.Request.Context(), requestID))
		c.Writer.Header().Set(header, requestID)

		c.Next()
	}
}

// GetRequestID returns the request ID stored in the gin context.
// Returns empty string if not found.
func GetRequestID(c *gin.Context) string {
	if id, ok := c.Get(ContextKeyRequestID); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return common.GetRequestID(c.Request.Context())
}

// generatorFor 根据配置选择 ID 生成器。
func generatorFor(generatorType string) func() string {
	switch generatorType {
	case "ulid":
		return generateULID
	default:
		return common.GenerateRequestID
	}
}

// generateULID 生成 ULID 格式的请求 ID。
// ULID 按时间可排序，适合日志检索场景。
func generateULID() string {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return common.GenerateRequestID()
	}
	return id.String()
}
