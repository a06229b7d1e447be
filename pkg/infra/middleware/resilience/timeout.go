package resilience

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/ISHANT57/Gita-Chatbot/pkg/infra/middleware/internal/pathutil"
	mwopts "github.com/ISHANT57/Gita-Chatbot/pkg/options/middleware"
	"github.com/ISHANT57/Gita-Chatbot/pkg/utils/errors"
	"github.com/ISHANT57/Gita-Chatbot/pkg/utils/response"
)

// defaultTimeout 是未配置时的请求超时时间。
const defaultTimeout = 30 * time.Second

// Timeout returns a middleware that limits request processing time.
func Timeout(timeout time.Duration) gin.HandlerFunc {
	return TimeoutWithOptions(mwopts.TimeoutOptions{Timeout: timeout})
}

// TimeoutWithOptions 返回一个使用纯配置选项的 Timeout 中间件。
// 这是推荐的 API，适用于配置中心场景（配置必须可序列化）。
//
// 超时后会向客户端返回 408 响应，处理器收到的 request context
// 会被取消，下游代码应尊重该取消信号尽快退出。
func TimeoutWithOptions(opts mwopts.TimeoutOptions) gin.HandlerFunc {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	pathMatcher := pathutil.NewPathMatcher(opts.SkipPaths, nil)

	return func(c *gin.Context) {
		if pathMatcher(c.Request.URL.Path) {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), opts.Timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)

		// 缓冲通道保证 handler goroutine 在超时路径下也能退出
		done := make(chan struct{}, 1)

		go func() {
			defer func() {
				if r := recover(); r != nil {
					logPanic(r, c.Request.URL.Path)
				}
				done <- struct{}{}
			}()
			c.Next()
		}()

		select {
		case <-done:
			// 处理器正常完成；若因 context 取消而提前返回，
			// 仍需向客户端回写超时响应
			if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
				response.Fail(c, errors.ErrRequestTimeout)
			}
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
				c.Abort()
				response.Fail(c, errors.ErrRequestTimeout)
			}
		}
	}
}

// logPanic logs panic information with stack trace for debugging.
func logPanic(r interface{}, path string) {
	stack := debug.Stack()
	logger.Errorw("panic recovered in timeout middleware",
		"panic", fmt.Sprintf("%v", r),
		"path", path,
		"stack", string(stack),
	)
}
