package middleware

import (
	"net/http"
	"net/http/pprof"
	"runtime"
	"strings"

	"github.com/gin-gonic/gin"

	mwopts "github.com/ISHANT57/Gita-Chatbot/pkg/options/middleware"
)

// RegisterPprofRoutesWithOptions 注册 Pprof 路由端点。
// 这是推荐的 API，使用纯配置选项。
//
// 示例：
//
//	opts := mwopts.NewPprofOptions()
//	RegisterPprofRoutesWithOptions(engine, *opts)
func RegisterPprofRoutesWithOptions(engine *gin.Engine, opts mwopts.PprofOptions) {
	// Set profiling rates if specified
	if opts.BlockProfileRate > 0 {
		runtime.SetBlockProfileRate(opts.BlockProfileRate)
	}
	if opts.MutexProfileFraction > 0 {
		runtime.SetMutexProfileFraction(opts.MutexProfileFraction)
	}

	prefix := opts.Prefix
	if prefix == "" {
		prefix = "/debug/pprof"
	}
	prefix = strings.TrimSuffix(prefix, "/")

	engine.GET(prefix+"/", wrapPprofHandler(pprof.Index))
	engine.GET(prefix, wrapPprofHandler(pprof.Index))

	if opts.EnableCmdline {
		engine.GET(prefix+"/cmdline", wrapPprofHandler(pprof.Cmdline))
	}
	if opts.EnableProfile {
		engine.GET(prefix+"/profile", wrapPprofHandler(pprof.Profile))
	}
	if opts.EnableSymbol {
		engine.GET(prefix+"/symbol", wrapPprofHandler(pprof.Symbol))
		engine.POST(prefix+"/symbol", wrapPprofHandler(pprof.Symbol))
	}
	if opts.EnableTrace {
		engine.GET(prefix+"/trace", wrapPprofHandler(pprof.Trace))
	}

	// Named profiles served by pprof.Handler
	for _, profile := range []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"} {
		p := profile
		engine.GET(prefix+"/"+p, func(c *gin.Context) {
			pprof.Handler(p).ServeHTTP(c.Writer, c.Request)
		})
	}
}

// wrapPprofHandler 将标准库 pprof 处理函数包装为 gin 处理函数。
func wrapPprofHandler(h func(http.ResponseWriter, *http.Request)) gin.HandlerFunc {
	return func(c *gin.Context) {
		h(c.Writer, c.Request)
	}
}
