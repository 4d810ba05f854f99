package middleware

import (
	"time"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"
)

// LoggingMiddleware logs every request with method, path, status and
// latency.
func LoggingMiddleware() ginext.HandlerFunc {
	return func(ctx *ginext.Context) {
		start := time.Now()
		path := ctx.Request.URL.Path

		ctx.Next()

		zlog.Logger.Info().
			Str("method", ctx.Request.Method).
			Str("path", path).
			Int("status", ctx.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request handled")
	}
}
