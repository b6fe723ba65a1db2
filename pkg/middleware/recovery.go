package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

// Recovery はパニックからの回復を行うGinミドルウェアを返す。
// パニック発生時はリクエストIDとスタックトレースをログに出力し、
// {"detail": "Internal server error"} の500を返す。
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			log.Printf("[PANIC] request_id=%s method=%s path=%s: %v\n%s",
				GetRequestID(c), c.Request.Method, c.Request.URL.Path, r, debug.Stack())
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		}()
		c.Next()
	}
}
