package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// contextKeyToken はGinコンテキストにBearerトークンを格納するキー。
const contextKeyToken = "bearer_token"

// BearerToken はAuthorizationヘッダーからBearerトークンを取り出すGinミドルウェアを返す。
// ヘッダーが無い、または形式が不正な場合は401で中断する。
// トークンが有効かどうかはここでは判定せず、後続のハンドラに任せる。
func BearerToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, token, found := strings.Cut(c.GetHeader("Authorization"), " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "Not authenticated",
			})
			return
		}

		c.Set(contextKeyToken, strings.TrimSpace(token))
		c.Next()
	}
}

// GetToken はGinコンテキストからBearerトークンを取得する。
// BearerTokenミドルウェアが事前に適用されている必要がある。
func GetToken(c *gin.Context) string {
	token, _ := c.Get(contextKeyToken)
	if s, ok := token.(string); ok {
		return s
	}
	return ""
}
