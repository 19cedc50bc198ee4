package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HeaderAPIKey はサービス間通信で共有シークレットを渡すHTTPヘッダーキー。
const HeaderAPIKey = "X-API-Key"

// MsgUnauthorizedService は共有シークレットの検証に失敗した際のエラーメッセージ。
const MsgUnauthorizedService = "❌ Unauthorized service request"

// ServiceAuth は共有シークレットを検証するGinミドルウェアを返す。
// ヘッダーが無い、または値が一致しない場合は403で処理を打ち切る。
// 呼び出し元の識別や有効期限は扱わない。
func ServiceAuth(secret string) gin.HandlerFunc {
	expected := []byte(secret)
	return func(c *gin.Context) {
		key := c.GetHeader(HeaderAPIKey)
		if key == "" || subtle.ConstantTimeCompare([]byte(key), expected) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": MsgUnauthorizedService,
			})
			return
		}
		c.Next()
	}
}
