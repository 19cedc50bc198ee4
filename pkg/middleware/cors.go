package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// corsAllowedMethods は通知APIが受け付けるメソッド。
const corsAllowedMethods = "GET, POST, PUT, DELETE, OPTIONS"

// corsMaxAge はプリフライト結果をブラウザがキャッシュする秒数。
const corsMaxAge = "86400"

// CORS は許可リストに基づいてクロスオリジンリクエストを制御するGinミドルウェアを返す。
//
// プリフライト（Originと Access-Control-Request-Method を持つOPTIONS）は
// オリジンと要求ヘッダーがすべて許可されていれば204、そうでなければ403で打ち切る。
// 通常のリクエストは許可オリジンの場合のみ Access-Control-Allow-Origin を付けて処理を続ける。
func CORS(allowedOrigins, allowedHeaders []string) gin.HandlerFunc {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}
	headers := make(map[string]struct{}, len(allowedHeaders))
	for _, h := range allowedHeaders {
		headers[http.CanonicalHeaderKey(h)] = struct{}{}
	}
	allowHeaderValue := strings.Join(allowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}
		_, originAllowed := origins[origin]

		if isPreflight(c.Request) {
			if !originAllowed || !requestedHeadersAllowed(c.GetHeader("Access-Control-Request-Headers"), headers) {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			c.Header("Vary", "Origin")
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", corsAllowedMethods)
			c.Header("Access-Control-Allow-Headers", allowHeaderValue)
			c.Header("Access-Control-Max-Age", corsMaxAge)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		if originAllowed {
			c.Header("Vary", "Origin")
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Expose-Headers", HeaderRequestID)
		}
		c.Next()
	}
}

// isPreflight はリクエストがCORSのプリフライトかどうかを返す。
func isPreflight(r *http.Request) bool {
	return r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
}

// requestedHeadersAllowed は Access-Control-Request-Headers の全要素が許可済みかを返す。
func requestedHeadersAllowed(requested string, allowed map[string]struct{}) bool {
	for _, h := range strings.Split(requested, ",") {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if _, ok := allowed[http.CanonicalHeaderKey(h)]; !ok {
			return false
		}
	}
	return true
}
