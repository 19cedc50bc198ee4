// Package httpclient は通知サービスを呼び出すためのHTTPクライアントを提供する。
//
// 口座サービスや取引サービスなど他のバンキングサービスが、
// 共有シークレット付きで POST /notify を呼び出す際に使用する。
// リクエストIDはコンテキスト経由で X-Request-ID ヘッダーに伝播する。
package httpclient
