// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// サービス間共有シークレットの検証、リクエストID付与、アクセスログ、
// Prometheusメトリクス、パニックリカバリ、CORS設定を含む。
package middleware
