// Package notification は通知サービスの内部実装を提供する。
//
// 通知はnotificationsテーブルの1行であり、実際の配信は行わない。
// サービス間API（共有シークレット必須）と直接APIの2つの作成経路、
// 一覧取得、ステータス更新、削除、ヘルスチェックを提供する。
package notification
