package notification

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/nao1215/notification/pkg/database"
)

// PostgreSQL用のスキーマ定義。
const postgresSchema = `
CREATE TABLE IF NOT EXISTS notifications (
    -- 通知の一意識別子（自動採番）
    notification_id SERIAL PRIMARY KEY,
    -- 通知先の口座ID
    account_id BIGINT NOT NULL,
    -- 通知メッセージ
    message TEXT NOT NULL,
    -- 配信チャネル
    channel TEXT NOT NULL DEFAULT 'email',
    -- 通知のステータス
    status TEXT NOT NULL DEFAULT 'pending'
);
`

// SQLite用のスキーマ定義。postgresSchema と同期すること。
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS notifications (
    notification_id INTEGER PRIMARY KEY AUTOINCREMENT,
    account_id INTEGER NOT NULL,
    message TEXT NOT NULL,
    channel TEXT NOT NULL DEFAULT 'email',
    status TEXT NOT NULL DEFAULT 'pending'
);
`

// EnsureSchema はnotificationsテーブルが無ければ作成する。
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	schema := postgresSchema
	if database.IsSQLite(db) {
		schema = sqliteSchema
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("スキーマの適用に失敗: %w", err)
	}
	return nil
}
