package notification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nao1215/notification/internal/metrics"
)

// ErrNotFound は更新・削除対象の通知が存在しないことを表す。
var ErrNotFound = errors.New("notification not found")

// 既定の配信チャネルとステータス。
const (
	DefaultChannel = "email"
	DefaultStatus  = "pending"
)

// Notification はnotificationsテーブルの1行を表す。
type Notification struct {
	// ID は自動採番される通知の一意識別子。
	ID int64 `db:"notification_id" json:"notification_id"`
	// AccountID は通知先の口座ID。口座の存在確認は行わない。
	AccountID int64 `db:"account_id" json:"account_id"`
	// Message は通知メッセージ。
	Message string `db:"message" json:"message"`
	// Channel は配信チャネル（email など）。
	Channel string `db:"channel" json:"channel"`
	// Status は通知のステータス（pending / sent / failed など）。
	Status string `db:"status" json:"status"`
}

// CreateParams は通知作成時の入力。
type CreateParams struct {
	AccountID int64
	Message   string
	Channel   string
	Status    string
}

// withDefaults はChannelとStatusが空の場合に既定値を補う。
func (p CreateParams) withDefaults() CreateParams {
	if p.Channel == "" {
		p.Channel = DefaultChannel
	}
	if p.Status == "" {
		p.Status = DefaultStatus
	}
	return p
}

const notificationColumns = "notification_id, account_id, message, channel, status"

// SQL文は "?" プレースホルダで記述し、実行時にドライバの形式へRebindする。
const (
	insertNotificationSQL = `INSERT INTO notifications (account_id, message, channel, status)
		VALUES (?, ?, ?, ?) RETURNING ` + notificationColumns
	listNotificationsSQL  = `SELECT ` + notificationColumns + ` FROM notifications ORDER BY notification_id DESC`
	updateStatusSQL       = `UPDATE notifications SET status = ? WHERE notification_id = ? RETURNING ` + notificationColumns
	deleteNotificationSQL = `DELETE FROM notifications WHERE notification_id = ? RETURNING notification_id`
	currentTimeSQL        = `SELECT CURRENT_TIMESTAMP`
)

// Store はnotificationsテーブルへのパラメータ化SQLを実行する。
// トランザクションやリトライは行わず、エラーはそのまま呼び出し元へ返す。
type Store struct {
	db *sqlx.DB
}

// NewStore は新しいStoreを生成する。
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Create は通知を挿入し、採番されたIDを含む行を返す。
func (s *Store) Create(ctx context.Context, p CreateParams) (Notification, error) {
	p = p.withDefaults()
	query := s.db.Rebind(insertNotificationSQL)

	var n Notification
	err := s.observe("create", func() error {
		return s.db.QueryRowxContext(ctx, query, p.AccountID, p.Message, p.Channel, p.Status).StructScan(&n)
	})
	if err != nil {
		return Notification{}, err
	}
	return n, nil
}

// List は全ての通知をIDの降順で返す。通知が無い場合は空スライスを返す。
func (s *Store) List(ctx context.Context) ([]Notification, error) {
	notifications := make([]Notification, 0)
	err := s.observe("list", func() error {
		return s.db.SelectContext(ctx, &notifications, listNotificationsSQL)
	})
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

// UpdateStatus は指定IDの通知のステータスのみを更新し、更新後の行を返す。
func (s *Store) UpdateStatus(ctx context.Context, id int64, status string) (Notification, error) {
	query := s.db.Rebind(updateStatusSQL)

	var n Notification
	err := s.observe("update_status", func() error {
		return s.db.QueryRowxContext(ctx, query, status, id).StructScan(&n)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return Notification{}, ErrNotFound
	}
	if err != nil {
		return Notification{}, err
	}
	return n, nil
}

// Delete は指定IDの通知を削除する。
func (s *Store) Delete(ctx context.Context, id int64) error {
	query := s.db.Rebind(deleteNotificationSQL)

	var deleted int64
	err := s.observe("delete", func() error {
		return s.db.QueryRowxContext(ctx, query, id).Scan(&deleted)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// Now はデータベースの現在時刻を問い合わせる。疎通確認に使う。
func (s *Store) Now(ctx context.Context) (string, error) {
	var now any
	err := s.observe("now", func() error {
		return s.db.QueryRowxContext(ctx, currentTimeSQL).Scan(&now)
	})
	if err != nil {
		return "", err
	}
	return formatDBTime(now), nil
}

// formatDBTime はドライバが返す現在時刻を文字列にする。
// pgxはtime.Time、SQLiteは文字列を返す。
func formatDBTime(v any) string {
	switch t := v.(type) {
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case []byte:
		return string(t)
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

// observe はDB操作を実行し、所要時間をメトリクスに記録する。
func (s *Store) observe(op string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.ObserveQuery(op, time.Since(start).Seconds(), err)
	return err
}
