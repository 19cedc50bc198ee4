// Package database はリレーショナルデータベースへのコネクションプールを生成する。
//
// 本番環境ではPostgreSQL（pgx）、ローカル開発とテストではSQLiteを使用する。
// SQL文は "?" プレースホルダで記述し、sqlx.DB.Rebind でドライバ固有の形式に変換する。
package database

import (
	"context"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nao1215/notification/internal/config"
)

// database/sqlに登録されているドライバ名。
const (
	driverNamePgx    = "pgx"
	driverNameSQLite = "sqlite"
)

func init() {
	// sqlxは "sqlite" というドライバ名を知らないため明示的に登録する。
	sqlx.BindDriver(driverNameSQLite, sqlx.QUESTION)
}

// Open は設定に従ってコネクションプールを生成し、疎通確認を行う。
func Open(ctx context.Context, cfg config.DBConfig) (*sqlx.DB, error) {
	driverName, dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	pool := poolSettingsFor(driverName, cfg)
	if pool.maxOpenConns > 0 {
		db.SetMaxOpenConns(pool.maxOpenConns)
	}
	if pool.connMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(pool.connMaxIdleTime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("データベースへの疎通確認に失敗: %w", err)
	}
	return db, nil
}

// poolSettings はコネクションプールに適用する値。0は未設定を表す。
type poolSettings struct {
	maxOpenConns    int
	connMaxIdleTime time.Duration
}

// poolSettingsFor はドライバに応じたプール設定を決める。
// SQLiteは書き込みが単一接続に限られ、:memory: は接続ごとに別DBになるため1本に固定する。
// その1本がアイドル時間で破棄されるとインメモリDBが消えるので、アイドル時間も設定しない。
func poolSettingsFor(driverName string, cfg config.DBConfig) poolSettings {
	if driverName == driverNameSQLite {
		return poolSettings{maxOpenConns: 1}
	}
	return poolSettings{
		maxOpenConns:    cfg.MaxOpenConns,
		connMaxIdleTime: cfg.ConnMaxIdleTime,
	}
}

// DSN はdatabase/sqlのドライバ名と接続文字列を返す。
func DSN(cfg config.DBConfig) (string, string, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		sslMode := cfg.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, sslMode)
		return driverNamePgx, dsn, nil
	case config.DriverSQLite:
		if cfg.Name == "" {
			return "", "", fmt.Errorf("SQLiteのデータベースパスが必要です")
		}
		return driverNameSQLite, cfg.Name, nil
	default:
		return "", "", fmt.Errorf("未対応のデータベースドライバです: %s", cfg.Driver)
	}
}

// IsSQLite はプールがSQLiteドライバで開かれているかを返す。
func IsSQLite(db *sqlx.DB) bool {
	return db.DriverName() == driverNameSQLite
}
