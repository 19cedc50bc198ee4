// Package config は通知サービスの設定を環境変数から読み込む。
//
// 設定はプロセス起動時に一度だけ読み込み、Config構造体として
// 各コンポーネントのコンストラクタに渡す。実行中の再読み込みは行わない。
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultPort はPORT未設定時のリッスンポート。
	DefaultPort = "8084"
	// DefaultServiceAPIKey はSERVICE_API_KEY未設定時の共有シークレット。
	// 既知の弱い値であり、本番環境では必ず上書きすること。
	DefaultServiceAPIKey = "banking-shared-key"
	// DefaultServiceName はヘルスチェックの応答に含めるサービス名。
	DefaultServiceName = "notification-service"
)

// データベースドライバの種類。
const (
	// DriverPostgres はPostgreSQL（pgx）を表す。
	DriverPostgres = "postgres"
	// DriverSQLite はSQLite（modernc.org/sqlite）を表す。ローカル開発とテストで使用する。
	DriverSQLite = "sqlite"
)

// DBConfig はデータベース接続設定。
type DBConfig struct {
	// Driver は使用するデータベースドライバ（postgres / sqlite）。
	Driver string
	// Host はデータベースのホスト名。
	Host string
	// Port はデータベースのポート番号。
	Port int
	// User は接続ユーザー名。
	User string
	// Password は接続パスワード。
	Password string
	// Name はデータベース名。SQLiteの場合はファイルパス。
	Name string
	// SSLMode はPostgreSQLのsslmode。
	SSLMode string
	// MaxOpenConns はコネクションプールの最大接続数。
	MaxOpenConns int
	// ConnMaxIdleTime はアイドル接続の最大保持時間。
	ConnMaxIdleTime time.Duration
}

// Config は通知サービス全体の設定。
type Config struct {
	// Port はHTTPサーバーのリッスンポート。
	Port string
	// ServiceName はヘルスチェックで返すサービス名。
	ServiceName string
	// ServiceAPIKey はサービス間通信用の共有シークレット。
	ServiceAPIKey string
	// AllowedOrigins はCORSで許可するオリジン。
	AllowedOrigins []string
	// AllowedHeaders はCORSのプリフライトで許可するリクエストヘッダー。
	AllowedHeaders []string
	// ExposeErrorDetail がtrueの場合、DBエラーの本文をそのままクライアントへ返す。
	ExposeErrorDetail bool
	// LogLevel はログ出力レベル（debug / info / warn / error）。
	LogLevel string
	// DB はデータベース接続設定。
	DB DBConfig
}

// Load は環境変数から設定を読み込む。
// 数値や期間の形式が不正な場合、未対応のドライバが指定された場合はエラーを返す。
func Load() (*Config, error) {
	dbPort, err := intEnv("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	maxOpen, err := intEnv("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return nil, err
	}
	idle, err := durationEnv("DB_CONN_MAX_IDLE", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	expose, err := boolEnv("EXPOSE_ERROR_DETAIL", true)
	if err != nil {
		return nil, err
	}

	driver := strings.ToLower(stringEnv("DB_DRIVER", DriverPostgres))
	switch driver {
	case DriverPostgres, "postgresql":
		driver = DriverPostgres
	case DriverSQLite:
	default:
		return nil, fmt.Errorf("未対応のDB_DRIVERです: %s", driver)
	}

	allowedHeaders := listEnv("CORS_ALLOWED_HEADERS")
	if len(allowedHeaders) == 0 {
		allowedHeaders = DefaultAllowedHeaders()
	}

	dbName := os.Getenv("DB_NAME")
	if dbName == "" && driver == DriverSQLite {
		dbName = "notification.db"
	}

	return &Config{
		Port:              stringEnv("PORT", DefaultPort),
		ServiceName:       stringEnv("SERVICE_NAME", DefaultServiceName),
		ServiceAPIKey:     stringEnv("SERVICE_API_KEY", DefaultServiceAPIKey),
		AllowedOrigins:    listEnv("CORS_ALLOWED_ORIGINS"),
		AllowedHeaders:    allowedHeaders,
		ExposeErrorDetail: expose,
		LogLevel:          stringEnv("LOG_LEVEL", "info"),
		DB: DBConfig{
			Driver:          driver,
			Host:            stringEnv("DB_HOST", "localhost"),
			Port:            dbPort,
			User:            os.Getenv("DB_USER"),
			Password:        os.Getenv("DB_PASSWORD"),
			Name:            dbName,
			SSLMode:         stringEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    maxOpen,
			ConnMaxIdleTime: idle,
		},
	}, nil
}

// DefaultAllowedHeaders はCORS_ALLOWED_HEADERS未設定時に許可するヘッダー。
// サービス間APIの共有シークレットとリクエストIDを含む。
func DefaultAllowedHeaders() []string {
	return []string{"Content-Type", "X-API-Key", "X-Request-ID"}
}

// UsesDefaultAPIKey は共有シークレットが既定値のままかどうかを返す。
func (c *Config) UsesDefaultAPIKey() bool {
	return c.ServiceAPIKey == DefaultServiceAPIKey
}

func stringEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%sの値が不正です: %w", key, err)
	}
	return n, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%sの値が不正です: %w", key, err)
	}
	return d, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%sの値が不正です: %w", key, err)
	}
	return b, nil
}

// listEnv はカンマ区切りの環境変数を空要素を除いたスライスとして返す。
func listEnv(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
