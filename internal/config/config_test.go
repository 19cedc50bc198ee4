package config

import (
	"slices"
	"testing"
	"time"
)

// clearEnv はテストに影響する環境変数を空にする。
// t.Setenvを使うためこのファイルのテストは並列実行しない。
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "SERVICE_NAME", "SERVICE_API_KEY", "CORS_ALLOWED_ORIGINS", "CORS_ALLOWED_HEADERS",
		"EXPOSE_ERROR_DETAIL", "LOG_LEVEL", "DB_DRIVER", "DB_HOST", "DB_PORT",
		"DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE", "DB_MAX_OPEN_CONNS",
		"DB_CONN_MAX_IDLE",
	} {
		t.Setenv(key, "")
	}
}

// TestLoad はLoad関数を検証する。
func TestLoad(t *testing.T) {
	t.Run("環境変数が未設定の場合は既定値が使われること", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load()でエラーが発生: %v", err)
		}
		if cfg.Port != "8084" {
			t.Errorf("Port = %q, want %q", cfg.Port, "8084")
		}
		if cfg.ServiceAPIKey != "banking-shared-key" {
			t.Errorf("ServiceAPIKey = %q, want %q", cfg.ServiceAPIKey, "banking-shared-key")
		}
		if !cfg.UsesDefaultAPIKey() {
			t.Error("UsesDefaultAPIKey()がtrueを返すべき")
		}
		if cfg.ServiceName != "notification-service" {
			t.Errorf("ServiceName = %q, want %q", cfg.ServiceName, "notification-service")
		}
		if !cfg.ExposeErrorDetail {
			t.Error("ExposeErrorDetailの既定値はtrueであるべき")
		}
		if cfg.DB.Driver != DriverPostgres {
			t.Errorf("DB.Driver = %q, want %q", cfg.DB.Driver, DriverPostgres)
		}
		if cfg.DB.Port != 5432 {
			t.Errorf("DB.Port = %d, want 5432", cfg.DB.Port)
		}
		if cfg.DB.ConnMaxIdleTime != 5*time.Minute {
			t.Errorf("DB.ConnMaxIdleTime = %v, want 5m", cfg.DB.ConnMaxIdleTime)
		}
		if cfg.AllowedOrigins != nil {
			t.Errorf("AllowedOrigins = %v, want nil", cfg.AllowedOrigins)
		}
		if want := []string{"Content-Type", "X-API-Key", "X-Request-ID"}; !slices.Equal(cfg.AllowedHeaders, want) {
			t.Errorf("AllowedHeaders = %v, want %v", cfg.AllowedHeaders, want)
		}
	})

	t.Run("環境変数の値が反映されること", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PORT", "9000")
		t.Setenv("SERVICE_API_KEY", "s3cret")
		t.Setenv("DB_HOST", "db.internal")
		t.Setenv("DB_PORT", "6543")
		t.Setenv("DB_USER", "notifier")
		t.Setenv("DB_PASSWORD", "pw")
		t.Setenv("DB_NAME", "bank")
		t.Setenv("DB_CONN_MAX_IDLE", "30s")
		t.Setenv("EXPOSE_ERROR_DETAIL", "false")
		t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, ,https://example.com")
		t.Setenv("CORS_ALLOWED_HEADERS", "Content-Type, X-API-Key")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load()でエラーが発生: %v", err)
		}
		if cfg.Port != "9000" {
			t.Errorf("Port = %q, want %q", cfg.Port, "9000")
		}
		if cfg.ServiceAPIKey != "s3cret" || cfg.UsesDefaultAPIKey() {
			t.Errorf("ServiceAPIKey = %q, want %q", cfg.ServiceAPIKey, "s3cret")
		}
		if cfg.DB.Host != "db.internal" || cfg.DB.Port != 6543 {
			t.Errorf("DB = %s:%d, want db.internal:6543", cfg.DB.Host, cfg.DB.Port)
		}
		if cfg.DB.User != "notifier" || cfg.DB.Password != "pw" || cfg.DB.Name != "bank" {
			t.Errorf("DB認証情報が反映されていない: %+v", cfg.DB)
		}
		if cfg.DB.ConnMaxIdleTime != 30*time.Second {
			t.Errorf("DB.ConnMaxIdleTime = %v, want 30s", cfg.DB.ConnMaxIdleTime)
		}
		if cfg.ExposeErrorDetail {
			t.Error("ExposeErrorDetailはfalseであるべき")
		}
		if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://example.com" {
			t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
		}
		if want := []string{"Content-Type", "X-API-Key"}; !slices.Equal(cfg.AllowedHeaders, want) {
			t.Errorf("AllowedHeaders = %v, want %v", cfg.AllowedHeaders, want)
		}
	})

	t.Run("SQLiteでDB_NAME未設定の場合は既定のファイル名になること", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DB_DRIVER", "SQLite")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load()でエラーが発生: %v", err)
		}
		if cfg.DB.Driver != DriverSQLite {
			t.Errorf("DB.Driver = %q, want %q", cfg.DB.Driver, DriverSQLite)
		}
		if cfg.DB.Name != "notification.db" {
			t.Errorf("DB.Name = %q, want notification.db", cfg.DB.Name)
		}
	})

	t.Run("postgresqlはpostgresとして扱われること", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DB_DRIVER", "postgresql")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load()でエラーが発生: %v", err)
		}
		if cfg.DB.Driver != DriverPostgres {
			t.Errorf("DB.Driver = %q, want %q", cfg.DB.Driver, DriverPostgres)
		}
	})

	errorCases := []struct {
		name  string
		key   string
		value string
	}{
		{name: "DB_PORTが数値でない場合はエラー", key: "DB_PORT", value: "abc"},
		{name: "DB_MAX_OPEN_CONNSが数値でない場合はエラー", key: "DB_MAX_OPEN_CONNS", value: "many"},
		{name: "DB_CONN_MAX_IDLEが期間でない場合はエラー", key: "DB_CONN_MAX_IDLE", value: "5 minutes"},
		{name: "EXPOSE_ERROR_DETAILが真偽値でない場合はエラー", key: "EXPOSE_ERROR_DETAIL", value: "maybe"},
		{name: "未対応のDB_DRIVERはエラー", key: "DB_DRIVER", value: "oracle"},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)

			if _, err := Load(); err == nil {
				t.Fatalf("Load()がエラーを返すべきだが、nilが返った (%s=%s)", tc.key, tc.value)
			}
		})
	}
}
