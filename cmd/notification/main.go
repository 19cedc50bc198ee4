// 通知サービスのエントリポイント。
// バンキングシステムの他サービスから通知を受け付け、PostgreSQLに保存する。
// 配信そのものは行わず、保存された通知のステータス更新で配信結果を管理する。
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nao1215/notification/internal/config"
	"github.com/nao1215/notification/internal/logger"
	"github.com/nao1215/notification/internal/notification"
	"github.com/nao1215/notification/pkg/database"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "通知サービスの起動に失敗: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .envが無い環境（コンテナなど）では環境変数のみを使う
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	l := logger.New(cfg.LogLevel)
	slog.SetDefault(l)
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		l.Warn(".envの読み込みに失敗", slog.Any("error", envErr))
	}
	if cfg.UsesDefaultAPIKey() {
		l.Warn("SERVICE_API_KEYが既定値のままです。本番環境では必ず変更してください")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := notification.EnsureSchema(ctx, db); err != nil {
		return err
	}

	server := notification.NewServer(cfg, db, l)
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		l.Info("通知サービスを起動します", slog.String("addr", httpServer.Addr), slog.String("db_driver", cfg.DB.Driver))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTPサーバーが異常終了: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	l.Info("通知サービスを停止します")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("グレースフルシャットダウンに失敗: %w", err)
	}
	l.Info("通知サービスを停止しました")
	return nil
}
