package notification

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nao1215/notification/internal/config"
	"github.com/nao1215/notification/internal/metrics"
	"github.com/nao1215/notification/pkg/middleware"
)

// レスポンスメッセージ。既存クライアントとの互換のため文言を変えないこと。
const (
	msgRunning          = "✅ Notification Service is running"
	msgCreatedInternal  = "✅ Notification created (inter-service)"
	msgCreated          = "✅ Notification created"
	msgUpdated          = "✅ Notification updated"
	msgDeleted          = "🗑️ Notification deleted successfully"
	msgNotFound         = "Notification not found"
	msgMissingFields    = "Missing required fields"
	msgInvalidAccountID = "Invalid account_id"
	msgInternalError    = "Internal server error"
	msgDBCheckOK        = "✅ DB Connected! Current Time: "
	msgDBCheckFailed    = "❌ DB connection failed: "
	healthStatusUp      = "UP"
	healthStatusDown    = "DOWN"
	dbStateConnected    = "connected"
	dbStateDisconnected = "disconnected"
)

// Server は通知サービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// store は通知テーブルへのアクセスを担う。
	store *Store
	// cfg はプロセス起動時に読み込んだ設定。
	cfg *config.Config
	// logger は構造化ロガー。
	logger *slog.Logger
}

// NewServer は新しい通知サーバーを生成する。
// dbはスキーマ適用済みのコネクションプールであること。
func NewServer(cfg *config.Config, db *sqlx.DB, logger *slog.Logger) *Server {
	router := gin.New()
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.Metrics(metrics.HTTPRequestsTotal, metrics.HTTPRequestDuration))
	router.Use(middleware.CORS(cfg.AllowedOrigins, cfg.AllowedHeaders))
	// promhttpは自前で圧縮するため/metricsは対象外にする
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	s := &Server{
		router: router,
		store:  NewStore(db),
		cfg:    cfg,
		logger: logger.With(slog.String("component", "notification")),
	}
	s.setupRoutes()

	return s
}

// Handler はhttp.Serverに渡すハンドラーを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	// ヘルスチェック
	s.router.GET("/", s.handleLiveness())
	s.router.GET("/health", s.handleReadiness())
	s.router.GET("/db-check", s.handleDBCheck())
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// サービス間API。共有シークレットが必要。
	s.router.POST("/notify", middleware.ServiceAuth(s.cfg.ServiceAPIKey), s.handleCreate(msgCreatedInternal))

	// 直接API。認証なしで同じ書き込みを受け付ける。
	notifications := s.router.Group("/notifications")
	{
		notifications.POST("", s.handleCreate(msgCreated))
		notifications.GET("", s.handleList())
		notifications.PUT("/:id", s.handleUpdateStatus())
		notifications.DELETE("/:id", s.handleDelete())
	}
}

// errInvalidAccountID はaccount_idが整数として解釈できないことを表す。
var errInvalidAccountID = errors.New("account_id must be an integer")

// accountID はJSONの数値と数字文字列の両方を受け付ける口座ID。
// nullと空文字は未指定として0になる。
type accountID int64

// UnmarshalJSON はjson.Unmarshalerを実装する。
func (a *accountID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*a = 0
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return errInvalidAccountID
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*a = 0
			return nil
		}
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return errInvalidAccountID
	}
	*a = accountID(v)
	return nil
}

// createRequest は通知作成リクエストのJSON構造。
type createRequest struct {
	// AccountID は通知先の口座ID。0は未指定として扱う。
	AccountID accountID `json:"account_id" binding:"required"`
	// Message は通知メッセージ。
	Message string `json:"message" binding:"required"`
	// Channel は配信チャネル。省略時はemail。
	Channel string `json:"channel"`
	// Status は初期ステータス。省略時はpending。
	Status string `json:"status"`
}

// updateStatusRequest はステータス更新リクエストのJSON構造。
type updateStatusRequest struct {
	// Status は新しいステータス。
	Status string `json:"status" binding:"required"`
}

// errorDetail はクライアントへ返すDBエラーの文言を決める。
// ExposeErrorDetailが無効な場合はエラー本文を隠す。
func (s *Server) errorDetail(err error) string {
	if !s.cfg.ExposeErrorDetail {
		return msgInternalError
	}
	return err.Error()
}

// errorBody はDBエラーを500レスポンスのボディに変換する。
func (s *Server) errorBody(err error) gin.H {
	return gin.H{"error": s.errorDetail(err)}
}

// parseID はパスパラメータの通知IDを解釈する。整数でない場合はfalseを返す。
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// handleCreate は通知を作成するハンドラ。
// /notify と /notifications の両方で使い、成功時のメッセージだけが異なる。
func (s *Server) handleCreate(successMessage string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			msg := msgMissingFields
			if errors.Is(err, errInvalidAccountID) {
				msg = msgInvalidAccountID
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}

		n, err := s.store.Create(c.Request.Context(), CreateParams{
			AccountID: int64(req.AccountID),
			Message:   req.Message,
			Channel:   req.Channel,
			Status:    req.Status,
		})
		if err != nil {
			s.logger.Error("通知の作成に失敗", slog.Int64("account_id", int64(req.AccountID)), slog.Any("error", err))
			c.JSON(http.StatusInternalServerError, s.errorBody(err))
			return
		}

		s.logger.Info("通知を作成しました", slog.Int64("notification_id", n.ID), slog.String("path", c.FullPath()))
		c.JSON(http.StatusCreated, gin.H{
			"message":      successMessage,
			"notification": n,
		})
	}
}

// handleList は全通知を新しい順に返すハンドラ。
func (s *Server) handleList() gin.HandlerFunc {
	return func(c *gin.Context) {
		notifications, err := s.store.List(c.Request.Context())
		if err != nil {
			s.logger.Error("通知一覧の取得に失敗", slog.Any("error", err))
			c.JSON(http.StatusInternalServerError, s.errorBody(err))
			return
		}

		c.JSON(http.StatusOK, notifications)
	}
}

// handleUpdateStatus は指定された通知のステータスを更新するハンドラ。
func (s *Server) handleUpdateStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"message": msgNotFound})
			return
		}

		// ボディの検証はDBへの問い合わせより先に行う
		var req updateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": msgMissingFields})
			return
		}

		n, err := s.store.UpdateStatus(c.Request.Context(), id, req.Status)
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": msgNotFound})
			return
		}
		if err != nil {
			s.logger.Error("通知の更新に失敗", slog.Int64("notification_id", id), slog.Any("error", err))
			c.JSON(http.StatusInternalServerError, s.errorBody(err))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":      msgUpdated,
			"notification": n,
		})
	}
}

// handleDelete は指定された通知を削除するハンドラ。
func (s *Server) handleDelete() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"message": msgNotFound})
			return
		}

		err := s.store.Delete(c.Request.Context(), id)
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": msgNotFound})
			return
		}
		if err != nil {
			s.logger.Error("通知の削除に失敗", slog.Int64("notification_id", id), slog.Any("error", err))
			c.JSON(http.StatusInternalServerError, s.errorBody(err))
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": msgDeleted})
	}
}

// handleLiveness はI/Oを伴わない死活確認。
func (s *Server) handleLiveness() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, msgRunning)
	}
}

// handleReadiness はDBとの往復で準備状態を確認するハンドラ。
func (s *Server) handleReadiness() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := s.store.Now(c.Request.Context()); err != nil {
			s.logger.Warn("ヘルスチェックでDB疎通に失敗", slog.Any("error", err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"status":  healthStatusDown,
				"service": s.cfg.ServiceName,
				"db":      dbStateDisconnected,
				"error":   s.errorDetail(err),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  healthStatusUp,
			"service": s.cfg.ServiceName,
			"db":      dbStateConnected,
		})
	}
}

// handleDBCheck はDBの現在時刻をプレーンテキストで返す手動確認用ハンドラ。
func (s *Server) handleDBCheck() gin.HandlerFunc {
	return func(c *gin.Context) {
		now, err := s.store.Now(c.Request.Context())
		if err != nil {
			s.logger.Warn("DB疎通確認に失敗", slog.Any("error", err))
			c.String(http.StatusInternalServerError, msgDBCheckFailed+s.errorDetail(err))
			return
		}

		c.String(http.StatusOK, msgDBCheckOK+now)
	}
}
