package activity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/activities/internal/config"
	"github.com/nao1215/activities/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server は課外活動登録サービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// service はカタログと認証を扱うサービス。
	service *Service
	// static はフロントエンドの静的ファイル。
	static fs.FS
	// registry はPrometheusメトリクスのレジストリ。
	registry *prometheus.Registry
	// metrics は登録系操作のメトリクス。
	metrics *operationMetrics
	// closer はStoreの後始末。永続化しない場合はnil。
	closer io.Closer
}

// NewServer は設定から新しいサーバーを生成する。
// 課外活動定義の読み込みと、DBPath指定時のSQLite初期化を行う。
func NewServer(ctx context.Context, cfg config.Config) (*Server, error) {
	gin.SetMode(cfg.GinMode)

	seed, err := LoadCatalog(cfg.ActivitiesFile)
	if err != nil {
		return nil, fmt.Errorf("課外活動定義の読み込みに失敗: %w", err)
	}

	static, err := StaticFiles(cfg.StaticDir)
	if err != nil {
		return nil, err
	}

	var (
		store    Store         = NewMemoryStore(seed)
		recorder EventRecorder = NewMemoryEventLog()
		closer   io.Closer
	)
	if cfg.DBPath != "" {
		sqliteStore, err := OpenSQLite(ctx, cfg.DBPath, seed)
		if err != nil {
			return nil, fmt.Errorf("SQLiteストアの初期化に失敗: %w", err)
		}
		store = sqliteStore
		recorder = sqliteStore
		closer = sqliteStore
		log.Printf("SQLiteに名簿を保存します: %s", cfg.DBPath)
	}

	service, err := NewService(ctx, store, WithEventRecorder(recorder))
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.NewHTTPMetrics(registry, "activities").Handler())

	s := &Server{
		router:   router,
		port:     cfg.Port,
		service:  service,
		static:   static,
		registry: registry,
		metrics:  newOperationMetrics(registry),
		closer:   closer,
	}
	s.setupRoutes()

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// Handler はルーティング設定済みのhttp.Handlerを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close はStoreを閉じる。
func (s *Server) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	// フロントエンド
	s.router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusTemporaryRedirect, "/static/index.html")
	})
	s.router.GET("/static/*filepath", s.handleStatic())

	// 課外活動一覧（認証不要）
	s.router.GET("/activities", s.handleListActivities())
	// トークン発行
	s.router.POST("/token", s.handleLogin())

	// 名簿の変更にはBearerトークンが必要
	activities := s.router.Group("/activities/:name")
	activities.Use(middleware.BearerToken())
	{
		activities.POST("/register", s.handleRegister())
		activities.DELETE("/unregister", s.handleUnregister())
		activities.GET("/events", s.handleListEvents())
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "activities"})
	})
	// Prometheusメトリクス
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
}

// handleStatic はフロントエンドの静的ファイルを返すハンドラを返す。
// ディレクトリが指定された場合はindex.htmlを返す。
func (s *Server) handleStatic() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := strings.TrimPrefix(c.Param("filepath"), "/")
		if name == "" || strings.HasSuffix(name, "/") {
			name += "index.html"
		}

		data, err := fs.ReadFile(s.static, name)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Not Found"})
			return
		}

		contentType := mime.TypeByExtension(path.Ext(name))
		if contentType == "" {
			contentType = http.DetectContentType(data)
		}
		c.Data(http.StatusOK, contentType, data)
	}
}

// handleListActivities はカタログ全体を返すハンドラを返す。
func (s *Server) handleListActivities() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, s.service.ListActivities())
	}
}

// handleLogin はフォームのusernameとpasswordを検証してトークンを発行するハンドラを返す。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, ok := c.GetPostForm("username")
		if !ok {
			fieldRequired(c, "username")
			return
		}
		password, ok := c.GetPostForm("password")
		if !ok {
			fieldRequired(c, "password")
			return
		}

		token, err := s.service.Login(c.Request.Context(), username, password)
		s.metrics.observe("login", err)
		if err != nil {
			s.writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"access_token": token,
			"token_type":   "bearer",
		})
	}
}

// handleRegister は生徒を課外活動に登録するハンドラを返す。
func (s *Server) handleRegister() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		email, ok := c.GetQuery("email")
		if !ok {
			fieldRequired(c, "email")
			return
		}

		err := s.service.Register(c.Request.Context(), name, email, middleware.GetToken(c))
		s.metrics.observe("register", err)
		if err != nil {
			s.writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Registered %s for %s", email, name)})
	}
}

// handleUnregister は生徒の課外活動登録を解除するハンドラを返す。
func (s *Server) handleUnregister() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		email, ok := c.GetQuery("email")
		if !ok {
			fieldRequired(c, "email")
			return
		}

		err := s.service.Unregister(c.Request.Context(), name, email, middleware.GetToken(c))
		s.metrics.observe("unregister", err)
		if err != nil {
			s.writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Unregistered %s from %s", email, name)})
	}
}

// handleListEvents は課外活動の監査イベントを返すハンドラを返す。
func (s *Server) handleListEvents() gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := s.service.ActivityEvents(c.Request.Context(), c.Param("name"), middleware.GetToken(c))
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, events)
	}
}

// writeError はサービスのエラーをHTTPステータスとdetailに変換して返す。
func (s *Server) writeError(c *gin.Context, err error) {
	status, detail := errorStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("リクエスト処理エラー: request_id=%s, error=%v", middleware.GetRequestID(c), err)
	}
	c.JSON(status, gin.H{"detail": detail})
}

// errorStatus はエラーに対応するHTTPステータスと、クライアントに返す文言を返す。
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "Activity not found"
	case errors.Is(err, ErrAlreadyRegistered):
		return http.StatusBadRequest, "Student is already registered"
	case errors.Is(err, ErrNotRegistered):
		return http.StatusBadRequest, "Student is not registered"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// fieldRequired は必須パラメータが無い場合の422レスポンスを返す。
func fieldRequired(c *gin.Context, field string) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "field required: " + field})
}
