package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/kubex/internal/apiclient"
	"github.com/hitoshi/kubex/internal/config"
	"github.com/hitoshi/kubex/internal/database"
	"github.com/hitoshi/kubex/internal/handler"
	"github.com/hitoshi/kubex/internal/logger"
	"github.com/hitoshi/kubex/internal/metrics"
	"github.com/hitoshi/kubex/internal/middleware"
	"github.com/hitoshi/kubex/internal/repository"
	"github.com/hitoshi/kubex/internal/security"
	"github.com/hitoshi/kubex/internal/session"
	"github.com/hitoshi/kubex/internal/view"
	"github.com/hitoshi/kubex/internal/wizard"
	"github.com/hitoshi/kubex/internal/worker/cleanup"
)

// errDatabaseRequired はDATABASE_URLが必要なコマンドで未設定の場合のエラー。
var errDatabaseRequired = errors.New("DATABASE_URL is required for this command")

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
		slog.String("api_base_url", cfg.APIBaseURL),
		slog.Bool("database", cfg.UsesDatabase()),
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// sessionStore はセッションの保存先と、そのヘルスチェック・後始末をまとめたもの。
type sessionStore struct {
	repo    repository.SessionRepository
	checker handler.HealthChecker
	close   func() error
}

// openSessionStore はDATABASE_URLが設定されていればPostgreSQL、なければインメモリのストアを開く。
func openSessionStore(cfg *config.Config) (*sessionStore, error) {
	if !cfg.UsesDatabase() {
		slog.Warn("DATABASE_URL is not set, sessions are kept in memory")
		return &sessionStore{
			repo:  repository.NewMemorySessionRepo(),
			close: func() error { return nil },
		}, nil
	}

	db, err := openDatabase(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return &sessionStore{
		repo:    repository.NewPostgresSessionRepo(db),
		checker: db,
		close:   db.Close,
	}, nil
}

// openDatabase はDB接続を開き、疎通を確認する。
func openDatabase(databaseURL string) (*sql.DB, error) {
	db, err := database.Open(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")
	return db, nil
}

// server はHTTPサーバーの構成要素。
type server struct {
	handler     http.Handler
	rateLimiter *middleware.RateLimiter
}

// newServer は全依存関係をワイヤリングし、ルーターを構築する。
func newServer(cfg *config.Config, store *sessionStore, reg *prometheus.Registry) (*server, error) {
	// 1. メトリクス
	collector := metrics.NewCollector(reg)

	// 2. バックエンドAPIクライアント（セッションのトークンをリクエストごとに付与する）
	api := apiclient.NewClient(apiclient.Config{
		BaseURL:    cfg.APIBaseURL,
		HTTPClient: &http.Client{Timeout: cfg.APITimeout},
		Logger:     slog.Default(),
		Metrics:    collector,
		Token:      session.TokenFromContext,
	})

	// 3. セッション・ウィザード
	sessions := session.NewManager(store.repo, collector, session.Config{MaxAge: cfg.SessionMaxAge})
	controller := wizard.NewController(api, wizard.NewTracker(), collector)

	// 4. 画面描画・入力の正規化
	renderer, err := view.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	sanitizer := security.NewInputSanitizer()

	// 5. ハンドラー
	cookie := handler.CookieConfig{Domain: cfg.CookieDomain, Secure: cfg.CookieSecure}
	rateLimiter := middleware.NewRateLimiter(middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitAuth))

	deps := &handler.RouterDeps{
		Logger:      slog.Default(),
		RateLimiter: rateLimiter,
		CSRF: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},

		Sessions: sessions,

		Auth:      handler.NewAuthHandler(api, sessions, controller, sanitizer, renderer, cookie),
		Send:      handler.NewSendHandler(controller, sessions, sanitizer, renderer, cookie),
		Transfers: handler.NewTransferHandler(api, sessions, renderer, cookie),

		HealthChecker:  store.checker,
		MetricsHandler: metrics.Handler(reg),
	}

	return &server{
		handler:     handler.NewRouter(deps),
		rateLimiter: rateLimiter,
	}, nil
}

// newRegistry はアプリケーションのメトリクスとランタイムのメトリクスを登録するレジストリを生成する。
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// runServe はWebサーバーモードで起動する。
// セッションストアを開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. セッションストア
	store, err := openSessionStore(cfg)
	if err != nil {
		return err
	}
	defer store.close()

	// 2. ルーターの構築
	srv, err := newServer(cfg, store, newRegistry())
	if err != nil {
		return err
	}
	defer srv.rateLimiter.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. 期限切れセッションの定期削除
	cleanupJob := cleanup.NewCleanupJob(store.repo, slog.Default())
	cleanupJob.Interval = cfg.SessionCleanupInterval
	go cleanupJob.Start(ctx)

	// 4. HTTPサーバーの起動
	// 書き込みタイムアウトはバックエンドAPIのタイムアウトより長くする
	httpServer := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      srv.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.APITimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("web server starting",
			slog.String("addr", httpServer.Addr),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-stop:
	case err := <-serveErr:
		return fmt.Errorf("server listen error: %w", err)
	}
	slog.Info("shutting down web server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("web server stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// PostgreSQLのセッションストアに対して期限切れセッションの削除を定期実行する。
// インメモリのセッションはサーバープロセス内で削除するため、DATABASE_URLを必須とする。
func runWorker(cfg *config.Config) error {
	if !cfg.UsesDatabase() {
		return errDatabaseRequired
	}

	db, err := openDatabase(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	go func() {
		<-stop
		slog.Info("shutting down worker...")
		cancel()
	}()

	slog.Info("worker starting",
		slog.Duration("cleanup_interval", cfg.SessionCleanupInterval),
	)

	cleanupJob := cleanup.NewCleanupJob(repository.NewPostgresSessionRepo(db), slog.Default())
	cleanupJob.Interval = cfg.SessionCleanupInterval
	cleanupJob.Start(ctx)

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	if !cfg.UsesDatabase() {
		return errDatabaseRequired
	}

	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLのパスワードをマスクする。
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}
