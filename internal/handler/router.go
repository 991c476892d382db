package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/hitoshi/kubex/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger      *slog.Logger
	RateLimiter *middleware.RateLimiter
	CSRF        middleware.CSRFConfig

	// セッション
	Sessions SessionService

	// ハンドラー
	Auth      *AuthHandler
	Send      *SendHandler
	Transfers *TransferHandler

	// 運用エンドポイント
	HealthChecker  HealthChecker
	MetricsHandler http.Handler
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RealIP → Logging → Recovery → SecurityHeaders → CSRF → Session → SessionLog → RateLimit(General)
//
// /health と /metrics はCSRF以降のミドルウェアチェーンの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())

	// --- 運用エンドポイント ---
	r.Method(http.MethodGet, "/health", NewHealthHandler(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewCSRFMiddleware(deps.CSRF))

		// --- 認証不要のルート ---
		r.Get("/login", deps.Auth.LoginPage)
		r.Get("/register", deps.Auth.RegisterPage)
		r.With(deps.RateLimiter.AuthMiddleware()).Post("/login", deps.Auth.Login)
		r.With(deps.RateLimiter.AuthMiddleware()).Post("/register", deps.Auth.Register)
		r.Post("/logout", deps.Auth.Logout)

		// --- ログインが必要なルート ---
		// ミドルウェアスタック: Session → SessionLog → RateLimit(General)
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewSessionMiddleware(deps.Sessions, loginPath))
			r.Use(middleware.NewSessionLogMiddleware())
			r.Use(deps.RateLimiter.GeneralMiddleware())

			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, sendPath, http.StatusSeeOther)
			})

			r.Route("/send", func(r chi.Router) {
				r.Get("/", deps.Send.Show)
				r.Post("/profile", deps.Send.SubmitProfile)
				r.Post("/beneficiary", deps.Send.SubmitBeneficiary)
				r.Post("/quote", deps.Send.RequestQuote)
				r.Post("/transfer", deps.Send.CreateTransfer)
				r.Post("/reset", deps.Send.Reset)
			})

			r.Get("/transfers", deps.Transfers.List)
		})
	})

	// 未定義のパスはログイン画面へ
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, loginPath, http.StatusSeeOther)
	})

	return r
}
