// Package handler はHTTPハンドラーを提供する。
// 画面はサーバー側で描画し、フォーム送信はPOST後にリダイレクトする。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/kubex/internal/middleware"
	"github.com/hitoshi/kubex/internal/model"
	"github.com/hitoshi/kubex/internal/view"
)

const (
	loginPath   = "/login"
	sendPath    = "/send"
	expiredPath = "/login?expired=1"
)

// Renderer は画面描画のインターフェース。
type Renderer interface {
	Render(w http.ResponseWriter, status int, page string, data any) error
}

// SessionService はハンドラーが必要とするセッション管理のインターフェース。
// session.Managerの部分集合として定義する。
type SessionService interface {
	Begin(ctx context.Context, event string, auth *model.AuthResponse) (*model.Session, error)
	FindByID(ctx context.Context, id string) (*model.Session, error)
	SaveWizard(ctx context.Context, id string, wizard []byte) error
	End(ctx context.Context, id string) error
	Expire(ctx context.Context, id string) error
}

// CookieConfig はセッションCookieの設定。
type CookieConfig struct {
	Domain string
	Secure bool
}

// setSessionCookie はセッションCookieを設定する（HTTP Only）。
// 有効期間はセッションの有効期限に合わせる。
func setSessionCookie(w http.ResponseWriter, cfg CookieConfig, s *model.Session) {
	maxAge := int(time.Until(s.ExpiresAt).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    s.ID,
		Path:     "/",
		Domain:   cfg.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie はセッションCookieをクリアする。
func clearSessionCookie(w http.ResponseWriter, cfg CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   cfg.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionIDFromCookie はCookieのセッションIDを返す。ない場合は空文字。
func sessionIDFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// layoutFor は画面共通のレイアウト情報を組み立てる。
func layoutFor(r *http.Request, title string, showNav bool) view.Layout {
	return view.Layout{
		Title:     title,
		ShowNav:   showNav,
		CSRFToken: middleware.CSRFToken(r.Context()),
	}
}

// render は画面を描画する。描画に失敗した場合は500を返す。
func render(w http.ResponseWriter, renderer Renderer, status int, page string, data any) {
	if err := renderer.Render(w, status, page, data); err != nil {
		slog.Error("failed to render page",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
		middleware.WriteInternalServerError(w)
	}
}
