package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/kubex/internal/model"
	"github.com/hitoshi/kubex/internal/security"
	"github.com/hitoshi/kubex/internal/session"
	"github.com/hitoshi/kubex/internal/view"
)

// AuthAPI は認証ハンドラーが必要とするバックエンドAPIのインターフェース。
type AuthAPI interface {
	Login(ctx context.Context, req model.AuthRequest) (*model.AuthResponse, error)
	Register(ctx context.Context, req model.AuthRequest) (*model.AuthResponse, error)
}

// Canceller は実行中のウィザード処理をキャンセルするインターフェース。
type Canceller interface {
	Cancel(key string)
}

// AuthHandler はログイン・登録・ログアウトのHTTPハンドラー。
type AuthHandler struct {
	api       AuthAPI
	sessions  SessionService
	canceller Canceller
	sanitizer security.InputSanitizer
	renderer  Renderer
	cookie    CookieConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(api AuthAPI, sessions SessionService, canceller Canceller,
	sanitizer security.InputSanitizer, renderer Renderer, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{
		api:       api,
		sessions:  sessions,
		canceller: canceller,
		sanitizer: sanitizer,
		renderer:  renderer,
		cookie:    cookie,
	}
}

// LoginPage はログイン画面を表示する。
// GET /login
// ログイン済みでもフォームを表示する。
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	page := view.AuthPage{Layout: layoutFor(r, "Sign in", false)}
	if r.URL.Query().Get("expired") == "1" {
		page.Notice = "Your session has expired. Please sign in again."
	}
	render(w, h.renderer, http.StatusOK, view.PageLogin, page)
}

// Login は認証情報をバックエンドで検証し、セッションを発行する。
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req := h.parseCredentials(r)
	if req.Email == "" || req.Password == "" {
		h.renderAuthError(w, r, view.PageLogin, "Sign in", req.Email, model.NewInvalidCredentialsError())
		return
	}

	resp, err := h.api.Login(r.Context(), req)
	if err != nil {
		slog.Warn("login failed",
			slog.String("email", req.Email),
			slog.String("error", err.Error()),
		)
		h.renderAuthError(w, r, view.PageLogin, "Sign in", req.Email, model.NewInvalidCredentialsError())
		return
	}

	h.startSession(w, r, view.PageLogin, "Sign in", session.EventLogin, resp)
}

// RegisterPage はアカウント登録画面を表示する。
// GET /register
func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	render(w, h.renderer, http.StatusOK, view.PageRegister, view.AuthPage{Layout: layoutFor(r, "Create account", false)})
}

// Register はアカウントを登録し、そのままログイン状態にする。
// POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	req := h.parseCredentials(r)
	if req.Email == "" || req.Password == "" {
		h.renderAuthError(w, r, view.PageRegister, "Create account", req.Email, model.NewRegistrationFailedError())
		return
	}

	resp, err := h.api.Register(r.Context(), req)
	if err != nil {
		slog.Warn("registration failed",
			slog.String("email", req.Email),
			slog.String("error", err.Error()),
		)
		h.renderAuthError(w, r, view.PageRegister, "Create account", req.Email, model.NewRegistrationFailedError())
		return
	}

	h.startSession(w, r, view.PageRegister, "Create account", session.EventRegister, resp)
}

// Logout はセッションを破棄し、ログイン画面へリダイレクトする。
// POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if id := sessionIDFromCookie(r); id != "" {
		h.canceller.Cancel(id)
		if err := h.sessions.End(r.Context(), id); err != nil {
			// ログアウト失敗してもCookieはクリアする
			slog.Error("failed to logout", slog.String("error", err.Error()))
		}
	}

	clearSessionCookie(w, h.cookie)
	http.Redirect(w, r, loginPath, http.StatusSeeOther)
}

// startSession はセッションを発行してCookieを設定し、送金画面へリダイレクトする。
// 既存のセッションがあれば破棄する。発行に失敗した場合はpageを再表示する。
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, page, title, event string, resp *model.AuthResponse) {
	if old := sessionIDFromCookie(r); old != "" {
		h.canceller.Cancel(old)
		if err := h.sessions.End(r.Context(), old); err != nil {
			slog.Warn("failed to end previous session", slog.String("error", err.Error()))
		}
	}

	s, err := h.sessions.Begin(r.Context(), event, resp)
	if err != nil {
		slog.Error("failed to start session", slog.String("error", err.Error()))
		h.renderAuthError(w, r, page, title, resp.Email, model.NewInternalError())
		return
	}

	setSessionCookie(w, h.cookie, s)
	http.Redirect(w, r, sendPath, http.StatusSeeOther)
}

func (h *AuthHandler) parseCredentials(r *http.Request) model.AuthRequest {
	if err := r.ParseForm(); err != nil {
		return model.AuthRequest{}
	}
	return model.AuthRequest{
		Email:    h.sanitizer.Text(r.PostForm.Get("email")),
		Password: r.PostForm.Get("password"),
	}
}

func (h *AuthHandler) renderAuthError(w http.ResponseWriter, r *http.Request, page, title, email string, apiErr *model.APIError) {
	status := http.StatusUnauthorized
	if apiErr.Code == model.ErrCodeRegistrationFailed {
		status = http.StatusUnprocessableEntity
	} else if apiErr.Code == model.ErrCodeInternal {
		status = http.StatusInternalServerError
	}
	render(w, h.renderer, status, page, view.AuthPage{
		Layout: layoutFor(r, title, false),
		Email:  email,
		Error:  apiErr,
	})
}
