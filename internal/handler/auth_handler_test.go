package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/hitoshi/kubex/internal/apiclient"
	"github.com/hitoshi/kubex/internal/metrics"
	"github.com/hitoshi/kubex/internal/model"
	"github.com/hitoshi/kubex/internal/repository"
	"github.com/hitoshi/kubex/internal/security"
	"github.com/hitoshi/kubex/internal/session"
	"github.com/hitoshi/kubex/internal/view"
	"github.com/hitoshi/kubex/internal/wizard"
)

func TestLogin_Success_RedirectsToSendAndStoresSession(t *testing.T) {
	var (
		mu  sync.Mutex
		got model.AuthRequest
	)
	backend := &fakeBackend{
		loginFn: func(_ context.Context, req model.AuthRequest) (*model.AuthResponse, error) {
			mu.Lock()
			defer mu.Unlock()
			got = req
			return &model.AuthResponse{Token: "token-abc", Email: req.Email, Role: "CUSTOMER"}, nil
		},
	}
	env := newTestEnv(t, backend)

	res := env.post("/login", url.Values{"email": {"  Jane@Example.COM "}, "password": {"secret"}})

	if res.status != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", res.status, http.StatusSeeOther)
	}
	if res.location != "/send" {
		t.Errorf("Location = %q, want %q", res.location, "/send")
	}
	mu.Lock()
	defer mu.Unlock()
	if got.Email != "Jane@Example.COM" {
		t.Errorf("メールアドレスは前後の空白のみ除いて送信されるべき: got %q", got.Email)
	}
	if got.Password != "secret" {
		t.Errorf("Password = %q, want %q", got.Password, "secret")
	}
	if env.cookie("session_id") == "" {
		t.Error("セッションCookieが設定されていない")
	}
	if env.repo.Len() != 1 {
		t.Errorf("セッション数 = %d, want 1", env.repo.Len())
	}

	page := env.get("/send")
	if page.status != http.StatusOK {
		t.Fatalf("GET /send status = %d, want %d", page.status, http.StatusOK)
	}
	if !strings.Contains(page.body, `action="/send/profile"`) {
		t.Error("ログイン直後はプロフィールのステップが表示されるべき")
	}
	if !strings.Contains(page.body, `action="/logout"`) {
		t.Error("保護ページにはナビゲーションが表示されるべき")
	}
}

func TestLogin_BackendRejects_ShowsInvalidCredentials(t *testing.T) {
	backend := &fakeBackend{
		loginFn: func(context.Context, model.AuthRequest) (*model.AuthResponse, error) {
			return nil, &apiclient.Error{Endpoint: "auth_login", StatusCode: http.StatusUnauthorized, Body: "bad credentials"}
		},
	}
	env := newTestEnv(t, backend)

	res := env.post("/login", url.Values{"email": {"jane@example.com"}, "password": {"wrong"}})

	if res.status != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", res.status, http.StatusUnauthorized)
	}
	if !strings.Contains(res.body, "Invalid credentials") {
		t.Error("エラーメッセージが表示されていない")
	}
	if strings.Contains(res.body, "bad credentials") {
		t.Error("バックエンドのエラー詳細を画面に表示してはならない")
	}
	if !strings.Contains(res.body, `value="jane@example.com"`) {
		t.Error("入力したメールアドレスは保持されるべき")
	}
	if env.cookie("session_id") != "" {
		t.Error("ログイン失敗時にセッションCookieを設定してはならない")
	}
	if env.repo.Len() != 0 {
		t.Errorf("セッション数 = %d, want 0", env.repo.Len())
	}
}

func TestLogin_EmptyFields_SkipsBackend(t *testing.T) {
	var called atomic.Bool
	backend := &fakeBackend{
		loginFn: func(context.Context, model.AuthRequest) (*model.AuthResponse, error) {
			called.Store(true)
			return nil, nil
		},
	}
	env := newTestEnv(t, backend)

	res := env.post("/login", url.Values{"email": {"jane@example.com"}})

	if res.status != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", res.status, http.StatusUnauthorized)
	}
	if called.Load() {
		t.Error("パスワードが空の場合はバックエンドを呼び出してはならない")
	}
}

func TestLogin_WithoutCSRFToken_Returns403(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{})
	env.get("/login")

	res := env.postRaw("/login", url.Values{"email": {"jane@example.com"}, "password": {"secret"}})

	if res.status != http.StatusForbidden {
		t.Errorf("status = %d, want %d", res.status, http.StatusForbidden)
	}
	if env.repo.Len() != 0 {
		t.Error("CSRF検証に失敗したリクエストでセッションを作成してはならない")
	}
}

func TestLoginPage_HidesNavigation(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{})

	res := env.get("/login")

	if res.status != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.status, http.StatusOK)
	}
	if strings.Contains(res.body, `action="/logout"`) {
		t.Error("ログイン画面にナビゲーションを表示してはならない")
	}
	if !strings.Contains(res.body, `name="csrf_token" value="`+env.cookie("csrf_token")+`"`) {
		t.Error("フォームにCSRFトークンが埋め込まれていない")
	}
}

func TestLoginPage_ExpiredNotice(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{})

	res := env.get("/login?expired=1")

	if !strings.Contains(res.body, "Your session has expired.") {
		t.Error("セッション切れの案内が表示されていない")
	}
}

func TestLoginPage_SignedInUserStillSeesForm(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{})
	env.login()

	res := env.get("/login")

	if res.status != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.status, http.StatusOK)
	}
	if !strings.Contains(res.body, `action="/login"`) {
		t.Error("ログイン済みでもログインフォームを表示するべき")
	}
}

func TestLogin_ReplacesPreviousSession(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{})
	env.login()
	first := env.cookie("session_id")

	env.login()

	if env.cookie("session_id") == first {
		t.Error("再ログイン時は新しいセッションIDを発行するべき")
	}
	if env.repo.Len() != 1 {
		t.Errorf("セッション数 = %d, want 1（古いセッションは破棄される）", env.repo.Len())
	}
}

func TestRegister_Success_SignsIn(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{})

	res := env.post("/register", url.Values{"email": {"new@example.com"}, "password": {"secret"}})

	if res.status != http.StatusSeeOther || res.location != "/send" {
		t.Fatalf("status = %d, location = %q, want 303 /send", res.status, res.location)
	}
	if env.repo.Len() != 1 {
		t.Errorf("セッション数 = %d, want 1", env.repo.Len())
	}
}

func TestRegister_Failure_ShowsGenericMessage(t *testing.T) {
	backend := &fakeBackend{
		registerFn: func(context.Context, model.AuthRequest) (*model.AuthResponse, error) {
			return nil, &apiclient.Error{Endpoint: "auth_register", StatusCode: http.StatusConflict, Body: "email already exists"}
		},
	}
	env := newTestEnv(t, backend)

	res := env.post("/register", url.Values{"email": {"taken@example.com"}, "password": {"secret"}})

	if res.status != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", res.status, http.StatusUnprocessableEntity)
	}
	if !strings.Contains(res.body, "Unable to register with this email") {
		t.Error("登録失敗のメッセージが表示されていない")
	}
	if strings.Contains(res.body, "already exists") {
		t.Error("バックエンドのエラー詳細を画面に表示してはならない")
	}
}

// failingSessions はセッションの発行に失敗するSessionService。
type failingSessions struct {
	SessionService
}

func (failingSessions) Begin(context.Context, string, *model.AuthResponse) (*model.Session, error) {
	return nil, errors.New("session store unavailable")
}

func TestStartSession_BeginFailure_RerendersSubmittedPage(t *testing.T) {
	renderer, err := view.NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	sessions := failingSessions{SessionService: session.NewManager(repository.NewMemorySessionRepo(), metrics.Nop{}, session.Config{MaxAge: 3600})}
	controller := wizard.NewController(&fakeBackend{}, wizard.NewTracker(), metrics.Nop{})
	h := NewAuthHandler(&fakeBackend{}, sessions, controller, security.NewInputSanitizer(), renderer, CookieConfig{})

	tests := []struct {
		name   string
		path   string
		handle http.HandlerFunc
		title  string
		action string
	}{
		{name: "login", path: "/login", handle: h.Login, title: "<title>Sign in", action: `action="/login"`},
		{name: "register", path: "/register", handle: h.Register, title: "<title>Create account", action: `action="/register"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := url.Values{"email": {"jane@example.com"}, "password": {"secret"}}
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			rec := httptest.NewRecorder()

			tt.handle(rec, req)

			if rec.Code != http.StatusInternalServerError {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
			}
			body := rec.Body.String()
			if !strings.Contains(body, tt.title) {
				t.Errorf("タイトルが %q ではない", tt.title)
			}
			if !strings.Contains(body, tt.action) {
				t.Errorf("送信した画面 %s が再表示されていない", tt.action)
			}
			if rec.Header().Get("Set-Cookie") != "" {
				t.Error("セッション発行失敗時にCookieを設定してはならない")
			}
		})
	}
}

func TestLogout_ClearsSessionAndRedirects(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{})
	env.login()

	res := env.post("/logout", nil)

	if res.status != http.StatusSeeOther || res.location != "/login" {
		t.Fatalf("status = %d, location = %q, want 303 /login", res.status, res.location)
	}
	if env.cookie("session_id") != "" {
		t.Error("ログアウト後はセッションCookieがクリアされるべき")
	}
	if env.repo.Len() != 0 {
		t.Errorf("セッション数 = %d, want 0", env.repo.Len())
	}

	next := env.get("/send")
	if next.status != http.StatusSeeOther || next.location != "/login" {
		t.Errorf("ログアウト後の保護ページ: status = %d, location = %q, want 303 /login", next.status, next.location)
	}
}
