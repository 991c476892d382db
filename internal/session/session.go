// Package session はログインセッションの発行・参照・破棄と、
// リクエストコンテキストに載せるセッションオブジェクトを提供する。
//
// セッションの有無のみで保護ページの表示可否を判定し、
// トークンの検証はバックエンドAPIに委ねる。
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hitoshi/kubex/internal/metrics"
	"github.com/hitoshi/kubex/internal/model"
	"github.com/hitoshi/kubex/internal/repository"
)

// セッションイベント（メトリクスのラベル値）
const (
	EventLogin    = "login"
	EventRegister = "register"
	EventLogout   = "logout"
	EventExpired  = "expired"
)

// Session はリクエストに紐づくログイン中ユーザーのセッション。
// ゲートミドルウェアがコンテキストに載せ、APIクライアントとウィザードが参照する。
type Session = model.Session

type contextKey struct{}

// ContextWith はセッションを載せたコンテキストを返す。
func ContextWith(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext はコンテキストからセッションを取り出す。
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}

// TokenFromContext はコンテキストのセッションが持つBearerトークンを返す。
// セッションがない場合は空文字。apiclient.TokenFuncとして使用する。
func TokenFromContext(ctx context.Context) string {
	if s, ok := FromContext(ctx); ok {
		return s.Token
	}
	return ""
}

// Config はManagerの設定。
type Config struct {
	MaxAge int // セッション有効期間の上限（秒）
}

// Manager はセッションのライフサイクルを管理する。
type Manager struct {
	repo    repository.SessionRepository
	metrics metrics.Recorder
	maxAge  time.Duration
	now     func() time.Time
}

// NewManager はManagerを生成する。
func NewManager(repo repository.SessionRepository, recorder metrics.Recorder, config Config) *Manager {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Manager{
		repo:    repo,
		metrics: recorder,
		maxAge:  time.Duration(config.MaxAge) * time.Second,
		now:     time.Now,
	}
}

// Begin はログイン・登録の成功レスポンスからセッションを発行し永続化する。
// eventにはEventLoginまたはEventRegisterを指定する。
func (m *Manager) Begin(ctx context.Context, event string, auth *model.AuthResponse) (*Session, error) {
	if auth == nil || auth.Token == "" {
		return nil, errors.New("auth response has no token")
	}

	now := m.now()
	s := &Session{
		ID:        uuid.NewString(),
		Token:     auth.Token,
		Email:     auth.Email,
		Role:      auth.Role,
		ExpiresAt: expiryFor(auth.Token, now, m.maxAge),
		CreatedAt: now,
	}

	if err := m.repo.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	m.metrics.RecordSessionEvent(event)
	slog.InfoContext(ctx, "session started",
		slog.String("event", event),
		slog.String("email", s.Email),
		slog.Time("expires_at", s.ExpiresAt),
	)
	return s, nil
}

// Load はセッションIDからセッションを取得する。
// 存在しない・期限切れの場合は(nil, nil)を返す。
func (m *Manager) Load(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, nil
	}
	s, err := m.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return s, nil
}

// FindByID はLoadの別名で、middleware.SessionFinderを満たす。
func (m *Manager) FindByID(ctx context.Context, id string) (*Session, error) {
	return m.Load(ctx, id)
}

// SaveWizard はセッションのウィザード状態を保存する。
func (m *Manager) SaveWizard(ctx context.Context, id string, wizard []byte) error {
	if err := m.repo.UpdateWizard(ctx, id, wizard); err != nil {
		return fmt.Errorf("failed to save wizard state: %w", err)
	}
	return nil
}

// End はログアウトによりセッションを破棄する。
func (m *Manager) End(ctx context.Context, id string) error {
	return m.delete(ctx, id, EventLogout)
}

// Expire はバックエンドが資格情報を拒否した場合にセッションを破棄する。
// 再認証は行わず、利用者には再ログインを求める。
func (m *Manager) Expire(ctx context.Context, id string) error {
	return m.delete(ctx, id, EventExpired)
}

func (m *Manager) delete(ctx context.Context, id, event string) error {
	if id == "" {
		return errors.New("session ID is required")
	}
	if err := m.repo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	m.metrics.RecordSessionEvent(event)
	slog.InfoContext(ctx, "session ended", slog.String("event", event))
	return nil
}

// expiryFor はセッションの有効期限を決める。
// トークンがexpクレームを持つJWTであれば、expと上限のうち早い方を採用する。
// 署名は検証しない。
func expiryFor(token string, now time.Time, maxAge time.Duration) time.Time {
	limit := now.Add(maxAge)

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return limit
	}
	if claims.ExpiresAt == nil {
		return limit
	}

	exp := claims.ExpiresAt.Time
	// 時計のずれで既に過去になっているexpは無視する
	if !exp.After(now) || exp.After(limit) {
		return limit
	}
	return exp
}
