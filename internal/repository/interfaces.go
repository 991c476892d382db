// Package repository はセッションデータの永続化を提供する。
// PostgreSQL実装と、DATABASE_URL未設定時に使うインメモリ実装を持つ。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/kubex/internal/model"
)

// ErrSessionNotFound は更新対象のセッションが存在しない（期限切れを含む）場合のエラー。
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。存在しない・期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// UpdateWizard はセッションに紐づくウィザード状態を上書きする。
	// セッションが存在しない場合はErrSessionNotFoundを返す。
	UpdateWizard(ctx context.Context, id string, wizard []byte) error
	// DeleteByID は指定IDのセッションを削除する。存在しない場合もエラーにしない。
	DeleteByID(ctx context.Context, id string) error
	// DeleteExpired は期限切れのセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}
