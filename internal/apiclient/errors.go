package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized はバックエンドが401を返したことを示す。
// 再認証は試みず、呼び出し元がセッション切れとして扱う。
var ErrUnauthorized = errors.New("backend rejected the session credential")

// Error はバックエンドが4xx/5xxを返した場合のエラー。
// ステータスとボディは加工せずに保持する。
type Error struct {
	Endpoint   string
	StatusCode int
	Body       string
}

// Error はerrorインターフェースを実装する。
func (e *Error) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: backend returned status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s: backend returned status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Unwrap は401の場合にErrUnauthorizedを返し、errors.Isで判定できるようにする。
func (e *Error) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// IsUnauthorized はerrがバックエンドの401に由来するかを判定する。
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// StatusCode はerrが*Errorであればそのステータスコードを、そうでなければ0を返す。
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
