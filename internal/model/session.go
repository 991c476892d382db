// Package model はドメインモデルを定義する。
package model

import "time"

// Session はログイン中のユーザーのセッションを表す。
// バックエンドAPIが発行したBearerトークンをサーバー側で保持し、
// ブラウザにはセッションIDのみをCookieで渡す。
type Session struct {
	ID        string
	Token     string // バックエンドAPIのBearerトークン（不透明な値として扱う）
	Email     string
	Role      string
	Wizard    []byte // 送金ウィザードの状態（JSON）
	ExpiresAt time.Time
	CreatedAt time.Time
}

// AuthRequest は /auth/login と /auth/register のリクエストボディ。
type AuthRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse は /auth/login と /auth/register のレスポンスボディ。
type AuthResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
