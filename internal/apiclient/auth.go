package apiclient

import (
	"context"
	"net/http"

	"github.com/hitoshi/kubex/internal/model"
)

// Register はアカウントを登録し、発行されたトークンを返す。
// POST /auth/register
func (c *Client) Register(ctx context.Context, req model.AuthRequest) (*model.AuthResponse, error) {
	var resp model.AuthResponse
	if err := c.do(ctx, "auth_register", http.MethodPost, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login は認証情報を検証し、発行されたトークンを返す。
// POST /auth/login
func (c *Client) Login(ctx context.Context, req model.AuthRequest) (*model.AuthResponse, error) {
	var resp model.AuthResponse
	if err := c.do(ctx, "auth_login", http.MethodPost, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
