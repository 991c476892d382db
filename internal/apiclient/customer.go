package apiclient

import (
	"context"
	"net/http"

	"github.com/hitoshi/kubex/internal/model"
)

// UpsertProfile は顧客プロフィールを作成または更新する。冪等。
// PUT /customer/profile
func (c *Client) UpsertProfile(ctx context.Context, req model.ProfileRequest) (*model.Profile, error) {
	var resp model.Profile
	if err := c.do(ctx, "profile_upsert", http.MethodPut, "/customer/profile", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetProfile はログイン中の顧客のプロフィールを取得する。
// GET /customer/profile
func (c *Client) GetProfile(ctx context.Context) (*model.Profile, error) {
	var resp model.Profile
	if err := c.do(ctx, "profile_get", http.MethodGet, "/customer/profile", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
