package apiclient

import (
	"context"
	"net/http"

	"github.com/hitoshi/kubex/internal/model"
)

// CreateTransfer は見積もりと受取人から送金を作成する。
// POST /transfers
func (c *Client) CreateTransfer(ctx context.Context, req model.TransferRequest) (*model.Transfer, error) {
	var resp model.Transfer
	if err := c.do(ctx, "transfer_create", http.MethodPost, "/transfers", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListTransfers は送金履歴を取得する。並び順はバックエンドの返却順のまま。
// GET /transfers
func (c *Client) ListTransfers(ctx context.Context) ([]model.Transfer, error) {
	var resp []model.Transfer
	if err := c.do(ctx, "transfer_list", http.MethodGet, "/transfers", nil, &resp); err != nil {
		return nil, err
	}
	if resp == nil {
		resp = []model.Transfer{}
	}
	return resp, nil
}
