package apiclient

import (
	"context"
	"net/http"

	"github.com/hitoshi/kubex/internal/model"
)

// CreateBeneficiary は受取人を作成する。
// POST /beneficiaries
func (c *Client) CreateBeneficiary(ctx context.Context, req model.BeneficiaryRequest) (*model.Beneficiary, error) {
	var resp model.Beneficiary
	if err := c.do(ctx, "beneficiary_create", http.MethodPost, "/beneficiaries", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListBeneficiaries は登録済みの受取人一覧を取得する。
// GET /beneficiaries
func (c *Client) ListBeneficiaries(ctx context.Context) ([]model.Beneficiary, error) {
	var resp []model.Beneficiary
	if err := c.do(ctx, "beneficiary_list", http.MethodGet, "/beneficiaries", nil, &resp); err != nil {
		return nil, err
	}
	if resp == nil {
		resp = []model.Beneficiary{}
	}
	return resp, nil
}
