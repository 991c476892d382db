package apiclient

import (
	"context"
	"net/http"

	"github.com/hitoshi/kubex/internal/model"
)

// GetQuote はFX見積もりを取得する。
// POST /fx/quote
func (c *Client) GetQuote(ctx context.Context, req model.QuoteRequest) (*model.Quote, error) {
	var resp model.Quote
	if err := c.do(ctx, "fx_quote", http.MethodPost, "/fx/quote", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
