package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/kubex/internal/apiclient"
	"github.com/hitoshi/kubex/internal/model"
	"github.com/hitoshi/kubex/internal/session"
	"github.com/hitoshi/kubex/internal/view"
)

// TransfersAPI は送金履歴ハンドラーが必要とするバックエンドAPIのインターフェース。
type TransfersAPI interface {
	ListTransfers(ctx context.Context) ([]model.Transfer, error)
}

// TransferHandler は送金履歴のHTTPハンドラー。
type TransferHandler struct {
	api      TransfersAPI
	sessions SessionService
	renderer Renderer
	cookie   CookieConfig
}

// NewTransferHandler はTransferHandlerを生成する。
func NewTransferHandler(api TransfersAPI, sessions SessionService, renderer Renderer, cookie CookieConfig) *TransferHandler {
	return &TransferHandler{
		api:      api,
		sessions: sessions,
		renderer: renderer,
		cookie:   cookie,
	}
}

// List は送金履歴を表示する。並び順はバックエンドの返却順のまま。
// GET /transfers
func (h *TransferHandler) List(w http.ResponseWriter, r *http.Request) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		http.Redirect(w, r, loginPath, http.StatusSeeOther)
		return
	}

	page := view.TransfersPage{Layout: layoutFor(r, "Transfers", true)}
	status := http.StatusOK

	transfers, err := h.api.ListTransfers(r.Context())
	switch {
	case err == nil:
		page.Transfers = transfers
	case apiclient.IsUnauthorized(err):
		expireSession(w, r, h.sessions, h.cookie, s.ID)
		return
	default:
		slog.Warn("failed to load transfers", slog.String("error", err.Error()))
		page.Error = model.NewTransfersLoadFailedError()
		status = http.StatusBadGateway
	}

	render(w, h.renderer, status, view.PageTransfers, page)
}
