package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/hitoshi/kubex/internal/apiclient"
	"github.com/hitoshi/kubex/internal/model"
	"github.com/hitoshi/kubex/internal/security"
	"github.com/hitoshi/kubex/internal/session"
	"github.com/hitoshi/kubex/internal/view"
	"github.com/hitoshi/kubex/internal/wizard"
)

// WizardController は送金ハンドラーが必要とするウィザード操作のインターフェース。
// wizard.Controllerの部分集合として定義する。
type WizardController interface {
	SubmitProfile(ctx context.Context, key string, st *wizard.State, form model.ProfileRequest) error
	SubmitBeneficiary(ctx context.Context, key string, st *wizard.State, form model.BeneficiaryRequest) error
	RequestQuote(ctx context.Context, key string, st *wizard.State, form model.QuoteRequest) error
	CreateTransfer(ctx context.Context, key string, st *wizard.State) error
	LoadBeneficiaries(ctx context.Context, st *wizard.State)
	Cancel(key string)
}

// SendHandler は送金ウィザードのHTTPハンドラー。
type SendHandler struct {
	wizard    WizardController
	sessions  SessionService
	sanitizer security.InputSanitizer
	renderer  Renderer
	cookie    CookieConfig
}

// NewSendHandler はSendHandlerを生成する。
func NewSendHandler(wc WizardController, sessions SessionService,
	sanitizer security.InputSanitizer, renderer Renderer, cookie CookieConfig) *SendHandler {
	return &SendHandler{
		wizard:    wc,
		sessions:  sessions,
		sanitizer: sanitizer,
		renderer:  renderer,
		cookie:    cookie,
	}
}

// Show はウィザードを表示する。
// GET /send?step=N
// stepを指定した場合は到達済みのステップに表示を切り替え、実行中の送信処理をキャンセルする。
// 表示の切り替えがない限り状態は保存しない。
func (h *SendHandler) Show(w http.ResponseWriter, r *http.Request) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		http.Redirect(w, r, loginPath, http.StatusSeeOther)
		return
	}
	st := h.loadState(s)

	if raw := r.URL.Query().Get("step"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			h.wizard.Cancel(s.ID)
			st = h.reloadState(r.Context(), s)
			if step := wizard.Step(n); step != st.Step && st.View(step) {
				h.saveState(r.Context(), s, st)
			}
		}
	}

	// 受取人一覧は表示用に取得するだけで保存しない。取得失敗は無視する
	h.wizard.LoadBeneficiaries(r.Context(), &st)

	h.renderSend(w, r, http.StatusOK, st, nil)
}

// SubmitProfile はプロフィールを保存する。
// POST /send/profile
func (h *SendHandler) SubmitProfile(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, func(ctx context.Context, s *session.Session, st *wizard.State) error {
		form := model.ProfileRequest{
			FirstName:          h.sanitizer.Text(r.PostForm.Get("firstName")),
			LastName:           h.sanitizer.Text(r.PostForm.Get("lastName")),
			DateOfBirth:        h.sanitizer.Text(r.PostForm.Get("dateOfBirth")),
			CountryOfResidence: h.sanitizer.Code(r.PostForm.Get("countryOfResidence")),
			AddressLine1:       h.sanitizer.Text(r.PostForm.Get("addressLine1")),
			AddressLine2:       h.sanitizer.Text(r.PostForm.Get("addressLine2")),
			City:               h.sanitizer.Text(r.PostForm.Get("city")),
			State:              h.sanitizer.Text(r.PostForm.Get("state")),
			PostalCode:         h.sanitizer.Text(r.PostForm.Get("postalCode")),
		}
		return h.wizard.SubmitProfile(ctx, s.ID, st, form)
	})
}

// SubmitBeneficiary は受取人を作成する。
// POST /send/beneficiary
func (h *SendHandler) SubmitBeneficiary(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, func(ctx context.Context, s *session.Session, st *wizard.State) error {
		form := model.BeneficiaryRequest{
			FullName:            h.sanitizer.Text(r.PostForm.Get("fullName")),
			Country:             h.sanitizer.Code(r.PostForm.Get("country")),
			BankName:            h.sanitizer.Text(r.PostForm.Get("bankName")),
			AccountNumber:       h.sanitizer.Text(r.PostForm.Get("accountNumber")),
			RoutingCode:         h.sanitizer.Text(r.PostForm.Get("routingCode")),
			PayoutMethod:        h.sanitizer.Code(r.PostForm.Get("payoutMethod")),
			DestinationCurrency: h.sanitizer.Code(r.PostForm.Get("destinationCurrency")),
		}
		return h.wizard.SubmitBeneficiary(ctx, s.ID, st, form)
	})
}

// RequestQuote はFX見積もりを取得する。
// POST /send/quote
func (h *SendHandler) RequestQuote(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, func(ctx context.Context, s *session.Session, st *wizard.State) error {
		// 数値として解釈できない金額はゼロとして扱い、ウィザードの検証で弾く
		amount, err := decimal.NewFromString(h.sanitizer.Text(r.PostForm.Get("sourceAmount")))
		if err != nil {
			amount = decimal.Zero
		}
		form := model.QuoteRequest{
			SourceCountry:  h.sanitizer.Code(r.PostForm.Get("sourceCountry")),
			TargetCountry:  h.sanitizer.Code(r.PostForm.Get("targetCountry")),
			SourceCurrency: h.sanitizer.Code(r.PostForm.Get("sourceCurrency")),
			TargetCurrency: h.sanitizer.Code(r.PostForm.Get("targetCurrency")),
			SourceAmount:   amount,
		}
		return h.wizard.RequestQuote(ctx, s.ID, st, form)
	})
}

// CreateTransfer は送金を作成する。
// POST /send/transfer
func (h *SendHandler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, func(ctx context.Context, s *session.Session, st *wizard.State) error {
		return h.wizard.CreateTransfer(ctx, s.ID, st)
	})
}

// Reset は新しい送金を始める。
// POST /send/reset
func (h *SendHandler) Reset(w http.ResponseWriter, r *http.Request) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		http.Redirect(w, r, loginPath, http.StatusSeeOther)
		return
	}

	h.wizard.Cancel(s.ID)
	st := h.loadState(s)
	st.Reset()
	h.saveState(r.Context(), s, st)

	http.Redirect(w, r, sendPath, http.StatusSeeOther)
}

// submit はステップの送信処理を実行し、結果に応じて状態を保存して応答する。
// 成功時は送金画面へリダイレクトし、失敗時はエラーを表示して同じステップに留まる。
func (h *SendHandler) submit(w http.ResponseWriter, r *http.Request,
	run func(ctx context.Context, s *session.Session, st *wizard.State) error) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		http.Redirect(w, r, loginPath, http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	st := h.loadState(s)
	err := run(r.Context(), s, &st)

	switch {
	case err == nil:
		h.saveState(r.Context(), s, st)
		http.Redirect(w, r, sendPath, http.StatusSeeOther)
	case errors.Is(err, wizard.ErrDiscarded):
		// キャンセル後に届いた結果は状態に反映しない
		http.Redirect(w, r, sendPath, http.StatusSeeOther)
	case apiclient.IsUnauthorized(err):
		expireSession(w, r, h.sessions, h.cookie, s.ID)
	default:
		h.saveState(r.Context(), s, st)
		h.renderSend(w, r, statusForWizardError(err), st, wizard.UserError(err))
	}
}

func (h *SendHandler) loadState(s *session.Session) wizard.State {
	st, err := wizard.Decode(s.Wizard)
	if err != nil {
		slog.Warn("discarding unreadable wizard state", slog.String("error", err.Error()))
	}
	return st
}

// reloadState はキャンセル後の最新のウィザード状態をストアから読み直す。
// 読み直せない場合はリクエスト開始時の状態を使う。
func (h *SendHandler) reloadState(ctx context.Context, s *session.Session) wizard.State {
	fresh, err := h.sessions.FindByID(ctx, s.ID)
	if err != nil {
		slog.Warn("failed to reload wizard state", slog.String("error", err.Error()))
		return h.loadState(s)
	}
	if fresh != nil {
		s.Wizard = fresh.Wizard
	}
	return h.loadState(s)
}

func (h *SendHandler) saveState(ctx context.Context, s *session.Session, st wizard.State) {
	data, err := st.Encode()
	if err != nil {
		slog.Error("failed to encode wizard state", slog.String("error", err.Error()))
		return
	}
	if err := h.sessions.SaveWizard(ctx, s.ID, data); err != nil {
		slog.Error("failed to save wizard state", slog.String("error", err.Error()))
		return
	}
	s.Wizard = data
}

func (h *SendHandler) renderSend(w http.ResponseWriter, r *http.Request, status int, st wizard.State, apiErr *model.APIError) {
	render(w, h.renderer, status, view.PageSend, view.NewSendPage(layoutFor(r, "Send money", true), st, apiErr))
}

// statusForWizardError はウィザード操作のエラーに対応するHTTPステータスを返す。
func statusForWizardError(err error) int {
	var formErr *wizard.FormError
	switch {
	case errors.As(err, &formErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, wizard.ErrInFlight),
		errors.Is(err, wizard.ErrStepNotReached),
		errors.Is(err, wizard.ErrTransferNotReady):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

// expireSession はバックエンドに資格情報を拒否されたセッションを破棄し、
// 再ログインを求めてログイン画面へリダイレクトする。
func expireSession(w http.ResponseWriter, r *http.Request, sessions SessionService, cookie CookieConfig, id string) {
	if err := sessions.Expire(r.Context(), id); err != nil {
		slog.Error("failed to expire session", slog.String("error", err.Error()))
	}
	clearSessionCookie(w, cookie)
	http.Redirect(w, r, expiredPath, http.StatusSeeOther)
}
