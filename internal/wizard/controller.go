package wizard

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hitoshi/kubex/internal/metrics"
	"github.com/hitoshi/kubex/internal/model"
)

// 送信結果（メトリクスのラベル値）
const (
	outcomeSuccess   = "success"
	outcomeFailure   = "failure"
	outcomeInvalid   = "invalid"
	outcomeRefused   = "refused"
	outcomeDiscarded = "discarded"
)

// API はウィザードが必要とするバックエンドAPIのインターフェース。
// apiclient.Clientの部分集合として定義する。
type API interface {
	UpsertProfile(ctx context.Context, req model.ProfileRequest) (*model.Profile, error)
	CreateBeneficiary(ctx context.Context, req model.BeneficiaryRequest) (*model.Beneficiary, error)
	ListBeneficiaries(ctx context.Context) ([]model.Beneficiary, error)
	GetQuote(ctx context.Context, req model.QuoteRequest) (*model.Quote, error)
	CreateTransfer(ctx context.Context, req model.TransferRequest) (*model.Transfer, error)
}

// Controller はウィザードの各ステップの遷移を実行する。
// 各遷移関数はstを直接更新し、失敗時もフォーム値は保持する。
// ErrDiscardedが返った場合、呼び出し元はstを保存してはならない。
type Controller struct {
	api          API
	tracker      *Tracker
	metrics      metrics.Recorder
	newReference func() string
}

// NewController はControllerを生成する。
func NewController(api API, tracker *Tracker, recorder metrics.Recorder) *Controller {
	if tracker == nil {
		tracker = NewTracker()
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Controller{
		api:          api,
		tracker:      tracker,
		metrics:      recorder,
		newReference: uuid.NewString,
	}
}

// Tracker はControllerが使用する実行中リクエストの管理を返す。
func (c *Controller) Tracker() *Tracker {
	return c.tracker
}

// SubmitProfile はプロフィールを保存し、成功時に受取人ステップへ進む。
func (c *Controller) SubmitProfile(ctx context.Context, key string, st *State, form model.ProfileRequest) error {
	st.Profile = form
	return c.run(ctx, key, st, StepProfile, func(ctx context.Context) (func(*State), error) {
		if field, ok := validateProfile(form); !ok {
			return nil, &FormError{Field: field}
		}
		if _, err := c.api.UpsertProfile(ctx, form); err != nil {
			return nil, err
		}
		return func(s *State) {
			s.advance(StepProfile)
		}, nil
	})
}

// SubmitBeneficiary は受取人を作成して一覧を再取得し、作成した受取人を選択して見積もりステップへ進む。
// 作成後の一覧取得に失敗した場合も、作成された受取人の選択は維持する。
func (c *Controller) SubmitBeneficiary(ctx context.Context, key string, st *State, form model.BeneficiaryRequest) error {
	st.Beneficiary = form
	return c.run(ctx, key, st, StepBeneficiary, func(ctx context.Context) (func(*State), error) {
		if field, ok := validateBeneficiary(form); !ok {
			return nil, &FormError{Field: field}
		}
		created, err := c.api.CreateBeneficiary(ctx, form)
		if err != nil {
			return nil, err
		}

		list, err := c.api.ListBeneficiaries(ctx)
		if err != nil {
			return func(s *State) {
				s.SelectedBeneficiaryID = created.ID
			}, err
		}

		return func(s *State) {
			s.SelectedBeneficiaryID = created.ID
			s.Beneficiaries = list
			s.advance(StepBeneficiary)
		}, nil
	})
}

// RequestQuote はFX見積もりを取得し、成功時に確認ステップへ進む。
func (c *Controller) RequestQuote(ctx context.Context, key string, st *State, form model.QuoteRequest) error {
	st.QuoteForm = form
	return c.run(ctx, key, st, StepQuote, func(ctx context.Context) (func(*State), error) {
		if field, ok := validateQuote(form); !ok {
			return nil, &FormError{Field: field}
		}
		quote, err := c.api.GetQuote(ctx, form)
		if err != nil {
			return nil, err
		}
		return func(s *State) {
			s.Quote = quote
			s.advance(StepQuote)
		}, nil
	})
}

// CreateTransfer は見積もりと選択中の受取人から送金を作成する。
// 見積もりまたは受取人の選択がない場合はAPIを呼ばずにErrTransferNotReadyを返す。
// クライアント参照は試行ごとに新規生成し、失敗した試行の値は再利用しない。
func (c *Controller) CreateTransfer(ctx context.Context, key string, st *State) error {
	if st.Reached < StepReview {
		c.metrics.RecordWizardStep(StepReview.String(), outcomeRefused)
		return ErrStepNotReached
	}
	if !st.CanSend() {
		c.metrics.RecordWizardStep(StepReview.String(), outcomeRefused)
		return ErrTransferNotReady
	}

	req := model.NewTransferRequest(st.SelectedBeneficiaryID, *st.Quote, c.newReference())
	return c.run(ctx, key, st, StepReview, func(ctx context.Context) (func(*State), error) {
		transfer, err := c.api.CreateTransfer(ctx, req)
		if err != nil {
			return nil, err
		}
		return func(s *State) {
			s.Transfer = transfer
		}, nil
	})
}

// LoadBeneficiaries は受取人一覧を取得してstに反映する。取得の失敗は無視する。
func (c *Controller) LoadBeneficiaries(ctx context.Context, st *State) {
	list, err := c.api.ListBeneficiaries(ctx)
	if err != nil {
		slog.DebugContext(ctx, "failed to load beneficiaries", slog.String("error", err.Error()))
		return
	}
	st.Beneficiaries = list
}

// Cancel はkeyに対する実行中の送信処理をキャンセルする。
// 画面遷移・やり直し・ログアウトの際に呼び出す。
func (c *Controller) Cancel(key string) {
	if c.tracker.Cancel(key) {
		slog.Info("in-flight wizard request cancelled")
	}
}

// run はステップの送信処理を実行中リクエストとして登録して実行する。
// callは成功時（または部分的な成功時）にstへ適用する変更を返す。
// キャンセルされた場合は変更を適用せずErrDiscardedを返す。
func (c *Controller) run(ctx context.Context, key string, st *State, step Step, call func(ctx context.Context) (func(*State), error)) error {
	if step > st.Reached {
		c.metrics.RecordWizardStep(step.String(), outcomeRefused)
		return ErrStepNotReached
	}

	reqCtx, finish, err := c.tracker.Start(ctx, key)
	if err != nil {
		c.metrics.RecordWizardStep(step.String(), outcomeRefused)
		return err
	}

	apply, callErr := call(reqCtx)
	if !finish() {
		c.metrics.RecordWizardStep(step.String(), outcomeDiscarded)
		return ErrDiscarded
	}

	if apply != nil {
		apply(st)
	}

	if callErr != nil {
		var formErr *FormError
		if errors.As(callErr, &formErr) {
			c.metrics.RecordWizardStep(step.String(), outcomeInvalid)
			return callErr
		}
		c.metrics.RecordWizardStep(step.String(), outcomeFailure)
		slog.WarnContext(ctx, "wizard step failed",
			slog.String("step", step.String()),
			slog.String("error", callErr.Error()),
		)
		return &StepError{Step: step, Err: callErr}
	}

	c.metrics.RecordWizardStep(step.String(), outcomeSuccess)
	return nil
}
