package wizard

import (
	"errors"
	"fmt"

	"github.com/hitoshi/kubex/internal/model"
)

var (
	// ErrInFlight は同一セッションで送信処理が実行中であることを示す。
	ErrInFlight = errors.New("a request is already in progress")
	// ErrStepNotReached は未到達のステップが送信されたことを示す。
	ErrStepNotReached = errors.New("step not reached")
	// ErrTransferNotReady は見積もりまたは受取人の選択がないことを示す。
	ErrTransferNotReady = errors.New("quote or beneficiary selection is missing")
	// ErrDiscarded は処理中にキャンセルされ、結果を破棄したことを示す。
	ErrDiscarded = errors.New("result discarded after cancellation")
)

// FormError はフォーム値の検証エラー。
type FormError struct {
	Field string
}

// Error はerrorインターフェースを実装する。
func (e *FormError) Error() string {
	return fmt.Sprintf("invalid form field: %s", e.Field)
}

// StepError はステップのAPI呼び出しの失敗。Errには元のエラーを保持する。
type StepError struct {
	Step Step
	Err  error
}

// Error はerrorインターフェースを実装する。
func (e *StepError) Error() string {
	return fmt.Sprintf("wizard step %s failed: %v", e.Step, e.Err)
}

// Unwrap は元のエラーを返す。
func (e *StepError) Unwrap() error {
	return e.Err
}

// UserError はウィザード操作のエラーを画面表示用のエラーに変換する。
// API呼び出しの失敗はステップごとの汎用メッセージにまとめる。
func UserError(err error) *model.APIError {
	if err == nil {
		return nil
	}

	var formErr *FormError
	var stepErr *StepError
	switch {
	case errors.Is(err, ErrInFlight):
		return model.NewSubmissionInFlightError()
	case errors.Is(err, ErrStepNotReached):
		return model.NewStepNotReachedError()
	case errors.Is(err, ErrTransferNotReady):
		return model.NewTransferNotReadyError()
	case errors.As(err, &formErr):
		return model.NewInvalidFormError(formErr.Field)
	case errors.As(err, &stepErr):
		return stepFailure(stepErr.Step)
	default:
		return stepFailure(0)
	}
}

func stepFailure(step Step) *model.APIError {
	switch step {
	case StepProfile:
		return model.NewProfileSaveFailedError()
	case StepBeneficiary:
		return model.NewBeneficiarySaveFailedError()
	case StepQuote:
		return model.NewQuoteFailedError()
	default:
		return model.NewTransferFailedError()
	}
}
