package model

import "fmt"

// APIError は画面に表示するエラーの統一フォーマットを表す。
// バリデーションエラー・通信エラー・サーバー側の業務エラーは区別せず、
// 画面ごとの汎用メッセージにまとめる。詳細はログにのみ記録する。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, wizard, transfer, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	ErrCodeRegistrationFailed  = "REGISTRATION_FAILED"
	ErrCodeProfileSaveFailed   = "PROFILE_SAVE_FAILED"
	ErrCodeBeneficiaryFailed   = "BENEFICIARY_SAVE_FAILED"
	ErrCodeQuoteFailed         = "QUOTE_FAILED"
	ErrCodeTransferFailed      = "TRANSFER_FAILED"
	ErrCodeTransfersLoadFailed = "TRANSFERS_LOAD_FAILED"
	ErrCodeSubmissionInFlight  = "SUBMISSION_IN_FLIGHT"
	ErrCodeStepNotReached      = "STEP_NOT_REACHED"
	ErrCodeTransferNotReady    = "TRANSFER_NOT_READY"
	ErrCodeSessionExpired      = "SESSION_EXPIRED"
	ErrCodeInvalidForm         = "INVALID_FORM"
	ErrCodeCSRFFailed          = "CSRF_FAILED"
	ErrCodeRateLimited         = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal            = "INTERNAL_ERROR"
)

// NewInvalidCredentialsError はログイン失敗エラーを生成する。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "Invalid credentials",
		Category: "auth",
		Action:   "Check your email and password and try again.",
	}
}

// NewRegistrationFailedError はアカウント登録失敗エラーを生成する。
func NewRegistrationFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeRegistrationFailed,
		Message:  "Unable to register with this email",
		Category: "auth",
		Action:   "Try a different email address or sign in instead.",
	}
}

// NewProfileSaveFailedError はプロフィール保存失敗エラーを生成する。
func NewProfileSaveFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeProfileSaveFailed,
		Message:  "Unable to save your details.",
		Category: "wizard",
		Action:   "Check the form and submit again.",
	}
}

// NewBeneficiarySaveFailedError は受取人保存失敗エラーを生成する。
func NewBeneficiarySaveFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeBeneficiaryFailed,
		Message:  "Unable to save beneficiary.",
		Category: "wizard",
		Action:   "Check the beneficiary details and submit again.",
	}
}

// NewQuoteFailedError はFX見積もり取得失敗エラーを生成する。
func NewQuoteFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeQuoteFailed,
		Message:  "Unable to fetch FX quote.",
		Category: "wizard",
		Action:   "Check the countries, currencies and amount, then request a new quote.",
	}
}

// NewTransferFailedError は送金作成失敗エラーを生成する。
func NewTransferFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeTransferFailed,
		Message:  "Unable to create transfer.",
		Category: "transfer",
		Action:   "Check your transfer history before sending again.",
	}
}

// NewTransfersLoadFailedError は送金履歴の取得失敗エラーを生成する。
func NewTransfersLoadFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeTransfersLoadFailed,
		Message:  "Unable to load transfers.",
		Category: "transfer",
		Action:   "Reload the page in a moment.",
	}
}

// NewSubmissionInFlightError は同一セッションで送信処理が実行中の場合のエラーを生成する。
func NewSubmissionInFlightError() *APIError {
	return &APIError{
		Code:     ErrCodeSubmissionInFlight,
		Message:  "A request is already in progress.",
		Category: "wizard",
		Action:   "Wait for the current request to finish.",
	}
}

// NewStepNotReachedError は未到達のステップが送信された場合のエラーを生成する。
func NewStepNotReachedError() *APIError {
	return &APIError{
		Code:     ErrCodeStepNotReached,
		Message:  "Complete the previous steps first.",
		Category: "wizard",
		Action:   "Continue from the current step.",
	}
}

// NewSessionExpiredError はセッション切れエラーを生成する。
func NewSessionExpiredError() *APIError {
	return &APIError{
		Code:     ErrCodeSessionExpired,
		Message:  "Your session has expired.",
		Category: "auth",
		Action:   "Sign in again.",
	}
}

// NewInvalidFormError はフォーム値が不正な場合のエラーを生成する。
func NewInvalidFormError(field string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidForm,
		Message:  fmt.Sprintf("Invalid value for %s.", field),
		Category: "validation",
		Action:   "Correct the highlighted field and submit again.",
	}
}

// NewTransferNotReadyError は見積もりまたは受取人が未選択の状態で送金しようとした場合のエラーを生成する。
func NewTransferNotReadyError() *APIError {
	return &APIError{
		Code:     ErrCodeTransferNotReady,
		Message:  "Select a beneficiary and get a quote before sending.",
		Category: "transfer",
		Action:   "Complete the beneficiary and quote steps.",
	}
}

// NewCSRFFailedError はCSRFトークン検証失敗エラーを生成する。
func NewCSRFFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeCSRFFailed,
		Message:  "Your form has expired.",
		Category: "system",
		Action:   "Reload the page and submit the form again.",
	}
}

// NewRateLimitedError はレート制限超過エラーを生成する。
func NewRateLimitedError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "Too many requests. Please try again later.",
		Category: "system",
		Action:   "Please wait and retry after the specified time.",
	}
}

// NewInternalError は内部エラーを生成する。詳細はログのみに記録する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "Something went wrong.",
		Category: "system",
		Action:   "Please try again in a moment.",
	}
}
