// Package wizard は送金ウィザードの状態と遷移を提供する。
//
// 状態はStepをタグに持つ単一の値（State）で、セッションに保存される。
// ステップごとに1つの遷移関数を持ち、成功時のみ次のステップへ進む。
// 巻き戻しはなく、前のステップへの移動は表示の切り替えのみ。
package wizard

// Step はウィザードのステップ。
type Step int

// ウィザードのステップ（表示順）
const (
	StepProfile Step = iota + 1
	StepBeneficiary
	StepQuote
	StepReview
)

// Steps は全ステップを表示順に返す。
func Steps() []Step {
	return []Step{StepProfile, StepBeneficiary, StepQuote, StepReview}
}

// Valid はステップが定義済みかを判定する。
func (s Step) Valid() bool {
	return s >= StepProfile && s <= StepReview
}

// String はメトリクスとログで使うステップ名を返す。
func (s Step) String() string {
	switch s {
	case StepProfile:
		return "profile"
	case StepBeneficiary:
		return "beneficiary"
	case StepQuote:
		return "quote"
	case StepReview:
		return "review"
	default:
		return "unknown"
	}
}

// Label は画面のステッパーに表示するラベルを返す。
func (s Step) Label() string {
	switch s {
	case StepProfile:
		return "Your details"
	case StepBeneficiary:
		return "Beneficiary"
	case StepQuote:
		return "Amount & FX"
	case StepReview:
		return "Review & send"
	default:
		return ""
	}
}

// next は次のステップを返す。最終ステップの次は最終ステップのまま。
func (s Step) next() Step {
	if s >= StepReview {
		return StepReview
	}
	return s + 1
}
