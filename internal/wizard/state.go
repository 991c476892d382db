package wizard

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/hitoshi/kubex/internal/model"
)

// State はウィザード全体の状態。
// Stepは表示中のステップ、Reachedは到達済みの最も先のステップ。
type State struct {
	Step    Step `json:"step"`
	Reached Step `json:"reached"`

	Profile     model.ProfileRequest     `json:"profile"`
	Beneficiary model.BeneficiaryRequest `json:"beneficiary"`
	QuoteForm   model.QuoteRequest       `json:"quoteForm"`

	Beneficiaries         []model.Beneficiary `json:"beneficiaries,omitempty"`
	SelectedBeneficiaryID int64               `json:"selectedBeneficiaryId,omitempty"`
	Quote                 *model.Quote        `json:"quote,omitempty"`
	Transfer              *model.Transfer     `json:"transfer,omitempty"`
}

// NewState は初期値を設定したウィザード状態を返す。
func NewState() State {
	return State{
		Step:    StepProfile,
		Reached: StepProfile,
		Profile: model.ProfileRequest{
			CountryOfResidence: "US",
		},
		Beneficiary: model.BeneficiaryRequest{
			Country:             "IN",
			PayoutMethod:        model.PayoutMethodLocal,
			DestinationCurrency: "INR",
		},
		QuoteForm: model.QuoteRequest{
			SourceCountry:  "US",
			TargetCountry:  "IN",
			SourceCurrency: "USD",
			TargetCurrency: "INR",
			SourceAmount:   decimal.NewFromInt(100),
		},
	}
}

// Decode はセッションに保存されたJSONからウィザード状態を復元する。
// 空または未初期化のデータは初期状態として扱う。
func Decode(data []byte) (State, error) {
	if len(data) == 0 {
		return NewState(), nil
	}

	st := NewState()
	if err := json.Unmarshal(data, &st); err != nil {
		return NewState(), fmt.Errorf("failed to decode wizard state: %w", err)
	}
	if !st.Reached.Valid() {
		st.Reached = StepProfile
	}
	if !st.Step.Valid() || st.Step > st.Reached {
		st.Step = st.Reached
	}
	return st, nil
}

// Encode はウィザード状態をセッション保存用のJSONにする。
func (s State) Encode() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode wizard state: %w", err)
	}
	return data, nil
}

// CanSend は送金を作成できる状態か（見積もりと受取人の選択が揃っているか）を判定する。
func (s State) CanSend() bool {
	return s.Quote != nil && s.SelectedBeneficiaryID != 0
}

// View は表示するステップを切り替える。到達済みのステップのみ表示でき、状態は巻き戻さない。
func (s *State) View(step Step) bool {
	if !step.Valid() || step > s.Reached {
		return false
	}
	s.Step = step
	return true
}

// Reset は新しい送金を始めるため、見積もり・受取人の選択・作成済み送金をクリアし、
// 最初のステップに戻す。入力済みのフォーム値と受取人一覧は残す。
func (s *State) Reset() {
	s.Quote = nil
	s.SelectedBeneficiaryID = 0
	s.Transfer = nil
	s.Step = StepProfile
	s.Reached = StepProfile
}

// SelectedBeneficiary は選択中の受取人を一覧から探して返す。
func (s State) SelectedBeneficiary() (model.Beneficiary, bool) {
	for _, b := range s.Beneficiaries {
		if b.ID == s.SelectedBeneficiaryID {
			return b, true
		}
	}
	return model.Beneficiary{}, false
}

// advance は成功した遷移の後に次のステップを表示し、到達済みステップを更新する。
func (s *State) advance(from Step) {
	s.Step = from.next()
	if s.Step > s.Reached {
		s.Reached = s.Step
	}
}
