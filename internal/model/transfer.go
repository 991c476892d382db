package model

import "github.com/shopspring/decimal"

// TransferRequest は送金作成リクエスト。
// ClientReferenceはバックエンドでの冪等処理に使われる、試行ごとに新規生成される値。
type TransferRequest struct {
	BeneficiaryID   int64           `json:"beneficiaryId"`
	SourceCountry   string          `json:"sourceCountry"`
	TargetCountry   string          `json:"targetCountry"`
	SourceCurrency  string          `json:"sourceCurrency"`
	TargetCurrency  string          `json:"targetCurrency"`
	SourceAmount    decimal.Decimal `json:"sourceAmount"`
	TargetAmount    decimal.Decimal `json:"targetAmount"`
	AuditID         string          `json:"auditId"`
	ClientReference string          `json:"clientReference"`
}

// Transfer は作成済みの送金。作成後はクライアントからは読み取り専用。
type Transfer struct {
	ID             int64           `json:"id"`
	BeneficiaryID  int64           `json:"beneficiaryId"`
	SourceCountry  string          `json:"sourceCountry"`
	TargetCountry  string          `json:"targetCountry"`
	SourceCurrency string          `json:"sourceCurrency"`
	TargetCurrency string          `json:"targetCurrency"`
	SourceAmount   decimal.Decimal `json:"sourceAmount"`
	TargetAmount   decimal.Decimal `json:"targetAmount"`
	Status         string          `json:"status"`
	NiumReference  *string         `json:"niumReference"`
	AuditID        *string         `json:"auditId"`
	CreatedAt      Timestamp       `json:"createdAt"`
}

// NewTransferRequest は見積もりと受取人IDから送金作成リクエストを組み立てる。
// 見積もりの値は変更せずにそのまま転記する。
func NewTransferRequest(beneficiaryID int64, q Quote, clientReference string) TransferRequest {
	return TransferRequest{
		BeneficiaryID:   beneficiaryID,
		SourceCountry:   q.SourceCountry,
		TargetCountry:   q.TargetCountry,
		SourceCurrency:  q.SourceCurrency,
		TargetCurrency:  q.TargetCurrency,
		SourceAmount:    q.SourceAmount,
		TargetAmount:    q.TargetAmount,
		AuditID:         q.AuditID,
		ClientReference: clientReference,
	}
}

// ReferenceOrPending は決済ネットワークの参照番号を返す。未割り当ての場合は"pending"。
func (t Transfer) ReferenceOrPending() string {
	if t.NiumReference == nil || *t.NiumReference == "" {
		return "pending"
	}
	return *t.NiumReference
}

// CreatedAtDisplay は作成日時を画面表示用の形式（YYYY-MM-DD HH:mm）で返す。
func (t Transfer) CreatedAtDisplay() string {
	if t.CreatedAt.IsZero() {
		return ""
	}
	return t.CreatedAt.Time.Format("2006-01-02 15:04")
}
