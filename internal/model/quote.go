package model

import "github.com/shopspring/decimal"

func init() {
	// バックエンドAPIは金額を数値として受け付けるため、引用符なしでエンコードする
	decimal.MarshalJSONWithoutQuotes = true
}

// QuoteRequest はFX見積もりのリクエスト。
type QuoteRequest struct {
	SourceCountry  string          `json:"sourceCountry"`
	TargetCountry  string          `json:"targetCountry"`
	SourceCurrency string          `json:"sourceCurrency"`
	TargetCurrency string          `json:"targetCurrency"`
	SourceAmount   decimal.Decimal `json:"sourceAmount"`
}

// Quote は価格が確定したFX見積もり。
// クライアントは永続化せず、ウィザードのセッション内でのみ保持する。
// 送金作成時にはこの値をそのまま使用する。
type Quote struct {
	QuoteRequest
	TargetAmount decimal.Decimal `json:"targetAmount"`
	Rate         decimal.Decimal `json:"rate"`
	AuditID      string          `json:"auditId"`
}
