package model

// 受取方法
const (
	PayoutMethodLocal = "LOCAL"
	PayoutMethodSWIFT = "SWIFT"
)

// BeneficiaryRequest は受取人の作成リクエスト。
type BeneficiaryRequest struct {
	FullName            string `json:"fullName"`
	Country             string `json:"country"`
	BankName            string `json:"bankName,omitempty"`
	AccountNumber       string `json:"accountNumber"`
	RoutingCode         string `json:"routingCode,omitempty"`
	PayoutMethod        string `json:"payoutMethod"`
	DestinationCurrency string `json:"destinationCurrency"`
}

// Beneficiary は送金の受取人。
// クライアントからは作成と一覧取得のみ行い、更新・削除はしない。
type Beneficiary struct {
	BeneficiaryRequest
	ID int64 `json:"id"`
}

// IsValidPayoutMethod は受取方法がサポート対象かを判定する。
func IsValidPayoutMethod(method string) bool {
	switch method {
	case PayoutMethodLocal, PayoutMethodSWIFT:
		return true
	default:
		return false
	}
}
