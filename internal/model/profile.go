package model

// ProfileRequest は顧客プロフィールのアップサートリクエスト。
// dateOfBirthはISO形式の日付（YYYY-MM-DD）。
type ProfileRequest struct {
	FirstName          string `json:"firstName"`
	LastName           string `json:"lastName"`
	DateOfBirth        string `json:"dateOfBirth,omitempty"`
	CountryOfResidence string `json:"countryOfResidence,omitempty"`
	AddressLine1       string `json:"addressLine1,omitempty"`
	AddressLine2       string `json:"addressLine2,omitempty"`
	City               string `json:"city,omitempty"`
	State              string `json:"state,omitempty"`
	PostalCode         string `json:"postalCode,omitempty"`
}

// Profile はバックエンドが返す顧客プロフィール。
// KYCStatusはサーバー側で割り当てられ、クライアントからは変更しない。
type Profile struct {
	ProfileRequest
	ID        int64  `json:"id"`
	KYCStatus string `json:"kycStatus"`
}
