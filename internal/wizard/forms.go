package wizard

import (
	"strings"
	"time"

	"github.com/hitoshi/kubex/internal/model"
)

// validateProfile はプロフィールフォームの必須項目を検証し、不正なフィールド名を返す。
func validateProfile(f model.ProfileRequest) (string, bool) {
	switch {
	case strings.TrimSpace(f.FirstName) == "":
		return "firstName", false
	case strings.TrimSpace(f.LastName) == "":
		return "lastName", false
	case !isCountryCode(f.CountryOfResidence):
		return "countryOfResidence", false
	case strings.TrimSpace(f.AddressLine1) == "":
		return "addressLine1", false
	case f.DateOfBirth != "" && !isISODate(f.DateOfBirth):
		return "dateOfBirth", false
	}
	return "", true
}

// validateBeneficiary は受取人フォームの必須項目を検証し、不正なフィールド名を返す。
func validateBeneficiary(f model.BeneficiaryRequest) (string, bool) {
	switch {
	case strings.TrimSpace(f.FullName) == "":
		return "fullName", false
	case !isCountryCode(f.Country):
		return "country", false
	case strings.TrimSpace(f.AccountNumber) == "":
		return "accountNumber", false
	case !model.IsValidPayoutMethod(f.PayoutMethod):
		return "payoutMethod", false
	case !isCurrencyCode(f.DestinationCurrency):
		return "destinationCurrency", false
	}
	return "", true
}

// validateQuote は見積もりフォームを検証し、不正なフィールド名を返す。
func validateQuote(f model.QuoteRequest) (string, bool) {
	switch {
	case !isCountryCode(f.SourceCountry):
		return "sourceCountry", false
	case !isCountryCode(f.TargetCountry):
		return "targetCountry", false
	case !isCurrencyCode(f.SourceCurrency):
		return "sourceCurrency", false
	case !isCurrencyCode(f.TargetCurrency):
		return "targetCurrency", false
	case !f.SourceAmount.IsPositive():
		return "sourceAmount", false
	}
	return "", true
}

// isCountryCode はISO 3166-1 alpha-2形式（大文字2文字）かを判定する。
func isCountryCode(s string) bool {
	return isUpperAlpha(s, 2)
}

// isCurrencyCode はISO 4217形式（大文字3文字）かを判定する。
func isCurrencyCode(s string) bool {
	return isUpperAlpha(s, 3)
}

func isUpperAlpha(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// isISODate はYYYY-MM-DD形式の実在する日付かを判定する。
func isISODate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
