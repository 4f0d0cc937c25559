package order

import "strings"

// CountryCallingCode is the recognized international prefix. Doubled
// prefixes ("+9191...") are produced by some storefronts and are absorbed.
const CountryCallingCode = "+91"

const phoneDigits = 10

// NormalizePhone formats a raw phone number. Spaces and hyphens are removed; a
// bare 10 digit number is accepted as is; a number carrying the country code is
// stripped of it (repeatedly) and accepted if 10 digits remain. Anything else
// returns ("", false) and the caller decides what to do with the record.
func NormalizePhone(raw string) (string, bool) {
	phone := strings.NewReplacer(" ", "", "-", "").Replace(raw)

	if isDigits(phone, phoneDigits) {
		return phone, true
	}

	if !strings.HasPrefix(phone, CountryCallingCode) {
		return "", false
	}

	bare := strings.TrimPrefix(CountryCallingCode, "+")
	phone = strings.TrimPrefix(phone, CountryCallingCode)
	for len(phone) > phoneDigits && strings.HasPrefix(phone, bare) {
		phone = phone[len(bare):]
	}

	if isDigits(phone, phoneDigits) {
		return phone, true
	}
	return "", false
}

func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
