package service

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	OTPLength          = 6
	PhoneNumberLength  = 10
	DefaultCountryCode = "+91"
)

var phonePattern = regexp.MustCompile(`^[6-9]\d{9}$`)

// CleanPhoneNumber elimina todo lo que no sea digito.
func CleanPhoneNumber(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidatePhoneNumber acepta moviles indios: 10 digitos empezando por 6-9.
func ValidatePhoneNumber(phone string) bool {
	return phonePattern.MatchString(CleanPhoneNumber(phone))
}

// FormatPhoneNumber devuelve "+91 98765 43210" para numeros de 10 digitos y
// el valor original en cualquier otro caso.
func FormatPhoneNumber(phone, countryCode string) string {
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}
	clean := CleanPhoneNumber(phone)
	if len(clean) != PhoneNumberLength {
		return phone
	}
	return countryCode + " " + clean[:5] + " " + clean[5:]
}

// ValidateOtp exige exactamente seis digitos ASCII.
func ValidateOtp(code string) bool {
	if len(code) != OTPLength {
		return false
	}
	for _, r := range code {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
