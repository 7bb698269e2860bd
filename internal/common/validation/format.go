package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// EmailPattern is the pragmatic address syntax accepted for leads.
const EmailPattern = `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`

// PhonePattern accepts digits with common separators, at least ten characters.
const PhonePattern = `^\+?[\d\s\-\(\)\.]{10,}$`

var (
	emailRe = regexp.MustCompile(EmailPattern)
	phoneRe = regexp.MustCompile(PhonePattern)
	e164Re  = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)
	digitRe = regexp.MustCompile(`\D`)
)

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	return emailRe.MatchString(email)
}

// ValidatePhone validates basic phone number format
func ValidatePhone(phone string) bool {
	return phoneRe.MatchString(phone)
}

// IsE164 reports whether phone is already in +CCNNNN form.
func IsE164(phone string) bool {
	return e164Re.MatchString(phone)
}

// NormalizePhoneE164 converts phone to E.164. Numbers that already carry a
// leading + are kept if valid; bare 10-digit numbers are treated as North
// American and 11-digit numbers starting with 1 get a + prefix.
func NormalizePhoneE164(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", fmt.Errorf("phone number is empty")
	}

	digits := digitRe.ReplaceAllString(phone, "")
	if strings.HasPrefix(phone, "+") {
		candidate := "+" + digits
		if IsE164(candidate) {
			return candidate, nil
		}
		return "", fmt.Errorf("phone number %q is not valid E.164", phone)
	}

	switch {
	case len(digits) == 10:
		return "+1" + digits, nil
	case len(digits) == 11 && digits[0] == '1':
		return "+" + digits, nil
	}
	return "", fmt.Errorf("phone number must have 10 digits, got %d", len(digits))
}
