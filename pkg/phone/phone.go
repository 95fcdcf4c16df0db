package phone

import "strings"

const (
	minDigits = 8
	maxDigits = 15
)

// Normalize converts a raw phone string into canonical E.164 form
// ("+" followed by 8-15 digits). The second return value is false when
// the input cannot be a phone number; callers treat that as "no number
// candidate", not as an error.
func Normalize(raw string) (string, bool) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)

	if len(digits) < minDigits || len(digits) > maxDigits {
		return "", false
	}
	// Numbers never start with zero in E.164
	if digits[0] == '0' {
		return "", false
	}
	return "+" + digits, true
}

// NormalizeKey canonicalizes an opaque identity key (lid/jid) for
// matching: trimmed and case-folded. Empty input stays empty.
func NormalizeKey(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
