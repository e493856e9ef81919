package textutil

import "strings"

// fallbackToken names anything that sanitizes to nothing.
const fallbackToken = "unknown"

// SanitizeToken turns value into a lowercase ASCII token made of letters,
// digits, '-' and '_'. Every other rune becomes '_', leading and trailing
// separators are trimmed, and an empty result becomes "unknown".
func SanitizeToken(value string) string {
	token := strings.Map(tokenRune, strings.TrimSpace(value))
	token = strings.Trim(token, "_-")
	if token == "" {
		return fallbackToken
	}
	return token
}

func tokenRune(r rune) rune {
	switch {
	case r >= 'A' && r <= 'Z':
		return r + ('a' - 'A')
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
		return r
	default:
		return '_'
	}
}
