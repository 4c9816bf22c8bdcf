package service_roomcode

import (
	"math/rand/v2"
	"strings"
)

const (
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	Length   = 6
)

// Generate draws Length symbols uniformly from Alphabet.
// Collisions with active rooms are the caller's concern.
func Generate() string {
	var builder strings.Builder
	builder.Grow(Length)

	for range Length {
		builder.WriteByte(Alphabet[rand.IntN(len(Alphabet))])
	}

	return builder.String()
}

// IsValid is strict: callers canonicalize user input first.
func IsValid(code string) bool {
	if len(code) != Length {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// Canonicalize trims the code and uppercases ASCII letters only. Other runes
// are kept as they are, so IsValid rejects them.
func Canonicalize(code string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' {
			return r - 'a' + 'A'
		}
		return r
	}, strings.TrimSpace(code))
}

// Parse canonicalizes and validates a user supplied code.
func Parse(code string) (string, bool) {
	code = Canonicalize(code)
	return code, IsValid(code)
}
