package phone

import (
	"errors"
	"strings"
)

var (
	ErrEmpty        = errors.New("empty phone number")
	ErrBadCharacter = errors.New("phone number contains invalid characters")
	ErrBadLength    = errors.New("phone number length out of range")
	ErrNotCanonical = errors.New("phone number is missing a country code")
)

const (
	MinDigits = 9
	MaxDigits = 15
)

// Normalize canonicalizes a counterparty phone number to the international
// +<country><subscriber> form used as the storage representation.
// Accepted inputs: "+256700000000", "00256700000000" and bare
// "256700000000". Local numbers without a country code are rejected.
func Normalize(raw string) (normalized string, err error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '.', '(', ')':
			return -1
		default:
			return r
		}
	}, raw)

	if cleaned == "" {
		return "", ErrEmpty
	}

	switch {
	case strings.HasPrefix(cleaned, "+"):
		cleaned = cleaned[1:]
	case strings.HasPrefix(cleaned, "00"):
		cleaned = cleaned[2:]
	}

	if cleaned == "" {
		return "", ErrEmpty
	}

	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return "", ErrBadCharacter
		}
	}

	// A leading zero after stripping means a local format without country code
	if cleaned[0] == '0' {
		return "", ErrNotCanonical
	}

	if len(cleaned) < MinDigits || len(cleaned) > MaxDigits {
		return "", ErrBadLength
	}

	return "+" + cleaned, nil
}
