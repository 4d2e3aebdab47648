package auth

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	BcryptCost     = 12
	MinPhoneDigits = 10
	MaxPhoneDigits = 15
)

// weakPINs are rejected when a PIN is set, never when one is checked
var weakPINs = map[string]bool{
	"0000":     true,
	"1111":     true,
	"1234":     true,
	"4321":     true,
	"9999":     true,
	"00000000": true,
	"11111111": true,
	"12345678": true,
	"87654321": true,
}

// IsValidPINFormat reports whether pin is exactly 4 or 8 ASCII digits
func IsValidPINFormat(pin string) bool {
	if len(pin) != 4 && len(pin) != 8 {
		return false
	}
	for i := 0; i < len(pin); i++ {
		if pin[i] < '0' || pin[i] > '9' {
			return false
		}
	}
	return true
}

// ValidateNewPIN checks a PIN that is about to be stored
func ValidateNewPIN(pin string) error {
	if !IsValidPINFormat(pin) {
		return fmt.Errorf("pin must be 4 or 8 digits")
	}
	if weakPINs[pin] {
		return fmt.Errorf("pin is too easy to guess")
	}
	return nil
}

func HashPIN(pin string) (string, error) {
	if pin == "" {
		return "", fmt.Errorf("pin cannot be empty")
	}
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(pin), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash pin: %w", err)
	}
	return string(hashedBytes), nil
}

// ComparePIN returns nil when pin matches hashedPIN. An empty hash never matches.
func ComparePIN(hashedPIN, pin string) error {
	if hashedPIN == "" {
		return bcrypt.ErrMismatchedHashAndPassword
	}
	return bcrypt.CompareHashAndPassword([]byte(hashedPIN), []byte(pin))
}

// NormalizePhone strips everything except digits, keeping a leading "+"
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}

	var sb strings.Builder
	for i, r := range phone {
		if r == '+' && i == 0 {
			sb.WriteRune(r)
			continue
		}
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}

	s := sb.String()
	if s == "+" {
		return ""
	}
	return s
}

// IsValidPhone accepts 10 to 15 digits with an optional leading "+" and
// the usual separators (spaces, dashes, dots, parentheses)
func IsValidPhone(phone string) bool {
	for _, r := range strings.TrimSpace(phone) {
		switch {
		case r >= '0' && r <= '9':
		case r == '+', r == ' ', r == '-', r == '.', r == '(', r == ')':
		default:
			return false
		}
	}

	digits := strings.TrimPrefix(NormalizePhone(phone), "+")
	return len(digits) >= MinPhoneDigits && len(digits) <= MaxPhoneDigits
}
