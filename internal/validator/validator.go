package validator

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrMissingField      = errors.New("missing field")
	ErrPasswordMismatch  = errors.New("passwords don't match")
	ErrInvalidUsername   = errors.New("invalid username")
	ErrInvalidShareCount = errors.New("shares must be a positive integer")
	ErrInvalidSymbol     = errors.New("invalid symbol")
)

var (
	usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,64}$`)
	symbolRegex   = regexp.MustCompile(`^[A-Z0-9][A-Z0-9.\-]{0,11}$`)
)

// Required fails with ErrMissingField when any value is empty.
func Required(values ...string) error {
	for _, value := range values {
		if value == "" {
			return ErrMissingField
		}
	}
	return nil
}

func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

// ConfirmPassword checks a new password against its confirmation.
func ConfirmPassword(password, confirmation string) error {
	if err := Required(password, confirmation); err != nil {
		return err
	}
	if password != confirmation {
		return ErrPasswordMismatch
	}
	return nil
}

func ParseShares(raw string) (int64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, ErrInvalidShareCount
	}
	shares, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil || shares <= 0 {
		return 0, ErrInvalidShareCount
	}
	return shares, nil
}

// NormalizeSymbol trims and upper-cases a ticker symbol.
func NormalizeSymbol(raw string) (string, error) {
	symbol := strings.ToUpper(strings.TrimSpace(raw))
	if symbol == "" {
		return "", ErrMissingField
	}
	if !symbolRegex.MatchString(symbol) {
		return "", ErrInvalidSymbol
	}
	return symbol, nil
}
