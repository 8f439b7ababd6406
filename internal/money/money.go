package money

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrTooManyDecimals = errors.New("amount has too many decimal places")
	ErrOverflow        = errors.New("amount out of range")
)

// ParseMinor parses a dollar amount ("12", "12.5", "-0.25") into cents.
func ParseMinor(input string) (int64, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return 0, ErrInvalidAmount
	}
	sign := int64(1)
	switch trimmed[0] {
	case '-':
		sign = -1
		trimmed = trimmed[1:]
	case '+':
		trimmed = trimmed[1:]
	}
	wholePart, fracPart, hasDot := strings.Cut(trimmed, ".")
	if wholePart == "" {
		if !hasDot || fracPart == "" {
			return 0, ErrInvalidAmount
		}
		wholePart = "0"
	}
	if !isDigits(wholePart) {
		return 0, ErrInvalidAmount
	}
	if fracPart != "" && !isDigits(fracPart) {
		return 0, ErrInvalidAmount
	}
	if len(fracPart) > 2 {
		return 0, ErrTooManyDecimals
	}
	whole, err := strconv.ParseInt(wholePart, 10, 64)
	if err != nil {
		return 0, ErrOverflow
	}
	if whole > (math.MaxInt64-99)/100 {
		return 0, ErrOverflow
	}
	frac := int64(0)
	switch len(fracPart) {
	case 1:
		frac = int64(fracPart[0]-'0') * 10
	case 2:
		frac = int64(fracPart[0]-'0')*10 + int64(fracPart[1]-'0')
	}
	return sign * (whole*100 + frac), nil
}

func FormatMinor(value int64) string {
	negative := value < 0
	if negative {
		value = -value
	}
	formatted := fmt.Sprintf("%d.%02d", value/100, value%100)
	if negative {
		return "-" + formatted
	}
	return formatted
}

// USD renders cents the way the pages show money, e.g. "$1,234.56".
func USD(value int64) string {
	return gomoney.New(value, gomoney.USD).Display()
}

// FromDecimal rounds a dollar amount half-to-even to whole cents.
func FromDecimal(value decimal.Decimal) int64 {
	return value.Shift(2).RoundBank(0).IntPart()
}

func ToDecimal(value int64) decimal.Decimal {
	return decimal.New(value, -2)
}

// Mul returns price*quantity, failing instead of wrapping around.
func Mul(priceMinor, quantity int64) (int64, error) {
	if priceMinor < 0 || quantity < 0 {
		return 0, ErrInvalidAmount
	}
	if quantity != 0 && priceMinor > math.MaxInt64/quantity {
		return 0, ErrOverflow
	}
	return priceMinor * quantity, nil
}

// Add returns a+b, failing instead of wrapping around.
func Add(a, b int64) (int64, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, ErrOverflow
	}
	return a + b, nil
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
