package lot

import (
	"fmt"
	"strconv"
	"strings"

	"cattle-auction-service/internal/domain/shared"

	"github.com/shopspring/decimal"
)

// ParseID parses a lot id supplied by a caller
func ParseID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: lot id %q is not an integer", shared.ErrInvalidInput, raw)
	}
	return id, nil
}

// maxAmountLength caps the text handed to the decimal parser
const maxAmountLength = 32

// ParseAmount parses a decimal amount such as "1500" or "1500.50"
func ParseAmount(raw string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) > maxAmountLength {
		return decimal.Zero, fmt.Errorf("%w: amount is longer than %d characters", shared.ErrInvalidInput, maxAmountLength)
	}
	amount, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount %q is not a decimal number", shared.ErrInvalidInput, raw)
	}
	if err := CheckAmountBounds(amount); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q: %v", shared.ErrInvalidInput, trimmed, err)
	}
	return amount, nil
}

// ParseQuantity parses a positive head count
func ParseQuantity(raw string) (int, error) {
	quantity, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || quantity <= 0 {
		return 0, fmt.Errorf("%w: quantity %q must be a positive integer", shared.ErrInvalidInput, raw)
	}
	return quantity, nil
}

// ParseStartPrice parses a non-negative starting price
func ParseStartPrice(raw string) (decimal.Decimal, error) {
	price, err := ParseAmount(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if price.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: starting price %q cannot be negative", shared.ErrInvalidInput, raw)
	}
	return price, nil
}
