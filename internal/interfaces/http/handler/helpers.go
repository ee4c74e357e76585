package handler

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseAmount parses a money amount sent as a decimal string
func parseAmount(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(s))
}

// toDecimalPtr parses an optional decimal string, returning nil when absent
func toDecimalPtr(s *string) (*decimal.Decimal, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	d, err := parseAmount(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
