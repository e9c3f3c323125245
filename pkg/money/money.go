// Package money represents currency amounts as integer minor units.
package money

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when a ticket or payment does not name one.
const DefaultCurrency = "usd"

const minorDigits = 2

// Amount is a currency amount in minor units (cents).
type Amount int64

// FromCents wraps a minor-unit value.
func FromCents(cents int64) Amount {
	return Amount(cents)
}

// ParseAmount parses a decimal string such as "50.00" into minor units.
// Fractions finer than a cent and negative amounts are rejected.
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return fromDecimal(d)
}

func fromDecimal(d decimal.Decimal) (Amount, error) {
	if d.IsNegative() {
		return 0, fmt.Errorf("amount must not be negative: %s", d.String())
	}
	shifted := d.Shift(minorDigits)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("amount has more than %d decimal places: %s", minorDigits, d.String())
	}
	if !shifted.BigInt().IsInt64() {
		return 0, fmt.Errorf("amount out of range: %s", d.String())
	}
	return Amount(shifted.IntPart()), nil
}

// Cents returns the amount in minor units.
func (a Amount) Cents() int64 {
	return int64(a)
}

// Decimal returns the amount in major units.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -minorDigits)
}

func (a Amount) String() string {
	return a.Decimal().StringFixed(minorDigits)
}

// MarshalJSON encodes the amount as a fixed-point string, e.g. "50.00".
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON accepts either a JSON string or a JSON number. Numbers are
// parsed from their literal text, never through float64.
func (a *Amount) UnmarshalJSON(data []byte) error {
	raw := bytes.Trim(bytes.TrimSpace(data), `"`)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return fmt.Errorf("amount is required")
	}
	parsed, err := ParseAmount(string(raw))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
