// Package money holds the decimal helpers shared by the calculator, storage and API layers.
// Amounts are rupees with two decimal places.
package money

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
)

// Places is the number of decimal places every stored amount carries.
const Places = 2

// Cent is the smallest representable amount.
var Cent = decimal.New(1, -Places)

// Round rounds d half away from zero to two decimal places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Parse reads a user-supplied amount such as "1921.50".
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

// Format renders d as a plain fixed-point string with two decimals.
func Format(d decimal.Decimal) string {
	return d.StringFixed(Places)
}

// Sum adds up the given amounts.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Amount is the wire form of a decimal. It marshals to a bare JSON number with exactly
// two decimals ("1921.50", never "1.9215e3" and never a quoted string) and accepts either
// a number or a numeric string when decoding.
type Amount struct {
	decimal.Decimal
}

// NewAmount wraps d for serialization.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

// MarshalJSON implements json.Marshaler.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.StringFixed(Places)), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		a.Decimal = decimal.Zero
		return nil
	}
	data = bytes.Trim(data, `"`)
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return fmt.Errorf("invalid amount %s: %w", data, err)
	}
	a.Decimal = d
	return nil
}

// String returns the fixed two-decimal representation.
func (a Amount) String() string {
	return a.StringFixed(Places)
}
