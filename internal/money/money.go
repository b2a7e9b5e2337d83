// Package money provides a fixed-point monetary amount held as an integer
// count of minor units (cents). All arithmetic is exact; decimal strings are
// the only representation that crosses the API boundary.
package money

import (
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidFormat indicates input that is not a parseable decimal number.
	ErrInvalidFormat = errors.New("invalid amount format")

	// ErrNotPositive indicates an amount that is zero or negative after
	// rounding, which no transaction may carry.
	ErrNotPositive = errors.New("amount must be positive")
)

// Amount is a monetary value in minor units. The zero value is 0.00.
// Amounts held by accounts are never negative; a negative Amount only
// appears as the debit side of a balance delta.
type Amount struct {
	units int64
}

// FromMinorUnits builds an Amount from a signed count of minor units.
// This is the storage-boundary representation.
func FromMinorUnits(units int64) Amount {
	return Amount{units: units}
}

// MinorUnits returns the signed count of minor units.
func (a Amount) MinorUnits() int64 { return a.units }

// Parse converts a decimal string into a positive Amount. Values with more
// than two fractional digits are rounded to two, half away from zero.
// Anything that does not parse as a decimal number fails with
// ErrInvalidFormat; results that are not strictly positive fail with
// ErrNotPositive.
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, ErrInvalidFormat
	}
	d = d.Round(2)
	if d.Sign() <= 0 {
		return Amount{}, ErrNotPositive
	}
	units, err := toMinorUnits(d)
	if err != nil {
		return Amount{}, err
	}
	return Amount{units: units}, nil
}

// toMinorUnits shifts a two-decimal value into minor units, rejecting
// values whose minor-unit count does not fit in an int64. IntPart alone
// silently wraps on overflow, which would turn a huge positive input into
// a negative amount.
func toMinorUnits(d decimal.Decimal) (int64, error) {
	v := d.Shift(2)
	if !v.BigInt().IsInt64() {
		return 0, ErrInvalidFormat
	}
	return v.IntPart(), nil
}

func (a Amount) Add(b Amount) Amount { return Amount{units: a.units + b.units} }
func (a Amount) Sub(b Amount) Amount { return Amount{units: a.units - b.units} }
func (a Amount) Neg() Amount         { return Amount{units: -a.units} }

func (a Amount) IsZero() bool     { return a.units == 0 }
func (a Amount) IsNegative() bool { return a.units < 0 }

func (a Amount) Equal(b Amount) bool       { return a.units == b.units }
func (a Amount) GreaterThan(b Amount) bool { return a.units > b.units }
func (a Amount) LessThan(b Amount) bool    { return a.units < b.units }

// String renders the amount with exactly two fractional digits.
func (a Amount) String() string {
	return decimal.New(a.units, -2).StringFixed(2)
}

// MarshalJSON encodes the amount as a two-digit decimal string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts a decimal string. Unlike Parse it allows zero,
// since stored balances may legitimately be 0.00.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ErrInvalidFormat
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return ErrInvalidFormat
	}
	units, err := toMinorUnits(d.Round(2))
	if err != nil {
		return err
	}
	a.units = units
	return nil
}
