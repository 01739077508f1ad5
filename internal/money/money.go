// Package money wraps exact decimal arithmetic for monetary values.
//
// All amounts in the pipeline go through this package; binary floating
// point never touches a value. Parsing accepts both Brazilian
// ("1.234,56", "R$ 85,35") and US ("1,234.56") formats.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Value is an exact-precision monetary amount, rounded half-up to two
// decimal places at construction. Differences may be negative.
type Value struct {
	dec decimal.Decimal
}

// Zero returns the zero value.
func Zero() Value {
	return Value{dec: decimal.Zero}
}

// FromDecimal wraps a decimal, rounding half-up to 2 places.
func FromDecimal(d decimal.Decimal) Value {
	return Value{dec: d.Round(2)}
}

// MustParse parses s and panics on error. For constants in tests and defaults.
func MustParse(s string) Value {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Parse converts a monetary string into a Value. Currency prefixes are
// stripped and the thousands/decimal separator convention is detected
// from the position of the last comma and dot.
func Parse(s string) (Value, error) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "R$"))
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "$"))
	if raw == "" {
		return Value{}, fmt.Errorf("empty monetary value")
	}

	comma := strings.LastIndex(raw, ",")
	dot := strings.LastIndex(raw, ".")
	switch {
	case comma >= 0 && dot >= 0:
		if comma > dot {
			// BR: 1.234,56
			raw = strings.ReplaceAll(raw, ".", "")
			raw = strings.Replace(raw, ",", ".", 1)
		} else {
			// US: 1,234.56
			raw = strings.ReplaceAll(raw, ",", "")
		}
	case comma >= 0:
		// Only a comma: assume BR decimal separator.
		raw = strings.Replace(raw, ",", ".", 1)
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return Value{}, fmt.Errorf("parsing monetary value %q: %w", s, err)
	}
	return Value{dec: d.Round(2)}, nil
}

// Decimal returns the underlying decimal.
func (v Value) Decimal() decimal.Decimal {
	return v.dec
}

// Add returns v + o.
func (v Value) Add(o Value) Value {
	return Value{dec: v.dec.Add(o.dec)}
}

// Sub returns v - o. The result may be negative.
func (v Value) Sub(o Value) Value {
	return Value{dec: v.dec.Sub(o.dec)}
}

// Abs returns the absolute value.
func (v Value) Abs() Value {
	return Value{dec: v.dec.Abs()}
}

// Neg returns -v.
func (v Value) Neg() Value {
	return Value{dec: v.dec.Neg()}
}

// Cmp returns -1, 0 or 1 comparing v to o.
func (v Value) Cmp(o Value) int {
	return v.dec.Cmp(o.dec)
}

// Equal reports exact equality.
func (v Value) Equal(o Value) bool {
	return v.dec.Equal(o.dec)
}

// IsZero reports whether v is zero.
func (v Value) IsZero() bool {
	return v.dec.IsZero()
}

// IsNegative reports whether v is below zero.
func (v Value) IsNegative() bool {
	return v.dec.IsNegative()
}

// Diff returns the absolute difference between v and o.
func (v Value) Diff(o Value) Value {
	return Value{dec: v.dec.Sub(o.dec).Abs()}
}

// WithinTolerance reports whether |v - o| <= tol.
func (v Value) WithinTolerance(o, tol Value) bool {
	return v.Diff(o).Cmp(tol) <= 0
}

// String renders the value with two decimal places ("1234.56").
func (v Value) String() string {
	return v.dec.StringFixed(2)
}

// FormatBR renders the value in Brazilian currency format ("R$ 1.234,56").
func (v Value) FormatBR() string {
	neg := v.dec.IsNegative()
	fixed := v.dec.Abs().StringFixed(2)
	intPart := fixed[:len(fixed)-3]
	decPart := fixed[len(fixed)-2:]

	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(intPart[i : i+3])
	}

	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("%sR$ %s,%s", sign, b.String(), decPart)
}

// Sum adds all values, starting from zero.
func Sum(values ...Value) Value {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v.dec)
	}
	return Value{dec: total}
}
