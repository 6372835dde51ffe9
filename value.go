package fiscalpanel

import (
	"fmt"
	"strconv"
)

// Key identifies one observation in the panel: a 2-letter ISO country code
// and a year.
type Key struct {
	Country string
	Year    int
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%d", k.Country, k.Year)
}

// Less orders keys by country ascending, then year ascending.
func (k Key) Less(other Key) bool {
	if k.Country != other.Country {
		return k.Country < other.Country
	}
	return k.Year < other.Year
}

type ValueKind int

const (
	KindNull ValueKind = iota
	KindNumber
	KindText
)

// Value is a single panel cell. Missing observations are the norm in this
// data, so null is a first-class state rather than a sentinel float.
type Value struct {
	kind ValueKind
	num  float64
	text string
}

func Null() Value { return Value{} }
func Num(f float64) Value { return Value{kind: KindNumber, num: f} }
func Text(s string) Value { return Value{kind: KindText, text: s} }

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsNull() bool    { return v.kind == KindNull }

// Float returns the numeric value; ok is false for null and text cells.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// Text cells render as-is, numbers in shortest round-trip form, nulls as
// the empty string. This is the serialized form used by the exporter.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindText:
		return v.text
	default:
		return ""
	}
}

// ParseValue converts a raw source token into a Value. Empty strings and the
// missing-data markers used by the statistical sources become null, numeric
// tokens become numbers, and anything else is kept as text (categorical
// fields like party names arrive this way).
func ParseValue(s string) Value {
	switch s {
	case "", ".", "..", "...", "NA", "N/A", "n/a", "NaN":
		return Null()
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Num(f)
	}
	return Text(s)
}
