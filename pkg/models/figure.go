package models

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// OutputPlaces is the rounding applied to every figure written to a table.
const OutputPlaces = 2

// Figure is a nullable decimal cell. An undefined Figure (a blank CSV cell, a
// ratio with a zero denominator) stays undefined through arithmetic and is
// never read back as zero.
type Figure struct {
	value decimal.Decimal
	valid bool
}

// Known wraps a defined value.
func Known(d decimal.Decimal) Figure {
	return Figure{value: d, valid: true}
}

// Unknown is the undefined figure.
func Unknown() Figure {
	return Figure{}
}

// FromFloat converts f, mapping NaN and ±Inf to undefined.
func FromFloat(f float64) Figure {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Unknown()
	}
	return Known(decimal.NewFromFloat(f))
}

// FromInt is a convenience for whole-unit literals.
func FromInt(i int64) Figure {
	return Known(decimal.NewFromInt(i))
}

func (f Figure) Valid() bool { return f.valid }

// Decimal returns the value and whether it is defined.
func (f Figure) Decimal() (decimal.Decimal, bool) {
	return f.value, f.valid
}

// Float returns the value as float64 and whether it is defined.
func (f Figure) Float() (float64, bool) {
	if !f.valid {
		return 0, false
	}
	return f.value.InexactFloat64(), true
}

// Sub returns f - other, undefined if either side is.
func (f Figure) Sub(other Figure) Figure {
	if !f.valid || !other.valid {
		return Unknown()
	}
	return Known(f.value.Sub(other.value))
}

// Round rounds a defined figure to places.
func (f Figure) Round(places int32) Figure {
	if !f.valid {
		return f
	}
	return Known(f.value.Round(places))
}

// Equal compares two figures; two undefined figures are equal.
func (f Figure) Equal(other Figure) bool {
	if f.valid != other.valid {
		return false
	}
	return !f.valid || f.value.Equal(other.value)
}

func (f Figure) String() string {
	if !f.valid {
		return "n/a"
	}
	return f.value.StringFixed(OutputPlaces)
}

// MarshalCSV writes defined values with OutputPlaces decimals and undefined
// values as an empty cell.
func (f Figure) MarshalCSV() (string, error) {
	if !f.valid {
		return "", nil
	}
	return f.value.StringFixed(OutputPlaces), nil
}

// UnmarshalCSV accepts blank and NaN cells as undefined.
func (f *Figure) UnmarshalCSV(cell string) error {
	s := strings.TrimSpace(cell)
	switch strings.ToLower(s) {
	case "", "nan", "null", "n/a":
		*f = Unknown()
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", cell, err)
	}
	*f = Known(d)
	return nil
}

// Accumulator sums figures the way a spreadsheet column total does: undefined
// cells are skipped and the mean is taken over defined cells only.
type Accumulator struct {
	sum   decimal.Decimal
	count int
}

func (a *Accumulator) Add(f Figure) {
	if !f.valid {
		return
	}
	a.sum = a.sum.Add(f.value)
	a.count++
}

// Sum is zero when nothing was added, matching a column total over blanks.
func (a *Accumulator) Sum() Figure {
	return Known(a.sum)
}

// Mean is undefined when no defined figure was added.
func (a *Accumulator) Mean() Figure {
	if a.count == 0 {
		return Unknown()
	}
	return Known(a.sum.Div(decimal.NewFromInt(int64(a.count))))
}

var hundred = decimal.NewFromInt(100)

// Percent returns num/den*100 rounded to OutputPlaces, undefined when either
// side is undefined or den is zero.
func Percent(num, den Figure) Figure {
	if !num.valid || !den.valid || den.value.IsZero() {
		return Unknown()
	}
	return Known(num.value.Div(den.value).Mul(hundred).Round(OutputPlaces))
}

// RatioPercent rounds the ratio to four places before scaling by 100, the
// per-row margin and variance convention of the derived tables.
func RatioPercent(num, den Figure) Figure {
	if !num.valid || !den.valid || den.value.IsZero() {
		return Unknown()
	}
	return Known(num.value.Div(den.value).Round(4).Mul(hundred))
}

// Change returns (curr/prev - 1) * 100 rounded to OutputPlaces.
func Change(curr, prev Figure) Figure {
	if !curr.valid || !prev.valid || prev.value.IsZero() {
		return Unknown()
	}
	return Known(curr.value.Div(prev.value).Sub(decimal.NewFromInt(1)).Mul(hundred).Round(OutputPlaces))
}
