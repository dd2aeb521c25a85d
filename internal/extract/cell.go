package extract

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Kind identifies which variant a Cell holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindText
	KindNumber
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Cell is a single spreadsheet value: null, text, number or boolean.
// The zero value is a null cell.
type Cell struct {
	kind Kind
	text string
	num  float64
	b    bool
}

// Null returns an empty cell.
func Null() Cell { return Cell{} }

// Text returns a text cell. Blank text is stored as null.
func Text(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return Cell{}
	}
	return Cell{kind: KindText, text: s}
}

// Number returns a numeric cell.
func Number(f float64) Cell { return Cell{kind: KindNumber, num: f} }

// Bool returns a boolean cell.
func Bool(b bool) Cell { return Cell{kind: KindBool, b: b} }

// Kind reports the variant held by c.
func (c Cell) Kind() Kind { return c.kind }

// IsNull reports whether c holds no value.
func (c Cell) IsNull() bool { return c.kind == KindNull }

// AsText returns the text value and true if c is a text cell.
func (c Cell) AsText() (string, bool) { return c.text, c.kind == KindText }

// AsNumber returns the numeric value and true if c is a number cell.
func (c Cell) AsNumber() (float64, bool) { return c.num, c.kind == KindNumber }

// AsBool returns the boolean value and true if c is a boolean cell.
func (c Cell) AsBool() (bool, bool) { return c.b, c.kind == KindBool }

// String renders the cell the way a user would read it. Null renders as "".
// Integral numbers have no fractional part: 5 renders as "5", not "5.0".
func (c Cell) String() string {
	switch c.kind {
	case KindText:
		return c.text
	case KindNumber:
		return strconv.FormatFloat(c.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(c.b)
	default:
		return ""
	}
}

// normalized returns the cell's text trimmed, lower-cased and in NFC form so
// that a precomposed "sí" and "si" followed by a combining accent compare equal.
func (c Cell) normalized() string {
	return normalize(c.String())
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(s)))
}

// integer interprets c as a whole number. Number cells must be integral;
// text cells must hold an optionally signed run of digits, or a decimal
// whose fractional part is zero ("5.0").
func (c Cell) integer() (int, bool) {
	switch c.kind {
	case KindNumber:
		return wholeNumber(c.num)
	case KindText:
		s := strings.TrimSpace(c.text)
		if n, err := strconv.Atoi(s); err == nil {
			return n, true
		}
		if !strings.Contains(s, ".") {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return wholeNumber(f)
	default:
		return 0, false
	}
}

func wholeNumber(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

// Row is one spreadsheet row.
type Row []Cell

// blank reports whether every cell in r is null.
func (r Row) blank() bool {
	for _, c := range r {
		if !c.IsNull() {
			return false
		}
	}
	return true
}

// width is the index of the last non-null cell plus one.
func (r Row) width() int {
	for i := len(r) - 1; i >= 0; i-- {
		if !r[i].IsNull() {
			return i + 1
		}
	}
	return 0
}

// at returns the cell at index i, or null when i is out of range.
func (r Row) at(i int) Cell {
	if i < 0 || i >= len(r) {
		return Null()
	}
	return r[i]
}

// Grid is an ordered, rectangular sequence of rows with blank rows removed.
type Grid []Row

// NewGrid builds a Grid from raw rows. Blank rows are dropped, trailing
// columns that are null in every row are cut, and the remaining rows are
// padded with null cells to a common width.
func NewGrid(rows ...Row) Grid {
	kept := make([]Row, 0, len(rows))
	width := 0
	for _, r := range rows {
		if r.blank() {
			continue
		}
		kept = append(kept, r)
		if w := r.width(); w > width {
			width = w
		}
	}

	grid := make(Grid, len(kept))
	for i, r := range kept {
		grid[i] = make(Row, width)
		copy(grid[i], r)
	}
	return grid
}

// TextRow is a convenience for building rows of text cells.
func TextRow(values ...string) Row {
	row := make(Row, len(values))
	for i, v := range values {
		row[i] = Text(v)
	}
	return row
}
