package extract

import (
	"fmt"
	"strings"
)

// Shape says whether the first row of a grid is a header.
type Shape int

const (
	HeaderAbsent Shape = iota
	HeaderPresent
)

func (s Shape) String() string {
	if s == HeaderPresent {
		return "header_present"
	}
	return "header_absent"
}

// MarshalText renders the shape as "header_present" or "header_absent".
func (s Shape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses the form written by MarshalText.
func (s *Shape) UnmarshalText(b []byte) error {
	switch string(b) {
	case "header_present":
		*s = HeaderPresent
	case "header_absent":
		*s = HeaderAbsent
	default:
		return fmt.Errorf("unknown shape %q", b)
	}
	return nil
}

// Classify decides whether row is a header. The first matching rule wins:
//
//  1. Exactly three cells shaped like (tier, integer, boolean token) is data,
//     even if a cell also contains a header keyword.
//  2. Any text cell containing a header keyword makes the row a header.
//  3. Anything else is data.
//
// The keyword test is a heuristic: a data row whose text happens to contain
// "years" or "nivel" will be read as a header.
func (e *Engine) Classify(row Row) Shape {
	if e.looksLikeData(row) {
		return HeaderAbsent
	}

	for _, c := range row {
		if _, ok := c.AsText(); !ok {
			continue
		}
		text := c.normalized()
		for _, kw := range e.rules.keywords {
			if strings.Contains(text, kw) {
				return HeaderPresent
			}
		}
	}

	return HeaderAbsent
}

func (e *Engine) looksLikeData(row Row) bool {
	if len(row) != 3 {
		return false
	}

	s, ok := row[0].AsText()
	if !ok {
		return false
	}
	if _, ok := ParseTier(s); !ok {
		return false
	}

	if _, ok := row[1].integer(); !ok {
		return false
	}

	_, ok = e.boolean(row[2])
	return ok
}
