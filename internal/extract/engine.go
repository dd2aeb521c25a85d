package extract

import (
	"fmt"
	"strings"
)

// Record is a fully validated candidate profile. A Record only exists when
// every field was recovered.
type Record struct {
	Tier            Tier `json:"tier"`
	YearsExperience int  `json:"yearsExperience"`
	Availability    bool `json:"availability"`
}

// Columns maps each resolved field to its zero-based column index. A field
// absent from the map was not found in the header.
type Columns map[Field]int

// Index returns the column for f and whether it was resolved.
func (c Columns) Index(f Field) (int, bool) {
	i, ok := c[f]
	return i, ok
}

// Analysis describes how a grid was read. On failure Record is the zero
// value; Shape, Header and Columns are filled in whenever the grid had a row
// to classify.
type Analysis struct {
	Shape   Shape    `json:"shape"`
	Header  []string `json:"header"`
	Columns Columns  `json:"columns"`
	Record  Record   `json:"record"`
}

// Engine runs the extraction pipeline against a fixed vocabulary. It holds
// no mutable state and is safe for concurrent use.
type Engine struct {
	rules      Rules
	unzipLimit int64
}

// Option configures an Engine.
type Option func(*Engine)

// WithUnzipLimit caps the uncompressed size of a workbook. Workbooks that
// inflate beyond n bytes fail with a DecodeError.
func WithUnzipLimit(n int64) Option {
	return func(e *Engine) { e.unzipLimit = n }
}

// New returns an Engine using rules.
func New(rules Rules, opts ...Option) *Engine {
	e := &Engine{rules: rules}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewDefault returns an Engine using DefaultRules.
func NewDefault() *Engine {
	return New(DefaultRules())
}

// ExtractWorkbook decodes a workbook and extracts its record.
func (e *Engine) ExtractWorkbook(data []byte) (Record, error) {
	a, err := e.AnalyzeWorkbook(data)
	if err != nil {
		return Record{}, err
	}
	return a.Record, nil
}

// AnalyzeWorkbook decodes a workbook and analyzes its first sheet.
func (e *Engine) AnalyzeWorkbook(data []byte) (Analysis, error) {
	grid, err := decode(data, e.unzipLimit)
	if err != nil {
		return Analysis{}, err
	}
	return e.Analyze(grid)
}

// Extract returns the record held by grid, or the error that prevented it.
func (e *Engine) Extract(grid Grid) (Record, error) {
	a, err := e.Analyze(grid)
	if err != nil {
		return Record{}, err
	}
	return a.Record, nil
}

// Analyze classifies the grid, resolves its columns and coerces every field.
// All field errors are collected before returning.
func (e *Engine) Analyze(grid Grid) (Analysis, error) {
	if len(grid) == 0 {
		return Analysis{}, &StructureError{Reason: ReasonEmptyGrid}
	}

	var header, data Row
	shape := e.Classify(grid[0])
	if shape == HeaderPresent {
		if len(grid) < 2 {
			return Analysis{Shape: shape, Header: headerText(grid[0])},
				&StructureError{Reason: ReasonMissingDataRow}
		}
		header, data = grid[0], grid[1]
	} else {
		header, data = syntheticHeader(), grid[0]
	}

	a := Analysis{
		Shape:   shape,
		Header:  headerText(header),
		Columns: e.Resolve(header),
	}

	rec, err := e.coerce(a.Columns, data)
	if err != nil {
		return a, err
	}
	a.Record = rec
	return a, nil
}

// Resolve maps each field to the first header cell equal to one of its
// synonyms, trying synonyms in priority order. Comparison ignores case and
// surrounding whitespace.
func (e *Engine) Resolve(header Row) Columns {
	names := make([]string, len(header))
	for i, c := range header {
		names[i] = c.normalized()
	}

	cols := make(Columns, len(Fields))
	for _, f := range Fields {
		if i, ok := e.resolveField(f, names); ok {
			cols[f] = i
		}
	}
	return cols
}

func (e *Engine) resolveField(f Field, names []string) (int, bool) {
	for _, syn := range e.rules.synonyms[f] {
		for i, name := range names {
			if name != "" && name == syn {
				return i, true
			}
		}
	}
	return 0, false
}

// coerce runs all three coercers without stopping at the first failure.
func (e *Engine) coerce(cols Columns, data Row) (Record, error) {
	var (
		rec  Record
		errs FieldErrors
	)

	tierCell, ok := lookup(cols, data, FieldTier)
	if t, err := e.coerceTier(tierCell, ok); err != nil {
		errs = append(errs, *err)
	} else {
		rec.Tier = t
	}

	yearsCell, ok := lookup(cols, data, FieldYearsExperience)
	if y, err := e.coerceYears(yearsCell, ok); err != nil {
		errs = append(errs, *err)
	} else {
		rec.YearsExperience = y
	}

	availCell, ok := lookup(cols, data, FieldAvailability)
	if v, err := e.coerceAvailability(availCell, ok); err != nil {
		errs = append(errs, *err)
	} else {
		rec.Availability = v
	}

	if len(errs) > 0 {
		return Record{}, errs
	}
	return rec, nil
}

func (e *Engine) coerceTier(c Cell, resolved bool) (Tier, *FieldError) {
	if !resolved {
		return "", missing(FieldTier, MsgTier)
	}
	t, ok := ParseTier(c.String())
	if !ok {
		return "", &FieldError{Field: FieldTier, Message: MsgTier}
	}
	return t, nil
}

func (e *Engine) coerceYears(c Cell, resolved bool) (int, *FieldError) {
	if !resolved {
		return 0, missing(FieldYearsExperience, MsgYearsUnparsable)
	}
	n, ok := c.integer()
	if !ok {
		return 0, &FieldError{Field: FieldYearsExperience, Message: MsgYearsUnparsable}
	}
	if n < MinYears || n > MaxYears {
		return 0, &FieldError{Field: FieldYearsExperience, Message: MsgYearsOutOfRange}
	}
	return n, nil
}

func (e *Engine) coerceAvailability(c Cell, resolved bool) (bool, *FieldError) {
	if !resolved {
		return false, missing(FieldAvailability, MsgUnparsableBoolean)
	}
	v, ok := e.boolean(c)
	if !ok {
		return false, &FieldError{Field: FieldAvailability, Message: MsgUnparsableBoolean}
	}
	return v, nil
}

// boolean passes native booleans through and matches everything else as a
// whole token.
func (e *Engine) boolean(c Cell) (value, ok bool) {
	if b, isBool := c.AsBool(); isBool {
		return b, true
	}
	if c.IsNull() {
		return false, false
	}
	return e.rules.boolean(c.normalized())
}

// ParseBoolean applies the availability token rules to a single string.
func (e *Engine) ParseBoolean(s string) (value, ok bool) {
	return e.boolean(Text(s))
}

func missing(f Field, msg string) *FieldError {
	return &FieldError{Field: f, Message: fmt.Sprintf("%s; %s", MsgMissingColumn, msg)}
}

func lookup(cols Columns, data Row, f Field) (Cell, bool) {
	i, ok := cols.Index(f)
	if !ok {
		return Null(), false
	}
	return data.at(i), true
}

func syntheticHeader() Row {
	row := make(Row, len(Fields))
	for i, f := range Fields {
		row[i] = Text(string(f))
	}
	return row
}

func headerText(row Row) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = strings.TrimSpace(c.String())
	}
	return out
}
