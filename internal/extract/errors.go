package extract

import (
	"fmt"
	"strings"
)

// Messages attached to field errors. They are shown to end users verbatim.
const (
	MsgTier              = "must be junior or senior"
	MsgYearsUnparsable   = "unparsable: must be a whole number"
	MsgYearsOutOfRange   = "must be between 0 and 50"
	MsgUnparsableBoolean = "unparseable boolean"
	MsgMissingColumn     = "missing column"
)

// Structure failure reasons.
const (
	ReasonEmptyGrid      = "empty grid"
	ReasonMissingDataRow = "missing data row"
)

// DecodeError reports a byte buffer that is not a readable workbook, or a
// workbook with no sheets.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return "invalid file"
	}
	return fmt.Sprintf("invalid file: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// StructureError reports a grid that cannot hold a record: no rows at all,
// or a header row with nothing beneath it.
type StructureError struct {
	Reason string
}

func (e *StructureError) Error() string { return e.Reason }

// FieldError describes why one logical field could not be recovered.
type FieldError struct {
	Field   Field  `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// FieldErrors is the full set of field failures for one extraction.
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Error()
	}
	return "invalid fields: " + strings.Join(parts, "; ")
}

// Has reports whether f has an error in the set.
func (e FieldErrors) Has(f Field) bool {
	for _, fe := range e {
		if fe.Field == f {
			return true
		}
	}
	return false
}
