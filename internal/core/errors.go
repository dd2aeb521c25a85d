package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when no candidate has the requested id.
	ErrNotFound = errors.New("candidate not found")

	// ErrNoFile is returned when an upload carries no workbook.
	ErrNoFile = errors.New("no file provided")

	// ErrEmptyFile is returned for a zero-byte upload.
	ErrEmptyFile = errors.New("empty file")
)

// AllowedExtensions lists the workbook extensions accepted for upload.
var AllowedExtensions = []string{".xlsx", ".xls"}

// FileTooLargeError is returned when an upload exceeds the size limit.
type FileTooLargeError struct {
	Size  int64
	Limit int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("file too large: %d bytes exceeds limit of %d", e.Size, e.Limit)
}

// UnsupportedFileError is returned when an upload has an extension other
// than those in AllowedExtensions.
type UnsupportedFileError struct {
	Name string
}

func (e *UnsupportedFileError) Error() string {
	return fmt.Sprintf("unsupported file type %q: expected one of %s",
		e.Name, strings.Join(AllowedExtensions, ", "))
}

// InputError carries every problem found in a create, update or list request.
type InputError struct {
	Errors []ValidationError
}

func (e *InputError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, v := range e.Errors {
		msgs[i] = v.Error()
	}
	return "invalid input: " + strings.Join(msgs, "; ")
}
