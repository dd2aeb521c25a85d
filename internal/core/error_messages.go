package core

// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// Typed errors are matched first with errors.As / errors.Is. Anything else
// falls through to case-insensitive substring patterns on the error text.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: Workbook exceeds the upload size limit
//	          Action: Remove extra sheets or rows and upload again
//	          Matches: *FileTooLargeError, "file too large"
//
//	FILE002 - Invalid workbook: File could not be read as a spreadsheet
//	          Action: Save the file as .xlsx and upload again
//	          Matches: *extract.DecodeError, "invalid file"
//
//	FILE004 - No file: No file was selected
//	          Action: Please select a workbook to upload
//	          Matches: ErrNoFile, "no file provided"
//
//	FILE005 - Empty workbook: The workbook has no data
//	          Action: Fill in the header and one data row
//	          Matches: ErrEmptyFile, empty-grid *extract.StructureError
//
//	FILE006 - Unsupported type: File extension is not accepted
//	          Action: Upload an .xlsx or .xls file
//	          Matches: *UnsupportedFileError
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Missing data row: The header has no data row beneath it
//	         Action: Add the candidate's values in the row below the header
//	         Matches: missing-data-row *extract.StructureError
//
//	VAL002 - Invalid fields: One or more workbook fields could not be read
//	         Action: Check the listed fields against the expected format
//	         Matches: extract.FieldErrors
//
//	VAL003 - Invalid input: The request has invalid or missing fields
//	         Action: Correct the listed fields and try again
//	         Matches: *InputError
//
// # Candidate Errors (CAN001-CAN099)
//
//	CAN001 - Not found: No candidate has this id
//	         Action: Refresh the list; the candidate may have been deleted
//	         Matches: ErrNotFound
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL002 - System busy: Too many uploads in progress
//	         Action: Please wait a moment and try again
//	         Matches: ErrTooManyUploads
//
//	UPL004 - Request cancelled: Request was cancelled
//	         Action: Please try again
//	         Matches: context.Canceled, "context canceled"
//
//	UPL005 - Request timeout: Request timed out
//	         Action: Please try again
//	         Matches: context.DeadlineExceeded, "context deadline exceeded"
//
// # Database Errors (DB001-DB099)
//
//	DB004 - Connection refused: Unable to connect to database
//	DB005 - Connection reset: Database connection was interrupted
//	DB006 - Timeout: Operation timed out
//	DB007 - Check violation: A stored value broke a table constraint
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # For Support Staff
//
// When a user reports an error code:
//  1. Look up the code in this reference
//  2. Review the suggested action to guide the user
//  3. If ERR000, check application logs for the original technical error

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/talent/internal/extract"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

var (
	msgFileTooLarge = UserMessage{
		Message: "File exceeds the upload size limit",
		Action:  "Remove extra sheets or rows and upload again",
		Code:    "FILE001",
	}
	msgInvalidFile = UserMessage{
		Message: "File could not be read as a spreadsheet",
		Action:  "Save the file as .xlsx and upload again",
		Code:    "FILE002",
	}
	msgNoFile = UserMessage{
		Message: "No file was selected",
		Action:  "Please select a workbook to upload",
		Code:    "FILE004",
	}
	msgEmptyFile = UserMessage{
		Message: "The workbook has no data",
		Action:  "Fill in the header and one data row",
		Code:    "FILE005",
	}
	msgUnsupportedFile = UserMessage{
		Message: "File type is not supported",
		Action:  "Upload an .xlsx or .xls file",
		Code:    "FILE006",
	}
	msgMissingDataRow = UserMessage{
		Message: "The header has no data row beneath it",
		Action:  "Add the candidate's values in the row below the header",
		Code:    "VAL001",
	}
	msgFieldErrors = UserMessage{
		Message: "Some fields in the workbook could not be read",
		Action:  "Check the listed fields against the expected format",
		Code:    "VAL002",
	}
	msgInvalidInput = UserMessage{
		Message: "The request has invalid or missing fields",
		Action:  "Correct the listed fields and try again",
		Code:    "VAL003",
	}
	msgNotFound = UserMessage{
		Message: "Candidate not found",
		Action:  "Refresh the list; the candidate may have been deleted",
		Code:    "CAN001",
	}
	msgBusy = UserMessage{
		Message: "System is busy processing other uploads",
		Action:  "Please wait a moment and try again",
		Code:    "UPL002",
	}
	msgCancelled = UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "UPL004",
	}
	msgDeadline = UserMessage{
		Message: "Request timed out",
		Action:  "Please try again",
		Code:    "UPL005",
	}
)

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns catch errors that arrive untyped, typically from the driver.
// The first matching pattern wins, so more specific patterns come first.
var errorPatterns = []errorPattern{
	{pattern: "file too large", msg: msgFileTooLarge},
	{pattern: "invalid file", msg: msgInvalidFile},
	{pattern: "no file provided", msg: msgNoFile},
	{pattern: "context canceled", msg: msgCancelled},
	{pattern: "context deadline exceeded", msg: msgDeadline},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "violates check constraint",
		msg: UserMessage{
			Message: "A value is outside the allowed range",
			Action:  "Check tier and years of experience",
			Code:    "DB007",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It returns the zero UserMessage for a nil error.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	if msg, ok := mapTyped(err); ok {
		return msg
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

func mapTyped(err error) (UserMessage, bool) {
	var (
		tooLarge    *FileTooLargeError
		unsupported *UnsupportedFileError
		input       *InputError
		decode      *extract.DecodeError
		structure   *extract.StructureError
		fields      extract.FieldErrors
	)

	switch {
	case errors.As(err, &tooLarge):
		msg := msgFileTooLarge
		msg.Message = fmt.Sprintf("File exceeds the %s upload limit", formatBytes(tooLarge.Limit))
		return msg, true
	case errors.As(err, &unsupported):
		return msgUnsupportedFile, true
	case errors.Is(err, ErrNoFile):
		return msgNoFile, true
	case errors.Is(err, ErrEmptyFile):
		return msgEmptyFile, true
	case errors.As(err, &decode):
		return msgInvalidFile, true
	case errors.As(err, &structure):
		if structure.Reason == extract.ReasonMissingDataRow {
			return msgMissingDataRow, true
		}
		return msgEmptyFile, true
	case errors.As(err, &fields):
		return msgFieldErrors, true
	case errors.As(err, &input):
		return msgInvalidInput, true
	case errors.Is(err, ErrNotFound):
		return msgNotFound, true
	case errors.Is(err, ErrTooManyUploads):
		return msgBusy, true
	case errors.Is(err, context.Canceled):
		return msgCancelled, true
	case errors.Is(err, context.DeadlineExceeded):
		return msgDeadline, true
	}
	return UserMessage{}, false
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
