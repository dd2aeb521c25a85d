package web

// errors.go provides unified error response handling for the web layer.
//
// Every failure goes through respondError, which:
//  1. Maps the error to a core.UserMessage (code, message, action)
//  2. Picks the HTTP status from the code
//  3. Logs the technical error with the request ID for correlation
//  4. Renders JSON for API clients, an HTML fragment for HTMX requests,
//     and plain text otherwise

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/talent/internal/core"
	"github.com/JonMunkholm/talent/internal/extract"
	"github.com/JonMunkholm/talent/internal/logging"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
// Fields carries per-field problems for VAL002 and VAL003.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
	Fields  any    `json:"fields,omitempty"`
}

// statusByCode maps error codes to HTTP status codes. Unlisted codes are 500.
var statusByCode = map[string]int{
	"FILE001": http.StatusRequestEntityTooLarge,
	"FILE002": http.StatusBadRequest,
	"FILE004": http.StatusBadRequest,
	"FILE005": http.StatusBadRequest,
	"FILE006": http.StatusUnsupportedMediaType,
	"VAL001":  http.StatusUnprocessableEntity,
	"VAL002":  http.StatusUnprocessableEntity,
	"VAL003":  http.StatusBadRequest,
	"CAN001":  http.StatusNotFound,
	"UPL002":  http.StatusServiceUnavailable,
	"UPL004":  http.StatusBadRequest,
	"UPL005":  http.StatusGatewayTimeout,
	"DB004":   http.StatusServiceUnavailable,
	"DB005":   http.StatusServiceUnavailable,
	"DB006":   http.StatusServiceUnavailable,
	"DB007":   http.StatusBadRequest,
	"RATE001": http.StatusTooManyRequests,
}

// statusFor returns the HTTP status for a mapped error.
func statusFor(msg core.UserMessage) int {
	if status, ok := statusByCode[msg.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// respondError handles error responses with user-friendly messages.
// It logs the technical error server-side and returns an appropriate response
// based on the request type (HTMX, JSON, or plain text).
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	userMsg := core.MapError(err)
	statusCode := statusFor(userMsg)

	log := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if statusCode >= http.StatusInternalServerError {
		log.Error("request error", attrs...)
	} else {
		log.Warn("request rejected", attrs...)
	}

	if statusCode == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "5")
	}

	switch {
	case isHTMX(r):
		renderErrorPartial(w, r, userMsg, statusCode)
	case wantsJSON(r):
		respondErrorJSON(w, userMsg, fieldDetails(err), statusCode)
	default:
		respondErrorText(w, err, statusCode)
	}
}

// fieldDetails extracts the per-field problems carried by err, if any.
func fieldDetails(err error) any {
	var fields extract.FieldErrors
	if errors.As(err, &fields) {
		return fields
	}
	var input *core.InputError
	if errors.As(err, &input) {
		return input.Errors
	}
	return nil
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, fields any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
		Fields:  fields,
	})
}

// respondErrorText writes the message, code and suggested action as text.
func respondErrorText(w http.ResponseWriter, err error, statusCode int) {
	http.Error(w, core.FormatUserError(err), statusCode)
}

// renderErrorPartial renders an HTMX-compatible error fragment.
func renderErrorPartial(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := ErrorAlert(msg).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render error partial", "error", err)
	}
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path == "/api"
}
