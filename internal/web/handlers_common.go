package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JonMunkholm/talent/internal/core"
)

// multipartOverhead is added to the file size limit to leave room for the
// other form fields and part headers.
const multipartOverhead = 1 << 20

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 64 << 10

// parseIntParam parses an integer query parameter. A missing parameter
// yields def; a non-integer is reported to v.
func parseIntParam(r *http.Request, name string, def int, v *[]core.ValidationError) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		*v = append(*v, core.ValidationError{Field: name, Value: raw, Message: "must be an integer"})
		return def
	}
	return n
}

// parseBoolParam parses an optional boolean query parameter. Any token the
// extraction engine accepts (true, sí, 1, ...) is valid.
func (s *Server) parseBoolParam(r *http.Request, name string, v *[]core.ValidationError) *bool {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil
	}
	b, ok := s.service.Engine().ParseBoolean(raw)
	if !ok {
		*v = append(*v, core.ValidationError{Field: name, Value: raw, Message: "must be a boolean"})
		return nil
	}
	return &b
}

// parseListParams reads listing parameters from the query string. The tier
// filter is accepted as either "tier" or "seniority".
func (s *Server) parseListParams(r *http.Request) (core.ListParams, error) {
	var problems []core.ValidationError
	q := r.URL.Query()

	tier := q.Get("tier")
	if tier == "" {
		tier = q.Get("seniority")
	}

	p := core.ListParams{
		Page:         parseIntParam(r, "page", 0, &problems),
		Limit:        parseIntParam(r, "limit", 0, &problems),
		Search:       q.Get("search"),
		Tier:         tier,
		Availability: s.parseBoolParam(r, "availability", &problems),
		SortBy:       q.Get("sortBy"),
		SortOrder:    q.Get("sortOrder"),
	}
	if len(problems) > 0 {
		return core.ListParams{}, &core.InputError{Errors: problems}
	}
	return p, nil
}

// parseID reads the {id} URL parameter. A malformed id cannot name a
// candidate, so it is reported as not found.
func parseID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse id %q: %w", chi.URLParam(r, "id"), core.ErrNotFound)
	}
	return id, nil
}

// decodeJSON decodes a JSON request body into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &core.InputError{Errors: []core.ValidationError{{
			Field:   "body",
			Message: "invalid JSON: " + err.Error(),
		}}}
	}
	return nil
}

// readUpload reads the "file" part of a multipart form, together with the
// other form values. The body is capped slightly above the file size limit;
// a file over the limit itself is left to the service to reject.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (core.Upload, error) {
	limit := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	if err := r.ParseMultipartForm(limit + multipartOverhead); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return core.Upload{}, &core.FileTooLargeError{Size: r.ContentLength, Limit: limit}
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return core.Upload{}, core.ErrNoFile
		}
		return core.Upload{}, fmt.Errorf("parse multipart form: %w", err)
	}

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return core.Upload{}, core.ErrNoFile
	}
	if err != nil {
		return core.Upload{}, fmt.Errorf("read form file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return core.Upload{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return core.Upload{}, &core.FileTooLargeError{Size: header.Size, Limit: limit}
	}

	return core.Upload{FileName: header.Filename, Data: data}, nil
}

// writeWorkbook sends xlsx bytes as a download named name.
func writeWorkbook(w http.ResponseWriter, name string, data []byte) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

// handleUploadQueueStatus returns the current state of the upload limiter.
// Used for monitoring and to check if the system can accept more uploads.
func (s *Server) handleUploadQueueStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.service.UploadLimiterStatus())
}
