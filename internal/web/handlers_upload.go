package web

import (
	"fmt"
	"net/http"
	"time"
)

// handleUpload creates a candidate from the multipart fields name and
// surname plus the workbook in "file".
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	upload, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	name, surname := r.FormValue("name"), r.FormValue("surname")
	logFor(r).Info("processing candidate upload",
		"file", upload.FileName,
		"size", len(upload.Data),
	)

	c, err := s.service.CreateFromWorkbook(r.Context(), name, surname, upload)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		w.Header().Set("HX-Trigger", "candidates-changed")
		s.renderComponent(w, r, http.StatusCreated, CandidateCreated(c))
		return
	}
	writeJSONStatus(w, http.StatusCreated, c)
}

// handleExtract runs the extraction engine on an uploaded workbook and
// reports what it found without storing anything.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	upload, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	preview, err := s.service.PreviewWorkbook(r.Context(), upload)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		s.renderComponent(w, r, http.StatusOK, PreviewResult(preview))
		return
	}
	writeJSON(w, preview)
}

func (s *Server) handleExpectedFormat(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.service.ExpectedFormat())
}

func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	data, err := s.service.TemplateWorkbook()
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeWorkbook(w, "candidate_template.xlsx", data)
}

// handleExport streams every candidate matching the list filters as xlsx.
// Paging parameters are ignored.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	p, err := s.parseListParams(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	data, err := s.service.ExportWorkbook(r.Context(), p)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	name := fmt.Sprintf("candidates_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
	writeWorkbook(w, name, data)
}
