package web

import (
	"net/http"

	"github.com/JonMunkholm/talent/internal/core"
)

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var p core.CreateParams
	if err := decodeJSON(w, r, &p); err != nil {
		s.respondError(w, r, err)
		return
	}

	c, err := s.service.Create(r.Context(), p)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, c)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	p, err := s.parseListParams(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	page, err := s.service.List(r.Context(), p)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, page)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	c, err := s.service.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, c)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var p core.UpdateParams
	if err := decodeJSON(w, r, &p); err != nil {
		s.respondError(w, r, err)
		return
	}

	c, err := s.service.Update(r.Context(), id, p)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, c)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.service.Delete(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleHistory lists recorded changes to a candidate, newest first.
// History survives deletion, so an unknown id yields an empty list.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	entries, err := s.service.History(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, entries)
}

// handleStatistics serves the dashboard summary figures.
func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Statistics(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, stats)
}
