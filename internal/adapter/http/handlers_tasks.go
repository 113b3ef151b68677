package adapthttp

import (
	"net/http"

	"tesnim/internal/domain"
)

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner := userFrom(ctx).ID

	switch r.Method {
	case http.MethodGet:
		list, err := s.svc.Tasks.List(ctx, owner)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)

	case http.MethodPost:
		var in domain.TaskInput
		if err := parseJSON(r, &in); err != nil {
			writeError(w, err)
			return
		}
		t, err := s.svc.Tasks.Create(ctx, owner, in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, t)

	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, id := userFrom(ctx).ID, r.PathValue("id")

	switch r.Method {
	case http.MethodPut, http.MethodPatch:
		body, err := readBody(r)
		if err != nil {
			writeError(w, err)
			return
		}
		t, err := s.svc.Tasks.Update(ctx, owner, id, body)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, t)

	case http.MethodDelete:
		if err := s.svc.Tasks.Delete(ctx, owner, id); err != nil {
			writeError(w, err)
			return
		}
		writeOK(w)

	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleTaskStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	stats, err := s.svc.Tasks.Stats(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
