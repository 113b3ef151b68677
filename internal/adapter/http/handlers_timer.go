package adapthttp

import (
	"net/http"

	"tesnim/internal/domain"
)

func (s *Server) handleTimerSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner := userFrom(ctx).ID

	switch r.Method {
	case http.MethodGet:
		st, err := s.svc.Timer.Settings(ctx, owner)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, st)

	case http.MethodPut:
		var body struct {
			Settings domain.TimerSettings `json:"settings"`
		}
		if err := parseJSON(r, &body); err != nil {
			writeError(w, err)
			return
		}
		st, err := s.svc.Timer.SaveSettings(ctx, owner, body.Settings)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, st)

	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleTimerSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var fs domain.FocusSession
	if err := parseJSON(r, &fs); err != nil {
		writeError(w, err)
		return
	}
	if err := s.svc.Timer.AddSession(r.Context(), userFrom(r.Context()).ID, fs); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true})
}

func (s *Server) handleTimerStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	stats, err := s.svc.Timer.Stats(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
