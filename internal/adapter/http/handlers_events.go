package adapthttp

import (
	"net/http"

	"tesnim/internal/domain"
)

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner := userFrom(ctx).ID

	switch r.Method {
	case http.MethodGet:
		var rng domain.EventRange
		var err error
		if rng.Start, err = timeQuery(r, "startDate"); err != nil {
			writeError(w, err)
			return
		}
		if rng.End, err = timeQuery(r, "endDate"); err != nil {
			writeError(w, err)
			return
		}
		events, err := s.svc.Events.List(ctx, owner, rng)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, events)

	case http.MethodPost:
		var in domain.EventInput
		if err := parseJSON(r, &in); err != nil {
			writeError(w, err)
			return
		}
		e, err := s.svc.Events.Create(ctx, owner, in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, e)

	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, id := userFrom(ctx).ID, r.PathValue("id")

	switch r.Method {
	case http.MethodPut, http.MethodPatch:
		body, err := readBody(r)
		if err != nil {
			writeError(w, err)
			return
		}
		e, err := s.svc.Events.Update(ctx, owner, id, body)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, e)

	case http.MethodDelete:
		if err := s.svc.Events.Delete(ctx, owner, id); err != nil {
			writeError(w, err)
			return
		}
		writeOK(w)

	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleEventSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	events, err := s.svc.Events.Sync(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}
