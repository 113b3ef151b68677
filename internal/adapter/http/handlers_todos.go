package adapthttp

import (
	"net/http"

	"tesnim/internal/domain"
)

func (s *Server) listTodos(w http.ResponseWriter, r *http.Request, f domain.TodoFilter) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	todos, err := s.svc.Todos.List(r.Context(), userFrom(r.Context()).ID, f)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, todos)
}

func (s *Server) handleTodos(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var in domain.TodoInput
		if err := parseJSON(r, &in); err != nil {
			writeError(w, err)
			return
		}
		t, err := s.svc.Todos.Create(r.Context(), userFrom(r.Context()).ID, in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, t)
		return
	}

	q := r.URL.Query()
	s.listTodos(w, r, domain.TodoFilter{
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
		Tag:      q.Get("tag"),
		DueDate:  q.Get("dueDate"),
	})
}

func (s *Server) handleTodosByStatus(w http.ResponseWriter, r *http.Request) {
	s.listTodos(w, r, domain.TodoFilter{Status: r.PathValue("status")})
}

func (s *Server) handleTodosByPriority(w http.ResponseWriter, r *http.Request) {
	s.listTodos(w, r, domain.TodoFilter{Priority: r.PathValue("priority")})
}

func (s *Server) handleTodosByTag(w http.ResponseWriter, r *http.Request) {
	s.listTodos(w, r, domain.TodoFilter{Tag: r.PathValue("tag")})
}

func (s *Server) handleTodosByDueDate(w http.ResponseWriter, r *http.Request) {
	day := r.URL.Query().Get("dueDate")
	if day == "" {
		writeError(w, domain.NewAPIError(http.StatusBadRequest, domain.CodeValidation, "dueDate", "dueDate is required"))
		return
	}
	s.listTodos(w, r, domain.TodoFilter{DueDate: day})
}

func (s *Server) handleTodo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, id := userFrom(ctx).ID, r.PathValue("id")

	switch r.Method {
	case http.MethodGet:
		t, err := s.svc.Todos.Get(ctx, owner, id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, t)

	case http.MethodPut, http.MethodPatch:
		body, err := readBody(r)
		if err != nil {
			writeError(w, err)
			return
		}
		t, err := s.svc.Todos.Update(ctx, owner, id, body)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, t)

	case http.MethodDelete:
		if err := s.svc.Todos.Delete(ctx, owner, id); err != nil {
			writeError(w, err)
			return
		}
		writeOK(w)

	default:
		methodNotAllowed(w)
	}
}
