package backend

import "tesnim/internal/domain"

// Storage holds the repositories the services persist to.
type Storage struct {
	Accounts domain.AccountRepository
	Tokens   domain.TokenRepository
	Tasks    domain.ResourceRepository[domain.Task]
	Events   domain.ResourceRepository[domain.Event]
	Todos    domain.ResourceRepository[domain.Todo]
	Timer    domain.TimerRepository
}

// Services bundles every backend service.
type Services struct {
	Auth   *AuthService
	Tasks  *TaskService
	Events *EventService
	Todos  *TodoService
	Timer  *TimerService
}

// New wires the services on top of st.
func New(st Storage, cfg TokenConfig) *Services {
	return &Services{
		Auth:   NewAuthService(st.Accounts, st.Tokens, NewTokenManager(cfg)),
		Tasks:  NewTaskService(st.Tasks),
		Events: NewEventService(st.Events),
		Todos:  NewTodoService(st.Todos),
		Timer:  NewTimerService(st.Timer),
	}
}
