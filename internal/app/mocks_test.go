package app

import (
	"context"
	"errors"
	"net/http"

	"tesnim/internal/adapter/memory"
	"tesnim/internal/credentials"
	"tesnim/internal/domain"
)

type mockAuthAPI struct {
	loginFn          func(ctx context.Context, email, password string) (*domain.AuthResponse, error)
	registerFn       func(ctx context.Context, in domain.RegisterInput) (*domain.AuthResponse, error)
	logoutFn         func(ctx context.Context) error
	refreshFn        func(ctx context.Context, refreshToken string) (domain.TokenPair, error)
	forgotPasswordFn func(ctx context.Context, email string) error
	resetPasswordFn  func(ctx context.Context, token, password string) error
	verifyEmailFn    func(ctx context.Context, token string) error

	refreshCalls int
	logoutCalls  int
}

func (m *mockAuthAPI) Login(ctx context.Context, email, password string) (*domain.AuthResponse, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthAPI) Register(ctx context.Context, in domain.RegisterInput) (*domain.AuthResponse, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, in)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthAPI) Logout(ctx context.Context) error {
	m.logoutCalls++
	if m.logoutFn != nil {
		return m.logoutFn(ctx)
	}
	return nil
}

func (m *mockAuthAPI) RefreshToken(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	m.refreshCalls++
	if m.refreshFn != nil {
		return m.refreshFn(ctx, refreshToken)
	}
	return domain.TokenPair{}, errors.New("not implemented")
}

func (m *mockAuthAPI) ForgotPassword(ctx context.Context, email string) error {
	if m.forgotPasswordFn != nil {
		return m.forgotPasswordFn(ctx, email)
	}
	return nil
}

func (m *mockAuthAPI) ResetPassword(ctx context.Context, token, password string) error {
	if m.resetPasswordFn != nil {
		return m.resetPasswordFn(ctx, token, password)
	}
	return nil
}

func (m *mockAuthAPI) VerifyEmail(ctx context.Context, token string) error {
	if m.verifyEmailFn != nil {
		return m.verifyEmailFn(ctx, token)
	}
	return nil
}

type mockTaskAPI struct {
	listFn   func(ctx context.Context) (*domain.TaskList, error)
	createFn func(ctx context.Context, in domain.TaskInput) (*domain.Task, error)
	updateFn func(ctx context.Context, id string, patch domain.TaskPatch, into *domain.Task) error
	deleteFn func(ctx context.Context, id string) error
	statsFn  func(ctx context.Context) (*domain.TaskStats, error)

	statsCalls int
}

func (m *mockTaskAPI) ListTasks(ctx context.Context) (*domain.TaskList, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return &domain.TaskList{}, nil
}

func (m *mockTaskAPI) CreateTask(ctx context.Context, in domain.TaskInput) (*domain.Task, error) {
	if m.createFn != nil {
		return m.createFn(ctx, in)
	}
	return &domain.Task{ID: "t1", Title: in.Title, Priority: in.Priority, DueDate: in.DueDate}, nil
}

func (m *mockTaskAPI) UpdateTask(ctx context.Context, id string, patch domain.TaskPatch, into *domain.Task) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, patch, into)
	}
	return nil
}

func (m *mockTaskAPI) DeleteTask(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockTaskAPI) TaskStats(ctx context.Context) (*domain.TaskStats, error) {
	m.statsCalls++
	if m.statsFn != nil {
		return m.statsFn(ctx)
	}
	return &domain.TaskStats{}, nil
}

type mockEventAPI struct {
	listFn   func(ctx context.Context, r domain.EventRange) ([]domain.Event, error)
	createFn func(ctx context.Context, in domain.EventInput) (*domain.Event, error)
	updateFn func(ctx context.Context, id string, patch domain.EventPatch, into *domain.Event) error
	deleteFn func(ctx context.Context, id string) error
	syncFn   func(ctx context.Context) ([]domain.Event, error)
}

func (m *mockEventAPI) ListEvents(ctx context.Context, r domain.EventRange) ([]domain.Event, error) {
	if m.listFn != nil {
		return m.listFn(ctx, r)
	}
	return nil, nil
}

func (m *mockEventAPI) CreateEvent(ctx context.Context, in domain.EventInput) (*domain.Event, error) {
	if m.createFn != nil {
		return m.createFn(ctx, in)
	}
	return &domain.Event{ID: "e1", Title: in.Title, StartTime: in.StartTime, EndTime: in.EndTime}, nil
}

func (m *mockEventAPI) UpdateEvent(ctx context.Context, id string, patch domain.EventPatch, into *domain.Event) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, patch, into)
	}
	return nil
}

func (m *mockEventAPI) DeleteEvent(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockEventAPI) SyncGoogleCalendar(ctx context.Context) ([]domain.Event, error) {
	if m.syncFn != nil {
		return m.syncFn(ctx)
	}
	return nil, nil
}

type mockTodoAPI struct {
	listFn     func(ctx context.Context, f domain.TodoFilter) ([]domain.Todo, error)
	byStatusFn func(ctx context.Context, status string) ([]domain.Todo, error)
	getFn      func(ctx context.Context, id string) (*domain.Todo, error)
	createFn   func(ctx context.Context, in domain.TodoInput) (*domain.Todo, error)
	updateFn   func(ctx context.Context, id string, patch domain.TodoPatch, into *domain.Todo) error
	deleteFn   func(ctx context.Context, id string) error
}

func (m *mockTodoAPI) ListTodos(ctx context.Context, f domain.TodoFilter) ([]domain.Todo, error) {
	if m.listFn != nil {
		return m.listFn(ctx, f)
	}
	return nil, nil
}

func (m *mockTodoAPI) TodosByStatus(ctx context.Context, status string) ([]domain.Todo, error) {
	if m.byStatusFn != nil {
		return m.byStatusFn(ctx, status)
	}
	return nil, nil
}

func (m *mockTodoAPI) TodosByPriority(ctx context.Context, priority string) ([]domain.Todo, error) {
	return m.ListTodos(ctx, domain.TodoFilter{Priority: priority})
}

func (m *mockTodoAPI) TodosByTag(ctx context.Context, tag string) ([]domain.Todo, error) {
	return m.ListTodos(ctx, domain.TodoFilter{Tag: tag})
}

func (m *mockTodoAPI) TodosByDueDate(ctx context.Context, day string) ([]domain.Todo, error) {
	return m.ListTodos(ctx, domain.TodoFilter{DueDate: day})
}

func (m *mockTodoAPI) GetTodo(ctx context.Context, id string) (*domain.Todo, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, notFound("todo not found")
}

func (m *mockTodoAPI) CreateTodo(ctx context.Context, in domain.TodoInput) (*domain.Todo, error) {
	if m.createFn != nil {
		return m.createFn(ctx, in)
	}
	return &domain.Todo{ID: "d1", Text: in.Text}, nil
}

func (m *mockTodoAPI) UpdateTodo(ctx context.Context, id string, patch domain.TodoPatch, into *domain.Todo) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, patch, into)
	}
	return nil
}

func (m *mockTodoAPI) DeleteTodo(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockTimerAPI struct {
	settingsFn     func(ctx context.Context) (*domain.TimerSettings, error)
	saveSettingsFn func(ctx context.Context, s domain.TimerSettings) error
	saveSessionFn  func(ctx context.Context, s domain.FocusSession) error
	statsFn        func(ctx context.Context) (*domain.TimerStats, error)
}

func (m *mockTimerAPI) TimerSettings(ctx context.Context) (*domain.TimerSettings, error) {
	if m.settingsFn != nil {
		return m.settingsFn(ctx)
	}
	s := domain.DefaultTimerSettings()
	return &s, nil
}

func (m *mockTimerAPI) SaveTimerSettings(ctx context.Context, s domain.TimerSettings) error {
	if m.saveSettingsFn != nil {
		return m.saveSettingsFn(ctx, s)
	}
	return nil
}

func (m *mockTimerAPI) SaveTimerSession(ctx context.Context, s domain.FocusSession) error {
	if m.saveSessionFn != nil {
		return m.saveSessionFn(ctx, s)
	}
	return nil
}

func (m *mockTimerAPI) TimerStats(ctx context.Context) (*domain.TimerStats, error) {
	if m.statsFn != nil {
		return m.statsFn(ctx)
	}
	return &domain.TimerStats{}, nil
}

func notFound(msg string) error {
	return domain.NewAPIError(http.StatusNotFound, domain.CodeNotFound, "", msg)
}

func newCreds() (*credentials.Store, *memory.KV) {
	kv := memory.NewKV()
	return credentials.New(kv), kv
}
