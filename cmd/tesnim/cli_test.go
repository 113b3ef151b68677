package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	adapthttp "tesnim/internal/adapter/http"
	"tesnim/internal/adapter/memory"
	"tesnim/internal/backend"
	"tesnim/internal/domain"
)

type harness struct {
	t       *testing.T
	kv      *memory.KV
	baseURL string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := memory.New()
	svc := backend.New(backend.Storage{
		Accounts: db,
		Tokens:   db.NewTokenRepo(),
		Tasks:    memory.NewTable[domain.Task](),
		Events:   memory.NewTable[domain.Event](),
		Todos:    memory.NewTable[domain.Todo](),
		Timer:    db,
	}, backend.TokenConfig{Secret: "cli-test-secret", Issuer: "tesnim-test"})
	svc.Auth.SetBcryptCost(bcrypt.MinCost)
	require.NoError(t, svc.Auth.SeedDemoUser(context.Background()))

	ts := httptest.NewServer(adapthttp.New(svc).Handler())
	t.Cleanup(ts.Close)
	return &harness{t: t, kv: memory.NewKV(), baseURL: ts.URL + "/api/v1"}
}

// run executes one command as a fresh process would, sharing only the store.
func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	var out bytes.Buffer
	c := newCLI(&out, h.kv, h.baseURL, 5*time.Second)
	c.tick = time.Millisecond
	err := c.run(context.Background(), args)
	return out.String(), err
}

func (h *harness) login() {
	h.t.Helper()
	_, err := h.run("login", "-email", backend.DemoEmail, "-password", backend.DemoPassword)
	require.NoError(h.t, err)
}

var createdID = regexp.MustCompile(`Created \w+ (\S+)\.`)

func idFrom(t *testing.T, out string) string {
	t.Helper()
	m := createdID.FindStringSubmatch(out)
	require.Len(t, m, 2, "no id in %q", out)
	return m[1]
}

func TestLoginAndWhoami(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("login", "-email", backend.DemoEmail, "-password", backend.DemoPassword)
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as test@mail.com (admin).")

	out, err = h.run("whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "role: admin, plan: freemium, verified")
	assert.Contains(t, out, "last login:")
}

func TestLoginInvalidCredentials(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("login", "-email", backend.DemoEmail, "-password", "wrong-password")
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password", err.Error())

	_, err = h.run("whoami")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestCommandsRequireLogin(t *testing.T) {
	h := newHarness(t)
	for _, cmd := range []string{"tasks", "events", "todos", "timer"} {
		_, err := h.run(cmd, "list")
		assert.ErrorIs(t, err, errNotLoggedIn, cmd)
	}
}

func TestLogoutEndsSession(t *testing.T) {
	h := newHarness(t)
	h.login()

	out, err := h.run("logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out.")

	_, err = h.run("tasks")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestUnknownCommand(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("frobnicate")
	assert.ErrorIs(t, err, errUsage)
	_, err = h.run()
	assert.ErrorIs(t, err, errUsage)
}

func TestTaskCommands(t *testing.T) {
	h := newHarness(t)
	h.login()

	out, err := h.run("tasks", "add", "-title", "Write report", "-priority", "high", "-due", "2030-01-02")
	require.NoError(t, err)
	id := idFrom(t, out)

	out, err = h.run("tasks", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Write report")
	assert.Contains(t, out, "2030-01-02")

	_, err = h.run("tasks", "done", id)
	require.NoError(t, err)

	out, err = h.run("tasks", "list", "-filter", "completed")
	require.NoError(t, err)
	assert.Contains(t, out, id)

	out, err = h.run("tasks", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "completed today: 1")

	_, err = h.run("tasks", "list", "-filter", "someday")
	require.Error(t, err)

	_, err = h.run("tasks", "rm", id)
	require.NoError(t, err)
	out, err = h.run("tasks", "list", "-filter", "all")
	require.NoError(t, err)
	assert.Contains(t, out, "No tasks.")
}

func TestTaskAddRequiresTitle(t *testing.T) {
	h := newHarness(t)
	h.login()
	_, err := h.run("tasks", "add", "-title", "  ")
	assert.Error(t, err)
}

func TestTodoCommands(t *testing.T) {
	h := newHarness(t)
	h.login()

	out, err := h.run("todos", "add", "-text", "Buy milk", "-tags", "home, errands")
	require.NoError(t, err)
	id := idFrom(t, out)

	out, err = h.run("todos", "toggle", id)
	require.NoError(t, err)
	assert.Contains(t, out, "is now completed")

	out, err = h.run("todos", "list", "-status", "completed")
	require.NoError(t, err)
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "home,errands")

	_, err = h.run("todos", "rm", "no-such-todo")
	require.Error(t, err)
	assert.Equal(t, "Todo not found", err.Error())
}

func TestEventCommands(t *testing.T) {
	h := newHarness(t)
	h.login()

	out, err := h.run("events", "add", "-title", "Standup", "-start", "2026-03-04 10:00", "-end", "2026-03-04 10:15")
	require.NoError(t, err)
	id := idFrom(t, out)

	out, err = h.run("events", "list", "-view", "month", "-date", "2026-03-20")
	require.NoError(t, err)
	assert.Contains(t, out, "Standup")

	out, err = h.run("events", "list", "-view", "day", "-date", "2026-03-05")
	require.NoError(t, err)
	assert.Contains(t, out, "No events.")

	_, err = h.run("events", "add", "-title", "Backwards", "-start", "2026-03-04 10:00", "-end", "2026-03-04 09:00")
	assert.Error(t, err)

	_, err = h.run("events", "rm", id)
	require.NoError(t, err)
}

func TestTimerCommands(t *testing.T) {
	h := newHarness(t)
	h.login()

	out, err := h.run("timer", "settings", "-focus", "2s", "-short", "1s")
	require.NoError(t, err)
	assert.Contains(t, out, "focus: 2s, short break: 1s")

	out, err = h.run("timer", "start")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "focus: 00:02"), out)
	assert.Contains(t, out, "focus complete, next: shortBreak (00:01)")

	out, err = h.run("timer", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "focus today: 2s (1 sessions)")
}

func TestParseWhen(t *testing.T) {
	for _, s := range []string{"2026-03-04", "2026-03-04 10:30", "2026-03-04T10:30:00Z"} {
		_, err := parseWhen(s)
		assert.NoError(t, err, s)
	}
	_, err := parseWhen("next tuesday")
	assert.Error(t, err)
}
