package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"tesnim/internal/domain"
)

func TestAccountRepository(t *testing.T) {
	db := New()
	ctx := context.Background()

	a := &domain.Account{User: domain.User{ID: "u1", Email: "Test@Mail.com"}, PasswordHash: "h"}
	if err := db.Create(ctx, a); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}

	if err := db.Create(ctx, &domain.Account{User: domain.User{ID: "u2", Email: "test@mail.com"}}); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected ErrConflict for duplicate email, got %v", err)
	}

	got, err := db.GetByEmail(ctx, "test@mail.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.ID != "u1" {
		t.Errorf("expected u1, got %s", got.ID)
	}

	got.IsEmailVerified = true
	if err := db.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	again, _ := db.GetByID(ctx, "u1")
	if !again.IsEmailVerified {
		t.Error("expected update to persist")
	}

	if _, err := db.GetByID(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	count, _ := db.Count(ctx)
	if count != 1 {
		t.Errorf("expected 1 account, got %d", count)
	}
}

func TestTokenRepository(t *testing.T) {
	db := New()
	repo := db.NewTokenRepo()
	ctx := context.Background()
	now := time.Now()

	_ = repo.Create(ctx, domain.TokenRecord{Kind: domain.TokenRefresh, Hash: "a", UserID: "u1", ExpiresAt: now.Add(time.Hour)})
	_ = repo.Create(ctx, domain.TokenRecord{Kind: domain.TokenRefresh, Hash: "b", UserID: "u1", ExpiresAt: now.Add(-time.Second)})
	_ = repo.Create(ctx, domain.TokenRecord{Kind: domain.TokenReset, Hash: "c", UserID: "u1", ExpiresAt: now.Add(time.Hour)})

	rec, err := repo.Consume(ctx, domain.TokenRefresh, "a", now)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if rec.UserID != "u1" {
		t.Errorf("expected u1, got %s", rec.UserID)
	}

	// Single use
	if _, err := repo.Consume(ctx, domain.TokenRefresh, "a", now); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected second consume to fail, got %v", err)
	}

	// Expired
	if _, err := repo.Consume(ctx, domain.TokenRefresh, "b", now); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected expired token to fail, got %v", err)
	}

	// Kind mismatch
	if _, err := repo.Consume(ctx, domain.TokenRefresh, "c", now); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected kind mismatch to fail, got %v", err)
	}

	_ = repo.DeleteForUser(ctx, domain.TokenReset, "u1")
	if _, err := repo.Consume(ctx, domain.TokenReset, "c", now); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected revoked token to fail, got %v", err)
	}
}

func TestTable(t *testing.T) {
	tbl := NewTable[domain.Task]()
	ctx := context.Background()

	_ = tbl.Put(ctx, "u1", domain.Task{ID: "1", Title: "a"})
	_ = tbl.Put(ctx, "u1", domain.Task{ID: "2", Title: "b"})
	_ = tbl.Put(ctx, "u1", domain.Task{ID: "1", Title: "a2"})

	rows, _ := tbl.List(ctx, "u1")
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Title != "a2" {
		t.Errorf("expected replace in place, got %q", rows[0].Title)
	}

	// Other owner sees nothing
	other, _ := tbl.List(ctx, "u2")
	if len(other) != 0 {
		t.Error("expected 0 rows for other owner")
	}
	if _, err := tbl.Get(ctx, "u2", "1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound across owners, got %v", err)
	}

	if err := tbl.Delete(ctx, "u1", "1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := tbl.Delete(ctx, "u1", "1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestTimerRepository(t *testing.T) {
	db := New()
	ctx := context.Background()

	if _, err := db.GetSettings(ctx, "u1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	_ = db.SaveSettings(ctx, "u1", domain.DefaultTimerSettings())
	s, err := db.GetSettings(ctx, "u1")
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if s.FocusTime != 25*60 {
		t.Errorf("expected 1500, got %d", s.FocusTime)
	}

	now := time.Now()
	_ = db.AddSession(ctx, "u1", domain.FocusSession{Duration: 60, Timestamp: now.Add(-time.Hour), Completed: true})
	_ = db.AddSession(ctx, "u1", domain.FocusSession{Duration: 120, Timestamp: now, Completed: true})

	sessions, _ := db.ListSessions(ctx, "u1")
	if len(sessions) != 2 || sessions[0].Duration != 120 {
		t.Errorf("expected newest first, got %+v", sessions)
	}
}

func TestKV(t *testing.T) {
	kv := NewKV()
	ctx := context.Background()

	if _, ok, _ := kv.Get(ctx, "k"); ok {
		t.Error("expected miss")
	}
	_ = kv.SetMany(ctx, map[string]string{"a": "1", "b": "2"})
	_ = kv.Set(ctx, "c", "3")
	if v, ok, _ := kv.Get(ctx, "b"); !ok || v != "2" {
		t.Errorf("expected b=2, got %q %v", v, ok)
	}
	if err := kv.Delete(ctx, "a", "b", "missing"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if kv.Len() != 1 {
		t.Errorf("expected 1 key left, got %d", kv.Len())
	}
}
