// Command tesnim-devserver serves the tesnim REST API for local development
// and end-to-end testing of the client.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"

	adapthttp "tesnim/internal/adapter/http"
	"tesnim/internal/adapter/memory"
	"tesnim/internal/adapter/postgres"
	"tesnim/internal/backend"
	"tesnim/internal/config"
	"tesnim/internal/domain"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	storage, closeStorage, err := openStorage(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}

	secret := cfg.JWTSecret
	if secret == "" {
		secret = randomSecret()
		log.Printf("[devserver] JWT_SECRET not set, using a random secret; tokens will not survive a restart")
	}

	svc := backend.New(storage, backend.TokenConfig{
		Secret:    secret,
		Issuer:    cfg.JWTIssuer,
		AccessTTL: cfg.AccessTTL(),
	})
	svc.Auth.SetBcryptCost(cfg.BcryptCost)

	ctx := context.Background()
	if cfg.SeedDemoUser {
		if err := svc.Auth.SeedDemoUser(ctx); err != nil {
			log.Fatalf("seed demo user: %v", err)
		}
		log.Printf("[devserver] demo user %s ready", backend.DemoEmail)
	}

	srv := adapthttp.New(svc)
	if cfg.OIDCEnabled() {
		oc, err := adapthttp.NewOIDCConfig(ctx, cfg.OIDCIssuer, cfg.OIDCClientID, cfg.OIDCClientSecret, cfg.OIDCRedirectURL)
		if err != nil {
			log.Fatalf("oidc: %v", err)
		}
		srv = srv.WithOIDC(oc)
		log.Printf("[devserver] SSO enabled via %s", cfg.OIDCIssuer)
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("[devserver] listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	wait := gfshutdown.GracefulShutdown(ctx, cfg.GracePeriod(), map[string]gfshutdown.Operation{
		"http-server": func(ctx context.Context) error {
			log.Println("[devserver] shutting down")
			return httpServer.Shutdown(ctx)
		},
		"storage": func(context.Context) error {
			return closeStorage()
		},
	})

	exitCode := <-wait
	log.Printf("[devserver] exited with code %d", exitCode)
	os.Exit(exitCode)
}

// openStorage uses PostgreSQL when connStr is set and process memory otherwise.
func openStorage(connStr string) (backend.Storage, func() error, error) {
	if connStr == "" {
		log.Printf("[devserver] DATABASE_URL not set, using in-memory storage")
		db := memory.New()
		return backend.Storage{
			Accounts: db,
			Tokens:   db.NewTokenRepo(),
			Tasks:    memory.NewTable[domain.Task](),
			Events:   memory.NewTable[domain.Event](),
			Todos:    memory.NewTable[domain.Todo](),
			Timer:    db,
		}, func() error { return nil }, nil
	}

	db, err := postgres.Open(connStr)
	if err != nil {
		return backend.Storage{}, nil, err
	}
	return backend.Storage{
		Accounts: db,
		Tokens:   db.NewTokenRepo(),
		Tasks:    postgres.NewTable[domain.Task](db, "task"),
		Events:   postgres.NewTable[domain.Event](db, "event"),
		Todos:    postgres.NewTable[domain.Todo](db, "todo"),
		Timer:    db,
	}, db.Close, nil
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		log.Fatalf("random secret: %v", err)
	}
	return hex.EncodeToString(b)
}
