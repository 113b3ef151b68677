// Command tesnim is a terminal client for the tesnim productivity API:
// sessions, tasks, calendar events, todos and a pomodoro timer.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"tesnim/internal/adapter/memory"
	"tesnim/internal/adapter/postgres"
	redisstore "tesnim/internal/adapter/redis"
	"tesnim/internal/adapter/sqlite"
	"tesnim/internal/config"
	"tesnim/internal/domain"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("tesnim: ")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, closeKV, err := openKV(ctx, cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}

	c := newCLI(os.Stdout, kv, cfg.APIBaseURL, cfg.Timeout())
	err = c.run(ctx, os.Args[1:])
	if cerr := closeKV(); cerr != nil {
		log.Printf("close store: %v", cerr)
	}
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if errors.Is(err, errUsage) {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

// openKV opens the store selected by STORE_DRIVER.
func openKV(ctx context.Context, cfg *config.Config) (domain.KVStore, func() error, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return memory.NewKV(), func() error { return nil }, nil
	case config.DriverSQLite:
		kv, err := sqlite.Open(cfg.StorePath)
		if err != nil {
			return nil, nil, err
		}
		return kv, kv.Close, nil
	case config.DriverPostgres:
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("db open: %w", err)
		}
		return db.KV(), db.Close, nil
	case config.DriverRedis:
		client, err := redisstore.Connect(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return redisstore.NewKV(client, cfg.RedisPrefix), client.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
