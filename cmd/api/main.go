package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/shinyyama/village-market/internal/config"
	"github.com/shinyyama/village-market/internal/db"
	"github.com/shinyyama/village-market/internal/identity"
	"github.com/shinyyama/village-market/internal/server"
	"github.com/shinyyama/village-market/internal/session"
	"github.com/shinyyama/village-market/internal/storage"
)

var (
	gitSHA    = "dev"
	buildTime = ""
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func run() error {
	_ = godotenv.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	conn, err := db.ConnectWithRetry(ctx, cfg, db.StartupRetry)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if err := db.Close(conn); err != nil {
			log.Printf("db close error: %v", err)
		}
	}()
	if cfg.AutoMigrate {
		if err := db.Migrate(conn); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
	}

	deps := server.Deps{
		DB:     conn,
		Config: cfg,
		Issuer: session.NewIssuer(cfg.SessionSecret, cfg.SessionTTL),
		SHA:    gitSHA,
		Build:  buildTime,
	}

	if cfg.FirebaseProjectID != "" {
		v, err := identity.NewFirebaseVerifier(ctx, cfg.FirebaseProjectID, cfg.CredentialsFile)
		if err != nil {
			log.Printf("firebase disabled: %v", err)
		} else {
			deps.Firebase = v
		}
	}
	if cfg.LineEnabled() {
		deps.Line = identity.NewLineProvider(cfg.LineClientID, cfg.LineClientSecret, cfg.LineRedirectURL)
	}
	if cfg.StorageBucket != "" {
		up, err := storage.NewGCSUploader(ctx, cfg.StorageBucket, cfg.CredentialsFile)
		if err != nil {
			log.Printf("storage disabled: %v", err)
		} else {
			defer up.Close()
			deps.Uploader = up
		}
	}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("redis ping failed, rate limiting fails open until it recovers: %v", err)
		}
		deps.Redis = rdb
	}

	srv := server.New(deps)
	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Printf("starting server on %s", addr)
		errCh <- srv.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
