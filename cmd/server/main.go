package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/spotshare/spotshare/internal/auth"
	"github.com/spotshare/spotshare/internal/config"
	"github.com/spotshare/spotshare/internal/feed"
	httpserver "github.com/spotshare/spotshare/internal/http"
	"github.com/spotshare/spotshare/internal/imagestore"
	"github.com/spotshare/spotshare/internal/realtime"
	"github.com/spotshare/spotshare/internal/repository"
	"github.com/spotshare/spotshare/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := log.New(os.Stdout, "[spotshare] ", log.LstdFlags|log.Lshortfile)

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	storeOpts := store.Options{
		MaxConns:               int32(cfg.DBMaxConns),
		MinConns:               int32(cfg.DBMinConns),
		MaxConnIdleTime:        time.Duration(cfg.DBMaxIdleSecs) * time.Second,
		MaxConnLifetime:        time.Duration(cfg.DBMaxLifeSecs) * time.Second,
		ConnTimeout:            time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		StatementCacheCapacity: cfg.DBStatementCache,
		Logger:                 logger,
	}

	st, err := store.New(dbCtx, cfg.DBURL, storeOpts)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer st.Close()

	if err := st.Migrate(dbCtx, cfg.MigrationsDir); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	images, err := imagestore.NewDiskStore(cfg.ImageDir, logger)
	if err != nil {
		log.Fatalf("init image store: %v", err)
	}

	repo := repository.New(st)
	hub := realtime.NewHub(logger)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.JWTTTLMins)*time.Minute)

	service := feed.NewService(repo, feed.Options{
		Publisher:      hub,
		Images:         images,
		CascadeWorkers: cfg.CascadeWorkers,
		Logger:         logger,
	})

	server := httpserver.New(cfg, httpserver.Deps{
		Store:   st,
		Repo:    repo,
		Service: service,
		Hub:     hub,
		Images:  images,
		Tokens:  tokens,
		Logger:  logger,
	})

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
			log.Printf("server error: %v", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("graceful shutdown error: %v", err)
	}
	hub.Close()
}
