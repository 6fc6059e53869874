package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hongminglow/fanclub/internal/config"
	"github.com/hongminglow/fanclub/internal/fanclub"
	"github.com/hongminglow/fanclub/internal/localstore"
	"github.com/hongminglow/fanclub/internal/server"
	"github.com/hongminglow/fanclub/internal/storage"
	"github.com/hongminglow/fanclub/internal/storage/memory"
	postgres "github.com/hongminglow/fanclub/internal/storage/postgres"
	"github.com/joho/godotenv"
)

func main() {
	loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("init storage: %v", err)
	}
	defer store.Close()

	srv := server.New(cfg, fanclub.NewService(store))

	go func() {
		log.Printf("fanclub backend (%s storage) listening on %s", cfg.StorageBackend, cfg.HTTPAddress())
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}
}

func openStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	if cfg.StorageBackend == config.StorageMemory {
		kv, err := localstore.Open(cfg.StateFile)
		if err != nil {
			return nil, err
		}
		return memory.New(kv)
	}
	return postgres.NewStore(ctx, cfg.DatabaseURL)
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}
}
