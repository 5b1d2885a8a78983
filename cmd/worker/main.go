package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"qrattend/internal/audit"
	"qrattend/internal/config"
	"qrattend/internal/store"
)

// Worker drains the audit queue into the logging_logs table so login and
// attendance activity survives restarts of the API process.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q audit.Queue
	if cfg.QueueBackend == "memory" {
		q = audit.NewInMemory(64)
	} else {
		q = audit.NewRedisQueue(redisClient.Client, cfg.AuditQueueKey)
	}

	repo := audit.NewRepository(db.Client)

	events, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for audit events...")
	for evt := range events {
		if err := repo.InsertLog(ctx, evt); err != nil {
			log.Printf("insert log for %s/%s failed: %v", evt.Username, evt.Action, err)
			continue
		}
		log.Printf("logged %s by %s", evt.Action, evt.Username)
	}

	log.Println("worker stopped")
}
