package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"rollcall/internal/config"
	"rollcall/internal/journal"
	"rollcall/internal/queue"
	"rollcall/internal/store"
)

// Worker drains sync events from Redis into the Postgres journal.
func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.QueueBackend != "redis" {
		log.Fatal("worker needs QUEUE_BACKEND=redis and REDIS_ADDR; memory mode records in the api process")
	}

	db, err := store.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	repo := journal.NewRepository(db.Client)
	if err := repo.Migrate(ctx); err != nil {
		log.Fatalf("journal migrate failed: %v", err)
	}

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()
	if !redisClient.Healthy(ctx) {
		log.Printf("WARNING: redis at %s not reachable yet, will keep polling", cfg.RedisAddr)
	}

	q := queue.NewRedisQueue(redisClient.Client, cfg.QueueKey)
	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for sync events...")
	n := journal.NewRecorder(repo).Run(ctx, messages)
	log.Printf("worker stopped after recording %d entries", n)
}
