package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"rollcall/internal/attendance"
	"rollcall/internal/auth"
	"rollcall/internal/config"
	"rollcall/internal/handler"
	"rollcall/internal/httpmiddleware"
	"rollcall/internal/journal"
	"rollcall/internal/queue"
	"rollcall/internal/roster"
	"rollcall/internal/store"
	"rollcall/internal/webhook"
)

func main() {
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	recs, err := attendance.NewStore(roster.SampleRecords())
	if err != nil {
		return err
	}
	svc := attendance.NewService(recs)
	log.Printf("seeded %d records", recs.Len())

	checks := map[string]handler.Checker{}

	// Sync journal (optional)
	var history journal.Reader
	var repo *journal.Repository
	db, err := store.NewDB(ctx, cfg.DatabaseURL)
	switch {
	case errors.Is(err, store.ErrNotConfigured):
		log.Println("DATABASE_URL not set, sync journal disabled")
	case err != nil:
		log.Printf("warning: db not reachable, sync journal disabled: %v", err)
	default:
		defer db.Close()
		repo = journal.NewRepository(db.Client)
		if err := repo.Migrate(ctx); err != nil {
			return err
		}
		history = repo
		checks["db"] = db
	}

	redisClient := store.NewRedis(cfg.RedisAddr)
	if redisClient != nil {
		defer redisClient.Close()
		checks["redis"] = redisClient
	}

	var q queue.Queue
	if cfg.QueueBackend == "redis" {
		q = queue.NewRedisQueue(redisClient.Client, cfg.QueueKey)
	} else if repo != nil {
		// No separate worker in memory mode: record in-process.
		mem := queue.NewInMemory(64)
		msgs, err := mem.Consume(ctx)
		if err != nil {
			return err
		}
		go journal.NewRecorder(repo).Run(ctx, msgs)
		q = mem
	}

	var limiter httpmiddleware.Limiter
	if cfg.RateLimitBackend == "redis" {
		limiter = httpmiddleware.NewRedisWindow(redisClient.Client, cfg.RateLimitPerMin)
	} else {
		limiter = httpmiddleware.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin)
	}

	h := handler.New(handler.Deps{
		Service:      svc,
		Exporter:     webhook.NewExporter(webhook.NewClient(cfg.WebhookTimeout)),
		Issuer:       auth.NewIssuer(cfg.JWTIssuer, cfg.JWTSigningKey, cfg.AccessTTL, cfg.RefreshTTL),
		Publisher:    journal.NewPublisher(q),
		History:      history,
		Checks:       checks,
		PublicOrigin: cfg.PublicOrigin,
	})
	r := handler.NewRouter(h, handler.RouterConfig{
		CORSOrigins: cfg.CORSOrigins,
		Limiter:     limiter,
		TrustProxy:  cfg.TrustProxy,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.WebhookTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}
