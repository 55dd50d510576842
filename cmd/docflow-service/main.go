package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/BaraaHazzaa/DocuMint/internal/archive"
	"github.com/BaraaHazzaa/DocuMint/internal/config"
	"github.com/BaraaHazzaa/DocuMint/internal/httpserver"
	"github.com/BaraaHazzaa/DocuMint/internal/notify"
	"github.com/BaraaHazzaa/DocuMint/internal/store"
	"github.com/BaraaHazzaa/DocuMint/internal/workflow"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[startup] config load: %v", err)
	}

	var st store.Store
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("[startup] db open: %v", err)
		}
		defer db.Close()
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)
		if err := db.Ping(); err != nil {
			log.Fatalf("[startup] db ping: %v", err)
		}
		st = store.NewPGStore(db)
	} else {
		log.Printf("[startup] no DATABASE_URL set, using in-memory store")
		st = store.NewMemoryStore()
	}

	var publisher notify.Publisher = notify.LogPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp, err := notify.NewKafkaPublisher(notify.KafkaPublisherConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
		})
		if err != nil {
			log.Fatalf("[startup] kafka publisher init: %v", err)
		}
		publisher = kp
	}
	notifier := notify.NewService(publisher, notify.ServiceConfig{})
	defer notifier.Close()

	var archiver archive.Archiver
	if cfg.ArchiveBucket != "" {
		archiver, err = archive.NewS3Archiver(context.Background(), cfg.ArchiveBucket, cfg.ArchivePrefix)
		if err != nil {
			log.Fatalf("[startup] s3 archiver init: %v", err)
		}
	}

	engine := workflow.New(st, notifier, archiver, workflow.Config{})
	server := httpserver.New(cfg, engine, st)

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: server.Router(),
	}

	go func() {
		log.Printf("DocuMint workflow service listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	waitForShutdown(httpServer)
}

func waitForShutdown(srv *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
