package main

import (
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"creativehub/internal/config"
	"creativehub/internal/dispatch"
	"creativehub/internal/http/handlers"
	"creativehub/internal/http/router"
	"creativehub/internal/repos"
	"creativehub/internal/storage"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	db, err := repos.Open(cfg.DBDSN, cfg.SeedDemo)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	assets, err := storage.New(cfg.CloudinaryURL, cfg.MediaDir)
	if err != nil {
		log.Fatal(err)
	}
	deps := handlers.NewDeps(db, cfg, handlers.Infra{
		Assets:    assets,
		Publisher: dispatch.New(cfg.KafkaBrokers, cfg.KafkaTopic),
	})
	app := router.New(cfg, deps, router.DefaultLimits())

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("[server] listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("[server] shutting down")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("[server] shutdown: %v", err)
	}
	if err := deps.Close(); err != nil {
		log.Printf("[server] close: %v", err)
	}
}
