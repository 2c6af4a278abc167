package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"ShortScan/internal/di"
	"ShortScan/internal/trace"
	"ShortScan/pkg/config"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	// Load config
	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if err := trace.Init(cfg.Tracing.Enabled, os.Stderr); err != nil {
		log.Fatalf("trace init failed: %v", err)
	}

	// Wire DI: Initialize all dependencies
	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	// Run application (blocks until done or signalled)
	runErr := app.Run()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := trace.Shutdown(ctx); err != nil {
		log.Printf("trace shutdown: %v", err)
	}

	if runErr != nil {
		log.Printf("app error: %v", runErr)
		cancel()
		os.Exit(1)
	}
}
