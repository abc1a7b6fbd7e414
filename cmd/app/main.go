package main

import (
	"flag"
	"log"
	"os"

	"github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/di"
	"github.com/pavankpatil043-source/e-chart-Pr-sub001/pkg/config"
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

	log.Printf("env=%s ratelimit=%s history=%v events=%v",
		cfg.Environment, cfg.RateLimit.Backend, cfg.History.Enabled, cfg.Events.Enabled)

	// Wire DI: Initialize all dependencies
	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	// Run application (blocks until signal)
	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
