package main

import (
	"flag"
	"log"
	"os"

	"SETPulse/internal/di"
	"SETPulse/pkg/config"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "config.yaml", "config file path")
	flag.Parse()

	// Load config
	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s port=%d stream=%v", cfg.Environment, cfg.Server.Port, cfg.Stream.Enabled)

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
