package main

import (
	"context"
	"log"

	"casechat-be/internal/bootstrap"
	"casechat-be/internal/config"
	"casechat-be/internal/server"
	"casechat-be/internal/tracer"
	"casechat-be/pkg/database"
)

func main() {
	// 0. Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Configuration
	cfg := config.Load()

	// 2. Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Dependencies
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Background services
	ctx := context.Background()

	go func() {
		log.Println("Background: Starting Ingest Service...")
		if err := container.IngestService.Consume(ctx); err != nil {
			log.Printf("Background Ingest Error: %v", err)
		}
	}()

	go container.SessionManager.StartSweeper(ctx)

	if container.NotificationService != nil {
		if err := container.NotificationService.Start(); err != nil {
			log.Printf("Background Notification Error: %v", err)
		}
	}

	// 5. HTTP server
	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
