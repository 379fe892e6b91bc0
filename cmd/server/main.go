package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/fundsetu/mfdata-backend/internal/api"
	custommiddleware "github.com/fundsetu/mfdata-backend/internal/api/middleware"
	"github.com/fundsetu/mfdata-backend/internal/config"
	"github.com/fundsetu/mfdata-backend/internal/database"
	"github.com/fundsetu/mfdata-backend/internal/importer"
	"github.com/fundsetu/mfdata-backend/internal/repository"
	"github.com/fundsetu/mfdata-backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection and apply migrations
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Create repositories
	fundRepo := repository.NewFundRepository(db)
	factsheetRepo := repository.NewFactSheetRepository(db)
	returnsRepo := repository.NewReturnsRepository(db)
	holdingRepo := repository.NewHoldingRepository(db)
	navRepo := repository.NewNavRepository(db)
	importRunRepo := repository.NewImportRunRepository(db)

	// Create importer and services
	imp := importer.New(db, fundRepo, factsheetRepo, returnsRepo, holdingRepo, navRepo)

	systemService := service.NewSystemService(db)
	fundService := service.NewFundService(fundRepo, factsheetRepo, returnsRepo, holdingRepo, navRepo)
	importService := service.NewImportService(imp, importRunRepo, cfg.Import.DefaultBatchSize)

	// Token auth for import endpoints (disabled when no key is configured)
	var tokenAuth *custommiddleware.TokenAuth
	if cfg.Auth.Key != "" {
		tokenAuth, err = custommiddleware.NewTokenAuth(cfg.Auth.Key, cfg.Auth.TokenTTL)
		if err != nil {
			log.Fatalf("Failed to configure token auth: %v", err)
		}
	} else {
		log.Println("AUTH_TOKEN_KEY not set, import endpoints are unprotected")
	}

	// Create router
	router := api.NewRouter(systemService, fundService, importService, tokenAuth, cfg)

	// Scheduled NAV import
	scheduler := cron.New()
	if cfg.Import.NavWatchDir != "" {
		_, err := scheduler.AddFunc(cfg.Import.NavSchedule, func() {
			if err := importService.ImportNavDirectory(cfg.Import.NavWatchDir); err != nil {
				log.Printf("Scheduled NAV import failed: %v", err)
			}
		})
		if err != nil {
			log.Fatalf("Failed to schedule NAV import: %v", err)
		}
		scheduler.Start()
		log.Printf("Scheduled NAV import from %s (%s)", cfg.Import.NavWatchDir, cfg.Import.NavSchedule)
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Stop the scheduler and wait for any running job
	<-scheduler.Stop().Done()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
