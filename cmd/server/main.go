package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/mkadlec/ledgersync/internal/config"
	"github.com/mkadlec/ledgersync/internal/db"
	"github.com/mkadlec/ledgersync/internal/export"
	"github.com/mkadlec/ledgersync/internal/ledger"
	"github.com/mkadlec/ledgersync/internal/legacystore"
	"github.com/mkadlec/ledgersync/internal/middleware"
	"github.com/mkadlec/ledgersync/internal/reconcile"
	"github.com/mkadlec/ledgersync/internal/repository"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	conn, err := db.NewConnection(ctx, cfg.DB)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()

	if err := db.RunMigrations(ctx, conn.Pool, "./migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	invoiceRepo := repository.NewInvoiceRepository(conn.Pool)
	syncLogRepo := repository.NewSyncLogRepository(conn.Pool)

	locator := legacystore.NewLocator(cfg.UploadsRoot, cfg.BackupRoot, cfg.LegacyExt)
	syncService := reconcile.NewService(invoiceRepo, syncLogRepo)
	exporter := export.NewService(cfg.ExportDir)

	syncHandler := reconcile.NewHTTPHandler(locator, syncService)
	ledgerHandler := ledger.NewHTTPHandler(locator, exporter)

	mux := http.NewServeMux()
	mux.HandleFunc("/sync/legacy", syncHandler.SyncLegacy)
	mux.HandleFunc("/sync/xml", syncHandler.SyncInterchange)
	mux.HandleFunc("/sync/upload", syncHandler.SyncWorkbook)
	mux.HandleFunc("/ledger/summary", ledgerHandler.Summary)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      corsHandler.Handler(middleware.LoggingMiddleware(mux)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting sync server on %s", cfg.ListenAddr)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
