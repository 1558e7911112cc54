package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/joho/godotenv"

	embedded "github.com/gophora/portal/db"
	"github.com/gophora/portal/internal/config"
	"github.com/gophora/portal/internal/db"
	"github.com/gophora/portal/internal/session"
	"github.com/gophora/portal/pkg/geo"
	"github.com/gophora/portal/pkg/gophora"
	"github.com/gophora/portal/web"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Skipping .env: %v", err)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	log.Printf("Starting portal version %s (built at %s)", version, buildTime)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	web.SetLogger(logger)
	gophora.SetLogger(logger)
	geo.SetLogger(logger)

	ctx := context.Background()

	// Session database
	sessionDB, err := db.New(ctx, cfg.SessionDBPath)
	if err != nil {
		log.Fatalf("Failed to open session DB: %v", err)
	}
	if err := db.Migrate(ctx, sessionDB, embedded.Migrations); err != nil {
		log.Fatalf("Failed to migrate session DB: %v", err)
	}

	store := session.NewStore(sessionDB, logger)
	sessions := session.NewManager(store, []byte(cfg.CookieSecret), cfg.CookieName)

	api, err := gophora.NewClient(gophora.Config{BaseURL: cfg.BackendURL, Timeout: cfg.APITimeout}, nil)
	if err != nil {
		log.Fatalf("Failed to create backend client: %v", err)
	}
	geoClient, err := geo.NewClient(geo.Config{BaseURL: cfg.GeoURL, Timeout: cfg.APITimeout}, nil)
	if err != nil {
		log.Fatalf("Failed to create geo client: %v", err)
	}

	handler := web.SetupRoutes(cfg, version, buildTime, api, geoClient, sessions)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	if err := api.Close(); err != nil {
		log.Printf("Error closing backend client: %v", err)
	}
	if err := sessionDB.Close(); err != nil {
		log.Printf("Error closing session DB: %v", err)
	}

	log.Println("Server exited")
}
