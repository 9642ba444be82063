package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/mmynk/splitsync/internal/ledgerd"
	"github.com/mmynk/splitsync/internal/storage/sqlite"
	"github.com/mmynk/splitsync/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	// Optional .env; a missing file is fine.
	_ = godotenv.Load()
	logging.Setup()

	dbPath := getEnv("DB_PATH", "./data/ledger.db")
	addr := getEnv("LEDGERD_ADDR", ":8085")
	prefix := getEnv("LEDGERD_PREFIX", ledgerd.DefaultPrefix)

	store, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", dbPath)

	srv, err := ledgerd.New(store, prefix)
	if err != nil {
		slog.Error("Failed to initialize server", "error", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("Ledger server starting", "address", addr, "url", "http://localhost"+addr+prefix)
	if err := httpServer.ListenAndServe(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
