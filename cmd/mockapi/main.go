package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventdesk/internal/config"
	"eventdesk/internal/logger"
	"eventdesk/internal/mockapi"
)

var seed = flag.Bool("seed", true, "Load fixture users and events on startup")

func main() {
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	server := mockapi.NewServer(cfg.Mock)
	if *seed {
		server.Seed()
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Mock.Port,
		Handler: server.Router(),
	}

	go func() {
		logger.Get().Info("Starting mock API server", "port", cfg.Mock.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Get().Info("Shutting down mock API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Get().Error("Server forced to shutdown", "error", err)
	}

	logger.Get().Info("Server stopped")
}
