package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"vaspx-assistant/internal/config"
	"vaspx-assistant/internal/logger"
	"vaspx-assistant/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logr := logger.NewStructured(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := server.NewServer(ctx, cfg, logr)
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}
	defer s.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("vaspx assistant listening", map[string]interface{}{"addr": srv.Addr, "gateway": cfg.GatewayEnabled})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("server stopped", map[string]interface{}{"error": err})
			stop()
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", map[string]interface{}{"error": err})
	}
}
