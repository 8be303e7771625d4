package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/config"
	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/finance"
	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/handler"
	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/integrations/cbr"
	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/middleware"
	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/notify"
	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/repository"
	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/scheduler"
	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/service"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	repo := repository.NewRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Push channels
	hub := notify.NewHub(logger)
	go hub.Run(ctx)
	notifiers := notify.Multi{hub}
	if cfg.EmailEnabled() {
		notifiers = append(notifiers, notify.NewEmailAlerter(cfg, logger))
		logger.Infof("Risk alerts will be mailed to %s", cfg.AlertEmail)
	}

	// Initialize layers
	engine := finance.NewEngine(cfg.Assumptions)
	cbrClient := cbr.NewCBRClient(cfg, logger)
	svc := service.NewService(repo, engine, notifiers, cbrClient, logger, cfg)
	h := handler.NewHandler(svc, logger)

	refresher, err := scheduler.New(cfg.RefreshSchedule, svc, logger)
	if err != nil {
		logger.Fatalf("Failed to create scheduler: %v", err)
	}
	refresher.Start(ctx)
	defer refresher.Stop()

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.RequestIDMiddleware)
	h.Routes(r, middleware.AuthMiddleware(cfg), hub.ServeWS)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("Server shutdown failed: %v", err)
		}
	}()

	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("Server failed: %v", err)
	}
	logger.Info("Server stopped")
}
