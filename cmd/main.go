// Package main provides the entry point for the nutrition dashboard client.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Hassanein20/Senior-Project-dev/internal/apiclient"
	"github.com/Hassanein20/Senior-Project-dev/internal/config"
	"github.com/Hassanein20/Senior-Project-dev/internal/dashboard"
	"github.com/Hassanein20/Senior-Project-dev/internal/fdc"
	"github.com/Hassanein20/Senior-Project-dev/internal/gateway"
	"github.com/Hassanein20/Senior-Project-dev/internal/handler"
	"github.com/Hassanein20/Senior-Project-dev/internal/logger"
	"github.com/Hassanein20/Senior-Project-dev/internal/session"
)

// Run is the testable entrypoint for the application.
func Run(ctx context.Context) error {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	log.Info("Starting Nutrition Dashboard Client")

	sess := session.New()
	api, err := apiclient.New(log, apiclient.Options{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.HTTPTimeout,
		Session: sess,
		OnAuthExpired: func() {
			log.Info("session invalidated by backend, sign-in required")
		},
	})
	if err != nil {
		log.Error("invalid backend configuration", zap.Error(err))
		return err
	}

	validate := gateway.NewValidator()
	foods := gateway.NewFood(log, api, validate)
	auth := gateway.NewAuth(log, api, sess, validate)
	goals := gateway.NewGoals(log, api, validate)
	lookup := fdc.New(log, fdc.Options{
		BaseURL:  cfg.FDCBaseURL,
		APIKey:   cfg.FDCAPIKey,
		PageSize: cfg.FDCPageSize,
		Timeout:  cfg.HTTPTimeout,
	})

	retry := apiclient.RetryPolicy{MaxAttempts: cfg.RetryAttempts, Backoff: cfg.RetryBackoff}
	dash := dashboard.New(log, foods, retry, cfg.ReconcileDelay, time.Now)

	h := handler.New(log, dash, foods, auth, goals, lookup)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      h.Routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go dash.Start(ctx)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down server")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	dash.Stop()
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := Run(ctx); err != nil {
		os.Exit(1)
	}
}
