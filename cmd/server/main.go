package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kjannette/pricetrack/internal/api"
	"github.com/kjannette/pricetrack/internal/config"
	"github.com/kjannette/pricetrack/internal/db"
	"github.com/kjannette/pricetrack/internal/external"
	"github.com/kjannette/pricetrack/internal/httputil"
	"github.com/kjannette/pricetrack/internal/metrics"
	"github.com/kjannette/pricetrack/internal/repository"
	"github.com/kjannette/pricetrack/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	cfg.Print()

	// Database
	fmt.Printf("\n[DB] Connecting to %s:%d/%s ...\n", cfg.DBHost, cfg.DBPort, cfg.DBName)
	pool, err := db.Connect(cfg.DSN(), db.PoolOptions{
		MaxConns: int32(cfg.DBMaxConns),
		MinConns: int32(cfg.DBMinConns),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Connection failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		pool.Close()
		fmt.Println("[DB] Connection pool closed")
	}()

	// Schema bootstrap, skipped in production unless explicitly enabled
	if cfg.Env != "production" || cfg.RunCreateAll {
		if err := db.Migrate(context.Background(), pool); err != nil {
			fmt.Fprintf(os.Stderr, "[DB] Migration failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("[DB] Schema ready")
	}

	// Exchange client, shared by all requests, released on shutdown
	kucoin := external.NewKuCoinClient(external.KuCoinOptions{
		BaseURL: cfg.ExchangeBaseURL,
		Timeout: cfg.ExchangeTimeout,
		Retry: httputil.RetryConfig{
			MaxAttempts: cfg.ExchangeRetryAttempts,
			BaseDelay:   1 * time.Second,
			MaxDelay:    10 * time.Second,
		},
	})
	defer kucoin.Close()

	// Core wiring
	store := repository.NewPriceStore(pool)
	reg := metrics.NewRegistry()
	svc := service.NewPriceService(store, kucoin, cfg.PageSize)

	// Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := api.NewServer(pool, svc, reg, api.Options{
		Host:            cfg.Host,
		Port:            cfg.Port,
		APIKey:          cfg.APIKey,
		CORSAllowOrigin: cfg.CORSAllowOrigin,
		Debug:           cfg.Debug,
	})
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "[API] Server error: %v\n", err)
			os.Exit(1)
		}
	}()

	fmt.Println("\nAll services started successfully")

	<-ctx.Done()
	fmt.Println("\nShutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "[API] Shutdown error: %v\n", err)
	}
	fmt.Println("[API] Server closed")
	fmt.Println("Shutdown complete")
}
