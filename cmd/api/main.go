package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"cartsync/internal/config"
	"cartsync/internal/gateway"
	"cartsync/internal/gueststore"
	"cartsync/internal/httpserver"
	cartsvc "cartsync/internal/service/cart"
	"cartsync/internal/session"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	var guests gueststore.Store
	var ready httpserver.Pinger
	if cfg.RedisAddr != "" {
		store := gueststore.NewRedis(cfg.RedisAddr, cfg.GuestCartTTL)
		defer store.Close()
		guests = store
		ready = store
		logger.Printf("guest carts backed by redis at %s", cfg.RedisAddr)
	} else {
		guests = gueststore.NewFile(cfg.GuestStorePath)
		logger.Printf("guest carts backed by files under %s", cfg.GuestStorePath)
	}

	gatewayClient := gateway.New(cfg.GatewayBaseURL, cfg.GatewayTimeout, logger)
	sessionService := session.New(cfg.SessionSecret, cfg.SessionTTL)
	registry := cartsvc.NewRegistry(guests, gatewayClient, cfg.SessionIdleTTL, logger)

	srv := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		Sessions: sessionService,
		Carts:    registry,
		Ready:    ready,
	}, cfg.CORSOrigins)

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
