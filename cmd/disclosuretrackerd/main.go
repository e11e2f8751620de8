// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command disclosuretrackerd runs the disclosure tracker service: an
// append-only log of ShareRecord delegations, letting a seller or auditor
// ask who has been granted access to a transaction or one of its layers.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/luxfi/dvpguard/internal/config"
	"github.com/luxfi/dvpguard/internal/disclosure"
	"github.com/luxfi/dvpguard/internal/metrics"
	"github.com/luxfi/dvpguard/pkg/log"
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.NewWithLevel(cfg.Log.Level)
	defer logger.Sync()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	store := disclosure.New(rdb)
	m := metrics.New("disclosure_tracker")

	router := setupRoutes(store, logger, m)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("disclosure tracker listening", log.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", log.Err(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", log.Err(err))
	}
}

func setupRoutes(store *disclosure.Store, logger log.Logger, m *metrics.Registry) *mux.Router {
	r := mux.NewRouter()
	h := &handlers{store: store, log: logger, metrics: m}

	r.HandleFunc("/healthz", h.healthz).Methods("GET")
	r.HandleFunc("/disclosures", h.postDisclosure).Methods("POST")
	r.HandleFunc("/disclosures/{tx_id}", h.listDisclosures).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(m.Gatherer(), promhttp.HandlerOpts{})).Methods("GET")

	return r
}
