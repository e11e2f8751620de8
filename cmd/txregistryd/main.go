// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command txregistryd runs the transaction registry service: the
// bulletin board sellers and buyers publish ProtectedTransaction envelopes
// to, and companies register their public key material with, so a
// counterparty never has to exchange keys out of band.
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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/luxfi/dvpguard/internal/config"
	"github.com/luxfi/dvpguard/internal/metrics"
	"github.com/luxfi/dvpguard/internal/registry"
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
	store := registry.New(rdb)
	m := metrics.New("tx_registry")

	router := newRouter(store, logger, m)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("transaction registry listening", log.Int("port", cfg.Server.Port))
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

func newRouter(store *registry.Store, logger log.Logger, m *metrics.Registry) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(metricsMiddleware(m))

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Gatherer(), promhttp.HandlerOpts{})))

	h := &handlers{store: store, log: logger, metrics: m}
	v1 := router.Group("/v1")
	{
		v1.POST("/companies", h.registerCompany)
		v1.GET("/companies/:name", h.getCompany)

		v1.POST("/transactions", h.createTransaction)
		v1.GET("/transactions", h.listTransactions)
		v1.GET("/transactions/:tx_id", h.getTransaction)
		v1.PUT("/transactions/:tx_id", h.putTransaction)
		v1.POST("/transactions/:tx_id/buyer_sign", h.buyerSign)

		v1.POST("/transactions/:tx_id/shares", h.createShare)
		v1.GET("/transactions/:tx_id/shares", h.listShares)
	}
	return router
}

func metricsMiddleware(m *metrics.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		statusClass := fmt.Sprintf("%dxx", c.Writer.Status()/100)
		m.ObserveRequest(route, statusClass, time.Since(start))
	}
}
