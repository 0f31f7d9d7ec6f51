package main

import (
	"context"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"github.com/yourorg/image-variants/internal/activities"
	"github.com/yourorg/image-variants/internal/api"
	"github.com/yourorg/image-variants/internal/codec"
	"github.com/yourorg/image-variants/internal/config"
	"github.com/yourorg/image-variants/internal/logging"
	znmetrics "github.com/yourorg/image-variants/internal/metrics"
	"github.com/yourorg/image-variants/internal/pipeline"
	"github.com/yourorg/image-variants/internal/storage"
	"github.com/yourorg/image-variants/internal/trigger"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl := logging.New(cfg.LogLevel)
	defer zl.Sync()

	znmetrics.Init()
	go func() {
		if err := znmetrics.Serve(cfg.MetricsAddr); err != nil {
			zl.Warn("metrics server stopped", zap.Error(err))
		}
	}()

	store, closeStore, err := storage.Open(context.Background(), cfg.StoreOptions())
	if err != nil {
		zl.Fatal("open store", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	defer func() { _ = closeStore() }()

	imgCodec, err := codec.NewImaging(cfg.OutputFormat, cfg.JPEGQuality)
	if err != nil {
		zl.Fatal("codec", zap.Error(err))
	}
	acts := activities.New(activities.Config{
		Allowed:      cfg.AllowedResolutions,
		CascadeScope: cfg.CascadeScope,
		ListPageSize: cfg.ListPageSize,
	}, store, imgCodec, zl)
	pipe := pipeline.New(trigger.NewClassifier(cfg.DefaultResolution), cfg.AllowedResolutions, acts, cfg.BaseURL, zl)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Location"},
	}))

	// Storage events are handed off only when Temporal is reachable.
	var starter api.Starter
	var temporalClient client.Client
	if cfg.TemporalAddress != "" {
		temporalClient, err = client.Dial(client.Options{
			HostPort:  cfg.TemporalAddress,
			Namespace: cfg.TemporalNamespace,
		})
		if err != nil {
			zl.Warn("temporal unavailable, running storage events inline", zap.Error(err))
			temporalClient = nil
		} else {
			defer temporalClient.Close()
			starter = temporalClient
		}
	}

	api.NewHandler(pipe, starter, cfg.TemporalTaskQueue, zl).Register(r)
	if temporalClient != nil {
		wh := api.NewWorkflowHandler(temporalClient)
		r.GET("/api/v1/workflows/:id/status", wh.GetWorkflowStatus)
	}

	zl.Info("api starting",
		zap.String("port", cfg.Port),
		zap.String("backend", cfg.StoreBackend),
		zap.Strings("allowed", cfg.AllowedResolutions.Labels()),
		zap.String("default", cfg.DefaultResolution.Label()),
		zap.Bool("temporal", temporalClient != nil))
	if err := r.Run(":" + cfg.Port); err != nil {
		zl.Fatal("server failed", zap.Error(err))
	}
}
