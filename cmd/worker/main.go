package main

import (
	"context"
	"log"

	tactivity "go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"

	"github.com/yourorg/image-variants/internal/activities"
	"github.com/yourorg/image-variants/internal/codec"
	"github.com/yourorg/image-variants/internal/config"
	"github.com/yourorg/image-variants/internal/logging"
	znmetrics "github.com/yourorg/image-variants/internal/metrics"
	"github.com/yourorg/image-variants/internal/storage"
	"github.com/yourorg/image-variants/internal/workflow"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	taddr := cfg.TemporalAddress
	if taddr == "" {
		taddr = "localhost:7233"
	}

	// Structured logger (zap)
	zl := logging.New(cfg.LogLevel)
	defer zl.Sync()

	// Metrics server
	znmetrics.Init()
	go func() {
		_ = znmetrics.Serve(cfg.MetricsAddr)
	}()

	store, closeStore, err := storage.Open(context.Background(), cfg.StoreOptions())
	if err != nil {
		log.Fatal("open store:", err)
	}
	defer func() { _ = closeStore() }()

	imgCodec, err := codec.NewImaging(cfg.OutputFormat, cfg.JPEGQuality)
	if err != nil {
		log.Fatal("codec:", err)
	}

	c, err := client.Dial(client.Options{HostPort: taddr, Namespace: cfg.TemporalNamespace})
	if err != nil {
		log.Fatal("temporal client:", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.TemporalTaskQueue, worker.Options{})
	acts := activities.New(activities.Config{
		Allowed:      cfg.AllowedResolutions,
		CascadeScope: cfg.CascadeScope,
		ListPageSize: cfg.ListPageSize,
	}, store, imgCodec, zl)
	// Register activities with explicit names matching workflow.ExecuteActivity calls
	w.RegisterActivityWithOptions(acts.GenerateVariant, tactivity.RegisterOptions{Name: activities.GenerateVariantName})
	w.RegisterActivityWithOptions(acts.CascadeDelete, tactivity.RegisterOptions{Name: activities.CascadeDeleteName})
	w.RegisterWorkflow(workflow.VariantJobWorkflow)

	zl.Info("worker started",
		zap.String("namespace", cfg.TemporalNamespace),
		zap.String("taskQueue", cfg.TemporalTaskQueue),
		zap.String("backend", cfg.StoreBackend),
		zap.String("metrics", cfg.MetricsAddr))
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatal("worker failed:", err)
	}
}
