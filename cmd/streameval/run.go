package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/streameval/internal/config"
	dbRedis "github.com/kailas-cloud/streameval/internal/db/redis"
	"github.com/kailas-cloud/streameval/internal/domain"
	"github.com/kailas-cloud/streameval/internal/features"
	logpkg "github.com/kailas-cloud/streameval/internal/logger"
	"github.com/kailas-cloud/streameval/internal/metrics"
	"github.com/kailas-cloud/streameval/internal/model"
	"github.com/kailas-cloud/streameval/internal/report"
	chiTransport "github.com/kailas-cloud/streameval/internal/transport/chi"
	"github.com/kailas-cloud/streameval/internal/transport/socket"
	healthuc "github.com/kailas-cloud/streameval/internal/usecase/health"
	streamuc "github.com/kailas-cloud/streameval/internal/usecase/stream"
	"github.com/kailas-cloud/streameval/internal/version"
)

func run(env string, cfg config.Config) error {
	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting streameval",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("batch_size", cfg.Run.BatchSize),
		zap.Int("total_records", cfg.Run.TotalRecords),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.RegisterStreamMetrics()

	state, err := domain.NewRunState(cfg.Run.TotalRecords, cfg.Run.BatchSize)
	if err != nil {
		return err
	}

	vectorizer, err := features.NewHashingVectorizer(features.Config{
		NFeatures: cfg.Features.NFeatures,
		Hash:      features.HashFunc(cfg.Features.Hash),
		Norm:      features.Norm(cfg.Features.Norm),
	})
	if err != nil {
		return err
	}

	var labels features.LabelEncoder = features.PerBatchEncoder{}
	var labelTable chiTransport.LabelSource
	if cfg.Labels.Mode == "global" {
		table := features.NewLabelTable(cfg.Labels.Known, logger)
		labels, labelTable = table, table
	}

	specs := make([]model.Spec, len(cfg.Models))
	for i, m := range cfg.Models {
		specs[i] = model.Spec{ID: m.ID, Name: m.Name, Path: m.Path, Alignment: domain.Alignment(m.Alignment)}
	}
	bank, err := model.Load(specs, vectorizer.NFeatures(), cfg.Inference.Workers)
	if err != nil {
		return fmt.Errorf("failed to load models: %w", err)
	}
	for _, e := range bank.Entries() {
		logger.Info("Model loaded",
			zap.String("model", e.ID),
			zap.String("name", e.Name),
			zap.String("kind", string(e.Kind)),
			zap.Bool("supervised", e.Kind.Supervised()),
			zap.String("alignment", string(e.Alignment)),
		)
	}

	latest := report.NewLatest()
	sinks := report.NewMulti().
		Add("log", report.NewLog(logger)).
		Add("latest", latest)
	if cfg.Report.ChartDir != "" {
		sinks.Add("chart", report.NewChart(cfg.Report.ChartDir, cfg.Report.ChartWidth, cfg.Report.ChartHeight))
	}
	if cfg.Report.JSONDir != "" {
		sinks.Add("json", report.NewJSON(cfg.Report.JSONDir))
	}

	var sinkPinger healthuc.Pinger
	if cfg.Report.Redis.Enabled() {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Report.Redis.Addrs,
			Username: cfg.Report.Redis.Username,
			Password: cfg.Report.Redis.Password,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to create redis store: %w", err)
		}
		defer store.Close()

		timeout := time.Duration(cfg.Report.Redis.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(ctx, timeout); err != nil {
			return fmt.Errorf("redis not ready: %w", err)
		}
		logger.Info("Redis summary sink ready", zap.String("channel", cfg.Report.Redis.Channel))

		sinks.Add("redis", report.NewRedis(store, cfg.Report.Redis.Channel))
		sinkPinger = store
	}

	svc := streamuc.New(bank, vectorizer, labels, sinks, state, logger)

	var srv *http.Server
	if cfg.HTTP.Port > 0 {
		server := chiTransport.NewServer(healthuc.New(bank, sinkPinger), latest, svc, labelTable, logger)
		srv = &http.Server{
			Addr:         ":" + strconv.Itoa(cfg.HTTP.Port),
			Handler:      server.Handler(),
			ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
			WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
		}
		go func() {
			logger.Info("Starting status server", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Status server error", zap.Error(err))
				stop()
			}
		}()
	}

	src, err := openSource(ctx, cfg.Transport)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	runErr := svc.Run(ctx, src)
	switch {
	case runErr == nil, errors.Is(runErr, context.Canceled):
		logger.Info("Received shutdown signal")
		runErr = nil
	case errors.Is(runErr, domain.ErrTransportClosed):
		logger.Info("Batch source closed", zap.Error(runErr))
	default:
		logger.Error("Batch loop stopped", zap.Error(runErr))
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error during shutdown", zap.Error(err))
		}
	}

	logger.Info("Stopped")
	return runErr
}

func openSource(ctx context.Context, cfg config.TransportConfig) (*socket.LineSource, error) {
	if cfg.Kind == "stdin" {
		return socket.NewLineSource(os.Stdin, cfg.MaxLineBytes), nil
	}
	src, err := socket.Dial(ctx, cfg.Addr, time.Duration(cfg.DialTimeoutSec)*time.Second, cfg.MaxLineBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Addr, err)
	}
	return src, nil
}
