// Package main 异步任务执行器入口（job-worker）
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"agent-console/internal/config"
	"agent-console/internal/infrastructure/messaging"
	"agent-console/internal/wire"
	"agent-console/pkg/logger"
	"agent-console/pkg/tracer"
)

// dlqAlertThreshold 死信流长度告警阈值
const dlqAlertThreshold = 100

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: "job-worker",
		Environment: cfg.App.Env,
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Insecure:    cfg.Observability.Tracing.Insecure,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init tracer", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	layer, cleanup, err := wire.InitializeWorker(ctx, cfg)
	if err != nil {
		logger.Fatal(ctx, "failed to initialize worker", err)
	}
	defer cleanup()

	rs := cfg.Messaging.RedisStream
	consumer := messaging.NewConsumer(layer.RedisClient.Redis(), messaging.ConsumerConfig{
		Stream:        messaging.StreamCostRecalc,
		Group:         messaging.GroupName(rs.ConsumerGroupPrefix, "billing-worker"),
		ConsumerName:  hostnameConsumerName(),
		BlockTimeout:  rs.BlockTimeout,
		ClaimInterval: rs.ClaimInterval,
		RetryLimit:    rs.RetryLimit,
		Backoff: messaging.BackoffConfig{
			Initial:    rs.RetryBackoff.Initial,
			Max:        rs.RetryBackoff.Max,
			Multiplier: rs.RetryBackoff.Multiplier,
		},
	})

	consumer.RegisterHandler(messaging.TypeCostRecalc, func(msgCtx context.Context, msg *messaging.Message) error {
		var payload messaging.CostRecalcMessage
		if err := msg.UnmarshalPayload(&payload); err != nil {
			return err
		}
		msgCtx = logger.WithContext(msgCtx, logger.OrgIDKey, payload.OrgID)

		return layer.TxManager.WithTransaction(msgCtx, func(txCtx context.Context) error {
			if err := layer.OrgContext.SetOrg(txCtx, payload.OrgID); err != nil {
				return err
			}
			res, err := layer.Recalculator.Run(txCtx, payload.OrgID, payload.Provider)
			if err != nil {
				return err
			}
			logger.Info(txCtx, "cost recalculation finished",
				"job_id", payload.JobID,
				"provider", payload.Provider,
				"scanned", res.Scanned,
				"updated", res.Updated,
				"unpriced", res.Unpriced,
			)
			return nil
		})
	})

	if err := consumer.Start(ctx); err != nil {
		logger.Fatal(ctx, "failed to start consumer", err)
	}
	go consumer.MonitorDLQ(ctx, dlqAlertThreshold)

	log := logger.FromContext(ctx)
	log.Info("job-worker started", "stream", string(messaging.StreamCostRecalc))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("job-worker shutting down")
	cancel()
	consumer.Stop()
}

func hostnameConsumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}
