package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/ronakwanjari/medibot-platform/cmd/mainconfig"
	"github.com/ronakwanjari/medibot-platform/internal/app/bootstrap"
	appconfig "github.com/ronakwanjari/medibot-platform/internal/config"
	"github.com/ronakwanjari/medibot-platform/internal/notify"
	"github.com/ronakwanjari/medibot-platform/pkg/logging"
)

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	if cfg.NotifyQueueURL == "" {
		logger.Error("NOTIFY_QUEUE_URL is required for the notify worker")
		os.Exit(1)
	}

	awsConfig, err := mainconfig.LoadAWSConfig(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	sqsClient := sqs.NewFromConfig(awsConfig)
	queue := notify.NewSQSQueue(sqsClient, cfg.NotifyQueueURL)

	sender := bootstrap.BuildEmailSender(cfg, awsConfig, logger)
	service := notify.NewService(sender, logger)

	worker := notify.NewWorker(
		service,
		queue,
		logger,
		notify.WithWorkerCount(cfg.WorkerCount),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker.Start(ctx)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down notify worker...")
	cancel()

	doneCtx, doneCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer doneCancel()

	waitCh := make(chan struct{})
	go func() {
		worker.Wait()
		close(waitCh)
	}()

	select {
	case <-waitCh:
		logger.Info("notify worker stopped")
	case <-doneCtx.Done():
		logger.Error("notify worker shutdown timed out", "error", doneCtx.Err())
	}
}
