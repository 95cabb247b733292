package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/adapters/firehose"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/adapters/kafka"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/config"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/services/ingest"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/telemetry"
)

// IngestorApplication holds the components of the scan ingestor: a
// Kafka consumer group feeding batched records into a Firehose
// delivery stream.
type IngestorApplication struct {
	Config   *config.Config
	Sink     *firehose.Sink
	Consumer *kafka.Consumer
}

// NewIngestor bootstraps the scan ingestor.
func NewIngestor(ctx context.Context, cfg *config.Config) (*IngestorApplication, error) {
	telemetry.InitMetrics()

	sink, err := firehose.NewSink(ctx, cfg.StreamName, cfg.SinkTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to init firehose sink: %w", err)
	}

	consumer, err := kafka.NewConsumer(cfg.Brokers, cfg.GroupID, cfg.Topics, sink, ingest.NewRetryStrategy(), kafka.BatchSettings{
		MaxRecords: cfg.MaxRecordsPerBatch,
		MaxBytes:   cfg.MaxBatchBytes,
		MaxLatency: cfg.MaxBatchLatency,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init kafka consumer: %w", err)
	}

	return &IngestorApplication{
		Config:   cfg,
		Sink:     sink,
		Consumer: consumer,
	}, nil
}

// Run consumes until the context is cancelled.
func (app *IngestorApplication) Run(ctx context.Context) error {
	slog.Info("Starting scan ingestor",
		"brokers", app.Config.Brokers,
		"group", app.Config.GroupID,
		"topics", app.Config.Topics,
		"stream", app.Config.StreamName,
	)

	if err := app.Consumer.Start(ctx); err != nil {
		return fmt.Errorf("consumer error: %w", err)
	}
	return nil
}

// Close shuts the consumer group down.
func (app *IngestorApplication) Close() error {
	return app.Consumer.Close()
}
