package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/domain"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/ports"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/telemetry"
)

// DeliveryStats summarises one batch's journey through the delivery
// loop.
type DeliveryStats struct {
	Attempts          int
	BufferFullRetries int
	RateLimitRetries  int
	NetworkRetries    int
	GenericRetries    int
	SuccessfulRetries int
	Delivered         bool
	LastClass         domain.FailureClass
}

// Delivery pushes flushed batches into the sink, retrying per failure
// class. One Delivery handles one batch at a time; the caller provides
// the backpressure by not flushing while Deliver blocks.
type Delivery struct {
	sink  ports.Sink
	ack   ports.Acknowledger
	retry *RetryStrategy

	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewDelivery wires a delivery engine. ack may be nil when the caller
// commits offsets itself.
func NewDelivery(sink ports.Sink, ack ports.Acknowledger, retry *RetryStrategy) *Delivery {
	return &Delivery{
		sink:  sink,
		ack:   ack,
		retry: retry,
		sleep: sleepCtx,
	}
}

// Deliver attempts the batch until complete success or exhausted
// retries. The upstream offset is acknowledged only after every record
// of the batch has been accepted; on exhaustion the batch stays
// unacknowledged so a consumer restart redelivers it.
func (d *Delivery) Deliver(ctx context.Context, batch *domain.Batch) (DeliveryStats, error) {
	var stats DeliveryStats
	if batch == nil || len(batch.Messages) == 0 {
		return stats, nil
	}

	telemetry.BatchesInFlight.Inc()
	defer telemetry.BatchesInFlight.Dec()

	start := time.Now()
	records := make([][]byte, len(batch.Messages))
	for i, m := range batch.Messages {
		records[i] = m.Payload
	}

	for attempt := 0; ; attempt++ {
		res, err := d.sink.PutRecordBatch(ctx, records)
		stats.Attempts++

		if err == nil && len(res.FailedIndices) == 0 {
			stats.Delivered = true
			if attempt > 0 {
				stats.SuccessfulRetries++
			}
			telemetry.RecordsDelivered.WithLabelValues("ok").Add(float64(len(batch.Messages)))
			telemetry.BatchDeliveryDuration.Observe(time.Since(start).Seconds())
			if d.ack != nil {
				d.ack.Ack(batch.Messages[0].Partition, batch.HighestOffset())
			}
			return stats, nil
		}

		class := domain.FailureBufferFull // partial acceptance means the sink is shedding load
		if err != nil {
			class = Classify(err)
		}
		stats.LastClass = class

		if !d.retry.ShouldRetry(class, attempt) {
			telemetry.RecordsDelivered.WithLabelValues("failed").Add(float64(len(records)))
			telemetry.DeliveryFailures.WithLabelValues(string(class)).Inc()
			if err != nil {
				return stats, fmt.Errorf("delivery exhausted after %d attempts (%s): %w", stats.Attempts, class, err)
			}
			return stats, fmt.Errorf("delivery exhausted after %d attempts (%s): %d records rejected",
				stats.Attempts, class, len(res.FailedIndices))
		}

		// Only the rejected records go around again.
		if err == nil && len(res.FailedIndices) > 0 {
			remaining := make([][]byte, 0, len(res.FailedIndices))
			for _, idx := range res.FailedIndices {
				if idx >= 0 && idx < len(records) {
					remaining = append(remaining, records[idx])
				}
			}
			if len(remaining) > 0 {
				records = remaining
			}
		}

		countRetry(&stats, class)
		telemetry.SinkRetries.WithLabelValues(string(class)).Inc()

		if err := d.sleep(ctx, d.retry.Delay(class, attempt)); err != nil {
			return stats, err
		}
	}
}

func countRetry(stats *DeliveryStats, class domain.FailureClass) {
	switch class {
	case domain.FailureBufferFull:
		stats.BufferFullRetries++
	case domain.FailureRateLimit:
		stats.RateLimitRetries++
	case domain.FailureNetwork:
		stats.NetworkRetries++
	default:
		stats.GenericRetries++
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
