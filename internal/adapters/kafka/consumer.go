// Package kafka adapts a Kafka consumer group to the ingestion core.
// Each claimed partition runs its own accumulator and delivery engine,
// so batches never interleave across partitions and a partition has at
// most one batch in flight.
package kafka

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/IBM/sarama"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/domain"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/ports"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/services/ingest"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/telemetry"
)

// BatchSettings bounds the per-partition accumulator.
type BatchSettings struct {
	MaxRecords int
	MaxBytes   int
	MaxLatency time.Duration
}

// Consumer implements ports.MessageSource over a sarama consumer
// group.
type Consumer struct {
	group  sarama.ConsumerGroup
	topics []string

	sink     ports.Sink
	retry    *ingest.RetryStrategy
	settings BatchSettings
}

var _ ports.MessageSource = (*Consumer)(nil)

// NewConsumer connects to the brokers and joins the group. Offsets are
// committed manually after delivery, starting from the oldest
// available message for a new group.
func NewConsumer(brokers []string, groupID string, topics []string, sink ports.Sink, retry *ingest.RetryStrategy, settings BatchSettings) (*Consumer, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_8_0_0
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Consumer.Offsets.AutoCommit.Enable = true
	cfg.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, err
	}
	return &Consumer{
		group:    group,
		topics:   topics,
		sink:     sink,
		retry:    retry,
		settings: settings,
	}, nil
}

// Start consumes until the context is cancelled. Rebalances re-enter
// the Consume loop; delivery failures bubble out of the claim handler
// and force a rejoin, which redelivers from the last committed offset.
func (c *Consumer) Start(ctx context.Context) error {
	go func() {
		for err := range c.group.Errors() {
			log.Printf("kafka consumer error: %v", err)
		}
	}()

	handler := &claimHandler{
		sink:     c.sink,
		retry:    c.retry,
		settings: c.settings,
	}
	for {
		if err := c.group.Consume(ctx, c.topics, handler); err != nil {
			log.Printf("kafka consume session ended: %v", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// Close leaves the group.
func (c *Consumer) Close() error {
	return c.group.Close()
}

// claimHandler implements sarama.ConsumerGroupHandler.
type claimHandler struct {
	sink     ports.Sink
	retry    *ingest.RetryStrategy
	settings BatchSettings
}

func (h *claimHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *claimHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim owns one partition for the lifetime of the session. The
// accumulator is single-owner state; delivery blocks the loop, which is
// the backpressure that keeps a single batch in flight.
func (h *claimHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	acc := ingest.NewAccumulator(h.settings.MaxRecords, h.settings.MaxBytes, h.settings.MaxLatency)
	delivery := ingest.NewDelivery(h.sink, sessionAcker{sess: sess, topic: claim.Topic()}, h.retry)

	ticker := time.NewTicker(acc.MaxLatency() / 2)
	defer ticker.Stop()

	ctx := sess.Context()
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				return h.drain(ctx, acc, delivery)
			}

			batch, trigger, err := acc.Add(domain.BatchMessage{
				Payload:    msg.Value,
				Offset:     msg.Offset,
				Partition:  msg.Partition,
				ReceivedAt: time.Now(),
			})
			if errors.Is(err, ingest.ErrRecordTooLarge) {
				// Oversized records are dropped, and marked so they do
				// not wedge the partition on restart.
				log.Printf("dropping oversized record at %s[%d]@%d: %v",
					claim.Topic(), msg.Partition, msg.Offset, err)
				telemetry.RecordsDelivered.WithLabelValues("dropped").Inc()
				sess.MarkMessage(msg, "")
				continue
			}
			if batch != nil {
				if err := h.deliver(ctx, delivery, batch, trigger); err != nil {
					return err
				}
			}

		case <-ticker.C:
			if batch, trigger := acc.TakeIfExpired(time.Now()); batch != nil {
				if err := h.deliver(ctx, delivery, batch, trigger); err != nil {
					return err
				}
			}

		case <-ctx.Done():
			// Bounded final flush; anything undelivered is picked up by
			// the next session.
			drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return h.drain(drainCtx, acc, delivery)
		}
	}
}

func (h *claimHandler) deliver(ctx context.Context, delivery *ingest.Delivery, batch *domain.Batch, trigger ingest.FlushTrigger) error {
	telemetry.BatchesFlushed.WithLabelValues(string(trigger)).Inc()
	if _, err := delivery.Deliver(ctx, batch); err != nil {
		return err
	}
	return nil
}

// drain flushes whatever is pending at session end. A failure here is
// logged, not returned: the batch stays unacknowledged and the next
// session redelivers it.
func (h *claimHandler) drain(ctx context.Context, acc *ingest.Accumulator, delivery *ingest.Delivery) error {
	batch, trigger := acc.Take()
	if batch == nil {
		return nil
	}
	telemetry.BatchesFlushed.WithLabelValues(string(trigger)).Inc()
	if _, err := delivery.Deliver(ctx, batch); err != nil {
		log.Printf("final batch delivery failed, will redeliver: %v", err)
	}
	return nil
}

// sessionAcker commits offsets through the consumer group session.
// Kafka convention: the committed offset is the next one to consume.
type sessionAcker struct {
	sess  sarama.ConsumerGroupSession
	topic string
}

func (a sessionAcker) Ack(partition int32, offset int64) {
	a.sess.MarkOffset(a.topic, partition, offset+1, "")
}
