// Package ingest implements the batch half of the scan pipeline:
// accumulating upstream messages into bounded batches, classifying sink
// failures and retrying delivery until the batch can be acknowledged.
package ingest

import (
	"errors"
	"fmt"
	"time"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/domain"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/telemetry"
)

// ErrRecordTooLarge rejects a single message above the per-record sink
// limit. The message is dropped, not retried.
var ErrRecordTooLarge = errors.New("record exceeds per-record sink limit")

// FlushTrigger names why a batch left the accumulator.
type FlushTrigger string

const (
	FlushCount   FlushTrigger = "count"
	FlushBytes   FlushTrigger = "bytes"
	FlushLatency FlushTrigger = "latency"
	FlushClose   FlushTrigger = "close"
)

// Accumulator groups messages into size- and age-bounded batches. It is
// owned by a single goroutine; the owner calls Add for every upstream
// message and polls TakeIfExpired on a ticker. No internal locking.
type Accumulator struct {
	maxRecords int
	maxBytes   int
	maxLatency time.Duration

	current domain.Batch
}

// NewAccumulator builds an accumulator with the given bounds; zero
// values fall back to the domain defaults.
func NewAccumulator(maxRecords, maxBytes int, maxLatency time.Duration) *Accumulator {
	if maxRecords <= 0 {
		maxRecords = domain.MaxRecordsPerBatch
	}
	if maxBytes <= 0 {
		maxBytes = domain.MaxBatchBytes
	}
	if maxLatency <= 0 {
		maxLatency = 1500 * time.Millisecond
	}
	return &Accumulator{
		maxRecords: maxRecords,
		maxBytes:   maxBytes,
		maxLatency: maxLatency,
	}
}

// Add appends one message. When the message would overflow the byte
// cap, the pending batch is flushed first and returned; when the
// message fills the record cap, the batch including it is returned.
// At most one batch is returned per call.
func (a *Accumulator) Add(msg domain.BatchMessage) (*domain.Batch, FlushTrigger, error) {
	size := len(msg.Payload)
	if size > domain.MaxRecordBytes {
		return nil, "", fmt.Errorf("%w: %d bytes", ErrRecordTooLarge, size)
	}

	var flushed *domain.Batch
	trigger := FlushTrigger("")

	// Soft byte cap: flush before the overflowing record goes in.
	if len(a.current.Messages) > 0 && a.current.TotalBytes+size > a.maxBytes {
		flushed = a.take()
		trigger = FlushBytes
	}

	if len(a.current.Messages) == 0 {
		a.current.CreatedAt = msg.ReceivedAt
	}
	a.current.Messages = append(a.current.Messages, msg)
	a.current.TotalBytes += size
	telemetry.AccumulatedBytes.Add(float64(size))

	if flushed == nil && len(a.current.Messages) >= a.maxRecords {
		flushed = a.take()
		trigger = FlushCount
	}
	return flushed, trigger, nil
}

// TakeIfExpired returns the pending batch once its oldest message has
// waited past the latency bound.
func (a *Accumulator) TakeIfExpired(now time.Time) (*domain.Batch, FlushTrigger) {
	if len(a.current.Messages) == 0 || a.current.Age(now) < a.maxLatency {
		return nil, ""
	}
	return a.take(), FlushLatency
}

// Take drains whatever is pending, for shutdown.
func (a *Accumulator) Take() (*domain.Batch, FlushTrigger) {
	if len(a.current.Messages) == 0 {
		return nil, ""
	}
	return a.take(), FlushClose
}

// Pending reports the buffered message count.
func (a *Accumulator) Pending() int { return len(a.current.Messages) }

// PendingBytes reports the buffered payload size.
func (a *Accumulator) PendingBytes() int { return a.current.TotalBytes }

// MaxLatency exposes the flush deadline so the owner can size its
// ticker.
func (a *Accumulator) MaxLatency() time.Duration { return a.maxLatency }

func (a *Accumulator) take() *domain.Batch {
	b := a.current
	a.current = domain.Batch{}
	telemetry.AccumulatedBytes.Sub(float64(b.TotalBytes))
	return &b
}
