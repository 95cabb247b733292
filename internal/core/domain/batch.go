package domain

import "time"

// Batch size limits. MaxBatchBytes is a soft cap: a batch is flushed
// before a record that would overflow it is added.
const (
	MaxRecordsPerBatch = 500
	MaxBatchBytes      = 4 << 20 // 4 MiB
	MaxRecordBytes     = 1 << 20 // 1 MiB per sink record
)

// BatchMessage is one upstream scan message on its way to the sink.
// Never persisted by the core.
type BatchMessage struct {
	Payload    []byte
	Offset     int64
	Partition  int32
	ReceivedAt time.Time
}

// Batch is an ordered, size-bounded group of messages submitted to the
// sink as a single put-record-batch call.
type Batch struct {
	Messages   []BatchMessage
	TotalBytes int
	CreatedAt  time.Time
}

// HighestOffset returns the largest upstream offset in the batch.
// Offsets are acknowledged up to this value after delivery.
func (b *Batch) HighestOffset() int64 {
	var max int64 = -1
	for _, m := range b.Messages {
		if m.Offset > max {
			max = m.Offset
		}
	}
	return max
}

// Age returns how long the oldest record has been waiting.
func (b *Batch) Age(now time.Time) time.Duration {
	if len(b.Messages) == 0 {
		return 0
	}
	return now.Sub(b.Messages[0].ReceivedAt)
}

// FailureClass classifies a sink delivery failure for retry scheduling.
type FailureClass string

const (
	FailureBufferFull FailureClass = "BUFFER_FULL"
	FailureRateLimit  FailureClass = "RATE_LIMIT"
	FailureNetwork    FailureClass = "NETWORK_ISSUE"
	FailureGeneric    FailureClass = "GENERIC_FAILURE"
)
