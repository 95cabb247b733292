package ports

import "context"

// SinkResult reports the outcome of one put-record-batch call.
type SinkResult struct {
	SuccessCount  int
	FailedIndices []int
}

// Sink is the downstream append-only stream. Records are opaque byte
// arrays. A returned error is opaque but structured enough for the
// failure classifier to inspect.
type Sink interface {
	PutRecordBatch(ctx context.Context, records [][]byte) (SinkResult, error)
}

// Acknowledger commits upstream offsets after a batch has been fully
// delivered. Offsets advance monotonically per partition.
type Acknowledger interface {
	Ack(partition int32, offset int64)
}

// MessageSource is the upstream broker consumer. Start blocks until
// the context is cancelled or the consumer fails.
type MessageSource interface {
	Start(ctx context.Context) error
	Close() error
}
