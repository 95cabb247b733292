// Package firehose adapts an Amazon Data Firehose delivery stream to
// the ingestion sink port.
package firehose

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/firehose"
	"github.com/aws/aws-sdk-go-v2/service/firehose/types"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/ports"
)

const defaultCallTimeout = 10 * time.Second

// api is the slice of the Firehose client the sink needs; narrowed for
// testability.
type api interface {
	PutRecordBatch(ctx context.Context, params *firehose.PutRecordBatchInput, optFns ...func(*firehose.Options)) (*firehose.PutRecordBatchOutput, error)
}

// Sink implements ports.Sink over PutRecordBatch.
type Sink struct {
	client  api
	stream  string
	timeout time.Duration
}

var _ ports.Sink = (*Sink)(nil)

// NewSink resolves AWS configuration from the environment and wires a
// sink for the named delivery stream.
func NewSink(ctx context.Context, streamName string, timeout time.Duration) (*Sink, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	return &Sink{
		client:  firehose.NewFromConfig(cfg),
		stream:  streamName,
		timeout: timeout,
	}, nil
}

// PutRecordBatch submits the records in one call. Per-record rejections
// come back as FailedIndices with a nil error; transport and service
// errors come back as the error for the classifier.
func (s *Sink) PutRecordBatch(ctx context.Context, records [][]byte) (ports.SinkResult, error) {
	if len(records) == 0 {
		return ports.SinkResult{}, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	entries := make([]types.Record, len(records))
	for i, r := range records {
		entries[i] = types.Record{Data: r}
	}

	out, err := s.client.PutRecordBatch(callCtx, &firehose.PutRecordBatchInput{
		DeliveryStreamName: aws.String(s.stream),
		Records:            entries,
	})
	if err != nil {
		return ports.SinkResult{}, err
	}

	result := ports.SinkResult{SuccessCount: len(records)}
	if out.FailedPutCount != nil && *out.FailedPutCount > 0 {
		for i, resp := range out.RequestResponses {
			if resp.ErrorCode != nil {
				result.FailedIndices = append(result.FailedIndices, i)
			}
		}
		result.SuccessCount = len(records) - len(result.FailedIndices)
	}
	return result, nil
}
