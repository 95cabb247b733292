package ingest

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"strings"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/domain"
)

// Classify maps a sink delivery error to its failure class. Order
// matters: buffer exhaustion strings win over generic throttling, which
// wins over transport errors.
func Classify(err error) domain.FailureClass {
	if err == nil {
		return domain.FailureGeneric
	}
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "buffer full"),
		strings.Contains(msg, "bufferfull"),
		strings.Contains(msg, "serviceunavailable"),
		strings.Contains(msg, "service unavailable"),
		strings.Contains(msg, "slow down"):
		return domain.FailureBufferFull

	case strings.Contains(msg, "throttl"),
		strings.Contains(msg, "rate limit"),
		strings.Contains(msg, "ratelimit"),
		strings.Contains(msg, "too many requests"),
		strings.Contains(msg, "limit exceeded"):
		return domain.FailureRateLimit
	}

	if isNetworkError(err, msg) {
		return domain.FailureNetwork
	}
	return domain.FailureGeneric
}

func isNetworkError(err error, msg string) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, os.ErrDeadlineExceeded) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.EOF) {
		return true
	}

	for _, s := range []string{
		"timeout", "timed out", "connection refused", "connection reset",
		"broken pipe", "no such host", "network is unreachable", "i/o error",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
