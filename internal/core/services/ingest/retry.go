package ingest

import (
	"math/rand"
	"sync"
	"time"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/domain"
)

// jitterFraction is the uniform jitter applied to every delay.
const jitterFraction = 0.25

// maxAttempts per failure class.
var maxAttempts = map[domain.FailureClass]int{
	domain.FailureBufferFull: 7,
	domain.FailureRateLimit:  5,
	domain.FailureNetwork:    3,
	domain.FailureGeneric:    5,
}

// bufferFullSchedule follows the sink's internal buffer flush cadence;
// past the end the last delay repeats.
var bufferFullSchedule = []time.Duration{
	5 * time.Second,
	15 * time.Second,
	45 * time.Second,
	2 * time.Minute,
	5 * time.Minute,
}

var networkSchedule = []time.Duration{
	1 * time.Second,
	2 * time.Second,
	4 * time.Second,
}

// RetryStrategy decides whether and when to retry a failed delivery.
// Safe for concurrent use by multiple delivery workers.
type RetryStrategy struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRetryStrategy seeds the jitter source.
func NewRetryStrategy() *RetryStrategy {
	return &RetryStrategy{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// ShouldRetry reports whether another attempt is allowed after the
// given zero-based attempt number failed.
func (r *RetryStrategy) ShouldRetry(class domain.FailureClass, attempt int) bool {
	max, ok := maxAttempts[class]
	if !ok {
		max = maxAttempts[domain.FailureGeneric]
	}
	return attempt+1 < max
}

// Delay returns the scheduled delay for the given attempt with ±25%
// uniform jitter applied.
func (r *RetryStrategy) Delay(class domain.FailureClass, attempt int) time.Duration {
	return r.jitter(ScheduledDelay(class, attempt))
}

// ScheduledDelay is the jitter-free schedule.
func ScheduledDelay(class domain.FailureClass, attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	switch class {
	case domain.FailureBufferFull:
		return fromSchedule(bufferFullSchedule, attempt)
	case domain.FailureNetwork:
		return fromSchedule(networkSchedule, attempt)
	case domain.FailureRateLimit:
		return exponential(1*time.Second, attempt, 30*time.Second)
	default:
		return exponential(2*time.Second, attempt, 30*time.Second)
	}
}

func fromSchedule(schedule []time.Duration, attempt int) time.Duration {
	if attempt >= len(schedule) {
		return schedule[len(schedule)-1]
	}
	return schedule[attempt]
}

func exponential(base time.Duration, attempt int, cap time.Duration) time.Duration {
	d := base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= cap {
			return cap
		}
	}
	return d
}

func (r *RetryStrategy) jitter(d time.Duration) time.Duration {
	r.mu.Lock()
	f := 1 - jitterFraction + 2*jitterFraction*r.rng.Float64()
	r.mu.Unlock()
	return time.Duration(float64(d) * f)
}
