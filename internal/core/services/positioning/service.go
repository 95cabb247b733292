// Package positioning orchestrates one position request end to end:
// lookup, scenario analysis, algorithm selection, concurrent
// computation and fusion of the finalist results.
package positioning

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/domain"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/ports"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/services/fusion"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/services/scenario"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/services/selector"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/telemetry"
)

const (
	defaultAlgorithmTimeout = 5 * time.Second
	defaultMaxConcurrent    = 3
)

// Service implements ports.PositionService.
type Service struct {
	db       ports.APDatabase
	algos    []ports.Algorithm
	notifier ports.CalculationNotifier

	algorithmTimeout time.Duration
	maxConcurrent    int
}

// Option configures a Service.
type Option func(*Service)

// WithAlgorithmTimeout overrides the per-algorithm deadline.
func WithAlgorithmTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.algorithmTimeout = d
		}
	}
}

// WithMaxConcurrent bounds the number of algorithms computed at once.
func WithMaxConcurrent(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxConcurrent = n
		}
	}
}

// WithNotifier attaches a live calculation observer.
func WithNotifier(n ports.CalculationNotifier) Option {
	return func(s *Service) { s.notifier = n }
}

// NewService wires the orchestrator over an AP database and a fixed
// algorithm set.
func NewService(db ports.APDatabase, algos []ports.Algorithm, opts ...Option) *Service {
	s := &Service{
		db:               db,
		algos:            algos,
		algorithmTimeout: defaultAlgorithmTimeout,
		maxConcurrent:    defaultMaxConcurrent,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Locate resolves one scan set to a position. The returned
// CalculationInfo is populated even on NO_POSITION outcomes so callers
// can surface why nothing was produced.
func (s *Service) Locate(ctx context.Context, scans []domain.WifiScanResult) (*domain.Position, *domain.CalculationInfo, error) {
	info := &domain.CalculationInfo{RequestID: uuid.NewString()}

	normalized, err := normalizeScans(scans)
	if err != nil {
		telemetry.PositionRequests.WithLabelValues("invalid_input").Inc()
		return nil, info, err
	}

	macs := make([]string, 0, len(normalized))
	for _, sc := range normalized {
		macs = append(macs, sc.MACAddress)
	}
	records, err := s.db.FindByMACs(ctx, macs)
	if err != nil {
		telemetry.PositionRequests.WithLabelValues("error").Inc()
		return nil, info, fmt.Errorf("ap lookup: %w", err)
	}

	usable := fillAccessPointTrace(info, normalized, records)
	if usable == 0 {
		telemetry.PositionRequests.WithLabelValues("no_position").Inc()
		s.notify(info, nil)
		return nil, info, domain.ErrNoMatchingAPs
	}

	// Scans without a usable record are dropped before scenario
	// analysis so they cannot skew the context.
	scansUsed := make([]domain.WifiScanResult, 0, len(normalized))
	apsUsed := make(map[string]domain.WifiAccessPoint, usable)
	for _, sc := range normalized {
		if ap, ok := records[sc.MACAddress]; ok && ap.Usable() {
			scansUsed = append(scansUsed, sc)
			apsUsed[sc.MACAddress] = ap
		}
	}

	info.SelectionContext = scenario.Build(scansUsed, apsUsed)

	sel := selector.Select(info.SelectionContext, s.algos)
	info.AlgorithmSelection = sel.Evaluations
	if len(sel.Finalists) == 0 {
		telemetry.PositionRequests.WithLabelValues("no_position").Inc()
		s.notify(info, nil)
		return nil, info, domain.ErrNoPosition
	}

	outcomes := s.runFinalists(ctx, sel.Finalists, scansUsed, apsUsed)
	info.Outcomes = outcomes

	candidates := make([]fusion.Candidate, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Succeeded && o.Position != nil {
			candidates = append(candidates, fusion.Candidate{Position: *o.Position, Weight: o.Weight})
		}
	}
	if len(candidates) == 0 {
		telemetry.PositionRequests.WithLabelValues("no_position").Inc()
		s.notify(info, nil)
		return nil, info, domain.ErrNoPosition
	}

	fused, err := fusion.Combine(candidates)
	if err != nil {
		telemetry.PositionRequests.WithLabelValues("no_position").Inc()
		s.notify(info, nil)
		return nil, info, err
	}

	telemetry.PositionRequests.WithLabelValues("ok").Inc()
	s.notify(info, &fused)
	return &fused, info, nil
}

// runFinalists computes every finalist concurrently under a bounded
// worker pool, each with its own deadline. Outcome order follows the
// finalist order regardless of completion order.
func (s *Service) runFinalists(ctx context.Context, finalists []domain.AlgorithmWeight, scans []domain.WifiScanResult, aps map[string]domain.WifiAccessPoint) []domain.AlgorithmOutcome {
	byID := make(map[domain.AlgorithmID]ports.Algorithm, len(s.algos))
	for _, a := range s.algos {
		byID[a.ID()] = a
	}

	outcomes := make([]domain.AlgorithmOutcome, len(finalists))
	sem := make(chan struct{}, s.maxConcurrent)
	var wg sync.WaitGroup

	for i, f := range finalists {
		algo, ok := byID[f.Algorithm]
		if !ok {
			outcomes[i] = domain.AlgorithmOutcome{
				Algorithm: f.Algorithm, Weight: f.Weight,
				Reason: "algorithm not registered",
			}
			continue
		}

		wg.Add(1)
		go func(idx int, fw domain.AlgorithmWeight, algo ports.Algorithm) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			runCtx, cancel := context.WithTimeout(ctx, s.algorithmTimeout)
			defer cancel()

			start := time.Now()
			pos, reason := algo.ComputePosition(runCtx, scans, aps)
			elapsed := time.Since(start)
			telemetry.AlgorithmDuration.WithLabelValues(string(fw.Algorithm)).Observe(elapsed.Seconds())

			out := domain.AlgorithmOutcome{
				Algorithm: fw.Algorithm,
				Weight:    fw.Weight,
				ElapsedMs: elapsed.Milliseconds(),
			}
			switch {
			case runCtx.Err() != nil && pos == nil:
				out.Reason = "deadline exceeded"
				telemetry.AlgorithmRuns.WithLabelValues(string(fw.Algorithm), "timeout").Inc()
			case pos == nil:
				out.Reason = reason
				telemetry.AlgorithmRuns.WithLabelValues(string(fw.Algorithm), "failed").Inc()
			case !finite(pos):
				out.Reason = "non-finite result"
				telemetry.AlgorithmRuns.WithLabelValues(string(fw.Algorithm), "failed").Inc()
			default:
				out.Succeeded = true
				out.Position = pos
				telemetry.AlgorithmRuns.WithLabelValues(string(fw.Algorithm), "ok").Inc()
			}
			outcomes[idx] = out
		}(i, f, algo)
	}

	wg.Wait()
	return outcomes
}

func (s *Service) notify(info *domain.CalculationInfo, pos *domain.Position) {
	if s.notifier == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("calculation notifier panicked: %v", r)
		}
	}()
	s.notifier.NotifyCalculation(*info, pos)
}

// normalizeScans validates and canonicalises the request scans.
func normalizeScans(scans []domain.WifiScanResult) ([]domain.WifiScanResult, error) {
	if len(scans) == 0 {
		return nil, fmt.Errorf("%w: empty scan set", domain.ErrInvalidInput)
	}

	out := make([]domain.WifiScanResult, 0, len(scans))
	for _, sc := range scans {
		mac := domain.NormalizeMAC(sc.MACAddress)
		if !domain.IsValidMAC(mac) {
			return nil, fmt.Errorf("%w: malformed mac %q", domain.ErrInvalidInput, sc.MACAddress)
		}
		if sc.SignalStrength > 0 || sc.SignalStrength < -120 {
			return nil, fmt.Errorf("%w: signal strength %v out of range", domain.ErrInvalidInput, sc.SignalStrength)
		}
		sc.MACAddress = mac
		out = append(out, sc)
	}
	return out, nil
}

// fillAccessPointTrace records the lookup outcome per scanned BSSID and
// returns the number of usable APs.
func fillAccessPointTrace(info *domain.CalculationInfo, scans []domain.WifiScanResult, records map[string]domain.WifiAccessPoint) int {
	seen := make(map[string]bool, len(scans))
	counts := make(map[domain.APStatus]int)
	usable := 0

	for _, sc := range scans {
		if seen[sc.MACAddress] {
			continue
		}
		seen[sc.MACAddress] = true

		usage := domain.AccessPointUsage{BSSID: sc.MACAddress, Usage: "unknown", Status: domain.StatusUnknown}
		if ap, ok := records[sc.MACAddress]; ok {
			usage.Status = ap.Status
			counts[ap.Status]++
			if ap.Usable() {
				usage.Usage = "used"
				usage.Location = &domain.Position{
					Latitude:  ap.Latitude,
					Longitude: ap.Longitude,
					Accuracy:  ap.HorizontalAccuracy,
				}
				usable++
			} else {
				usage.Usage = "filtered"
			}
		} else {
			counts[domain.StatusUnknown]++
		}
		info.AccessPoints = append(info.AccessPoints, usage)
	}

	statuses := make([]domain.APStatus, 0, len(counts))
	for st := range counts {
		statuses = append(statuses, st)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i] < statuses[j] })

	summary := domain.AccessPointSummary{Total: len(info.AccessPoints), Used: usable}
	for _, st := range statuses {
		summary.StatusCounts = append(summary.StatusCounts, domain.StatusCount{Status: st, Count: counts[st]})
	}
	info.AccessPointSummary = summary
	return usable
}

func finite(p *domain.Position) bool {
	for _, v := range []float64{p.Latitude, p.Longitude, p.Altitude, p.Accuracy, p.Confidence} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
