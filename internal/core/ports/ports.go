package ports

import (
	"context"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/domain"
)

// APDatabase is the read-only lookup interface over the reference AP
// store. Absence of a record is not an error: FindByMAC returns
// (nil, nil) and FindByMACs simply omits the key.
type APDatabase interface {
	FindByMAC(ctx context.Context, mac string) (*domain.WifiAccessPoint, error)
	FindByMACs(ctx context.Context, macs []string) (map[string]domain.WifiAccessPoint, error)
}

// Algorithm is the capability set every positioning algorithm
// implements. ComputePosition must never panic or return an error
// across this boundary: on any internal failure (singularity,
// non-convergence, too few usable scans) it returns a nil position and
// a short failure reason for the orchestrator's calculation trace.
type Algorithm interface {
	ID() domain.AlgorithmID
	BaseConfidence() float64
	MinimumAPs() int

	// Selector weighting tables. All four are fixed per algorithm.
	BaseWeight(domain.APCountFactor) float64
	SignalQualityMultiplier(domain.SignalQuality) float64
	GeometricQualityMultiplier(domain.GeometricQuality) float64
	SignalDistributionMultiplier(domain.SignalDistribution) float64

	ComputePosition(ctx context.Context, scans []domain.WifiScanResult, aps map[string]domain.WifiAccessPoint) (*domain.Position, string)
}

// PositionService is the positioning front door consumed by the web
// adapter.
type PositionService interface {
	Locate(ctx context.Context, scans []domain.WifiScanResult) (*domain.Position, *domain.CalculationInfo, error)
}

// CalculationNotifier receives every completed calculation for live
// observers (the websocket feed).
type CalculationNotifier interface {
	NotifyCalculation(info domain.CalculationInfo, pos *domain.Position)
}
