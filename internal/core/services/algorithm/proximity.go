package algorithm

import (
	"context"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/domain"
)

// Proximity returns the strongest-signal AP's own coordinates. It is
// the only algorithm usable with a single AP and the fallback of last
// resort under very weak signals.
type Proximity struct {
	meta
}

// NewProximity builds the proximity detector with its selector tables.
func NewProximity() *Proximity {
	return &Proximity{meta: meta{
		id:             domain.AlgorithmProximity,
		baseConfidence: 0.5,
		minAPs:         1,
		table: factorTable{
			baseWeight: map[domain.APCountFactor]float64{
				domain.CountSingle:   1.0,
				domain.CountTwo:      0.6,
				domain.CountThree:    0.4,
				domain.CountFourPlus: 0.3,
			},
			signal: map[domain.SignalQuality]float64{
				domain.SignalStrong:   1.2,
				domain.SignalMedium:   1.0,
				domain.SignalWeak:     0.9,
				domain.SignalVeryWeak: 0.8,
			},
			geometry: map[domain.GeometricQuality]float64{
				domain.GeometryExcellent: 1.0,
				domain.GeometryGood:      1.0,
				domain.GeometryFair:      1.0,
				domain.GeometryPoor:      1.0,
				domain.GeometryCollinear: 1.0,
			},
			distribution: map[domain.SignalDistribution]float64{
				domain.DistributionUniform:  1.0,
				domain.DistributionMixed:    1.0,
				domain.DistributionOutliers: 1.1,
			},
		},
	}}
}

// signalPenalty grows linearly from 1 at -60 dBm to 3 at -100 dBm.
func signalPenalty(rssi float64) float64 {
	return clampF(1+(-60-rssi)/20, 1, 3)
}

func (a *Proximity) ComputePosition(ctx context.Context, scans []domain.WifiScanResult, aps map[string]domain.WifiAccessPoint) (*domain.Position, string) {
	obs := usableObservations(scans, aps)
	if len(obs) < a.minAPs {
		return nil, "no usable access point"
	}

	// usableObservations sorts by descending RSSI.
	strongest := obs[0]
	penalty := signalPenalty(strongest.scan.SignalStrength)

	conf := strongest.ap.Confidence * (1 - (penalty-1)/4)
	if strongest.scan.SignalStrength >= -65 && conf < a.baseConfidence {
		conf = a.baseConfidence
	}

	pos := &domain.Position{
		Latitude:   strongest.ap.Latitude,
		Longitude:  strongest.ap.Longitude,
		Accuracy:   strongest.ap.HorizontalAccuracy * penalty,
		Confidence: clampF(conf, 0.1, 0.85),
	}
	if strongest.ap.HasAltitude() {
		pos.Altitude = *strongest.ap.Altitude
	}
	return finishPosition(pos)
}
