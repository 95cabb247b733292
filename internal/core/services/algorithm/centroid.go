package algorithm

import (
	"context"
	"math"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/domain"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/geo"
)

// WeightedCentroid averages AP coordinates with exponential RSSI
// weights 10^(rssi/20). Cheap and robust, but biased toward dense AP
// clusters.
type WeightedCentroid struct {
	meta
}

// NewWeightedCentroid builds the simple centroid algorithm.
func NewWeightedCentroid() *WeightedCentroid {
	return &WeightedCentroid{meta: meta{
		id:             domain.AlgorithmWeightedCentroid,
		baseConfidence: 0.55,
		minAPs:         2,
		table: factorTable{
			baseWeight: map[domain.APCountFactor]float64{
				domain.CountTwo:      0.9,
				domain.CountThree:    1.0,
				domain.CountFourPlus: 0.9,
			},
			signal: map[domain.SignalQuality]float64{
				domain.SignalStrong: 1.0,
				domain.SignalMedium: 1.0,
				domain.SignalWeak:   0.7,
			},
			geometry: map[domain.GeometricQuality]float64{
				domain.GeometryExcellent: 1.0,
				domain.GeometryGood:      1.0,
				domain.GeometryFair:      0.9,
				domain.GeometryPoor:      0.8,
				domain.GeometryCollinear: 0.9,
			},
			distribution: map[domain.SignalDistribution]float64{
				domain.DistributionUniform:  1.1,
				domain.DistributionMixed:    0.9,
				domain.DistributionOutliers: 0.7,
			},
		},
	}}
}

func (a *WeightedCentroid) ComputePosition(ctx context.Context, scans []domain.WifiScanResult, aps map[string]domain.WifiAccessPoint) (*domain.Position, string) {
	obs := usableObservations(scans, aps)
	if len(obs) < a.minAPs {
		return nil, "fewer than two usable access points"
	}

	points := make([]geo.Point, len(obs))
	weights := make([]float64, len(obs))
	for i, o := range obs {
		points[i] = geo.Point{Lat: o.ap.Latitude, Lon: o.ap.Longitude}
		weights[i] = math.Pow(10, o.scan.SignalStrength/20)
	}

	center, err := geo.WeightedCentroid(points, weights)
	if err != nil {
		return nil, "degenerate weights"
	}

	// Weighted RMS spread of the constellation around the estimate.
	var sumW, sumD2 float64
	for i, o := range obs {
		d := geo.HaversineMeters(center.Lat, center.Lon, o.ap.Latitude, o.ap.Longitude)
		sumW += weights[i]
		sumD2 += weights[i] * d * d
	}
	spread := math.Sqrt(sumD2 / sumW)

	pos := &domain.Position{
		Latitude:   center.Lat,
		Longitude:  center.Lon,
		Accuracy:   clampF(spread, 8, 40),
		Confidence: clampF(a.baseConfidence*centroidSignalFactor(meanRSSI(obs)), 0.3, 0.8),
	}

	// Altitude from the subset of APs that carry one, same weights.
	var sumWAlt, sumAlt float64
	for i, o := range obs {
		if o.ap.HasAltitude() {
			sumWAlt += weights[i]
			sumAlt += weights[i] * (*o.ap.Altitude)
		}
	}
	if sumWAlt > 0 {
		pos.Altitude = sumAlt / sumWAlt
	}
	return finishPosition(pos)
}

func centroidSignalFactor(mean float64) float64 {
	switch {
	case mean >= -65:
		return 1.1
	case mean >= -85:
		return 1.0
	default:
		return 0.85
	}
}
