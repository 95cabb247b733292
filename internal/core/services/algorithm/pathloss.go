package algorithm

import (
	"context"
	"strings"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/domain"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/geo"
)

// vendorRSSICorrections adjusts reported RSSI per AP vendor before the
// path-loss inversion. Radios calibrate RSSI differently; these
// offsets (dB) were fitted against mixed-vendor survey data.
var vendorRSSICorrections = map[string]float64{
	"cisco":    1.5,
	"aruba":    1.0,
	"ubiquiti": -1.0,
	"tp-link":  -2.0,
	"netgear":  -1.5,
	"mikrotik": 0.5,
}

func vendorCorrection(vendor string) float64 {
	return vendorRSSICorrections[strings.ToLower(strings.TrimSpace(vendor))]
}

// LogDistance converts every RSSI to a distance through the close-in
// model (with per-vendor correction) and takes the 1/d^2 weighted
// centroid of the AP coordinates.
type LogDistance struct {
	meta
}

// NewLogDistance builds the log-distance path loss algorithm.
func NewLogDistance() *LogDistance {
	return &LogDistance{meta: meta{
		id:             domain.AlgorithmLogDistance,
		baseConfidence: 0.6,
		minAPs:         2,
		table: factorTable{
			baseWeight: map[domain.APCountFactor]float64{
				domain.CountTwo:      0.8,
				domain.CountThree:    1.0,
				domain.CountFourPlus: 0.9,
			},
			signal: map[domain.SignalQuality]float64{
				domain.SignalStrong: 1.1,
				domain.SignalMedium: 0.9,
				domain.SignalWeak:   0.5,
			},
			geometry: map[domain.GeometricQuality]float64{
				domain.GeometryExcellent: 1.1,
				domain.GeometryGood:      1.0,
				domain.GeometryFair:      0.9,
				domain.GeometryPoor:      0.7,
				domain.GeometryCollinear: 0.8,
			},
			distribution: map[domain.SignalDistribution]float64{
				domain.DistributionUniform:  1.0,
				domain.DistributionMixed:    0.9,
				domain.DistributionOutliers: 0.8,
			},
		},
	}}
}

func (a *LogDistance) ComputePosition(ctx context.Context, scans []domain.WifiScanResult, aps map[string]domain.WifiAccessPoint) (*domain.Position, string) {
	obs := usableObservations(scans, aps)
	if len(obs) < a.minAPs {
		return nil, "fewer than two usable access points"
	}

	points := make([]geo.Point, len(obs))
	weights := make([]float64, len(obs))
	dists := make([]float64, len(obs))
	var sumDist float64
	for i, o := range obs {
		rssi := o.scan.SignalStrength + vendorCorrection(o.ap.Vendor)
		d := geo.DistanceFromRSSI(rssi, o.scan.Frequency, geo.PathLossExponent(rssi))
		dists[i] = d
		sumDist += d
		points[i] = geo.Point{Lat: o.ap.Latitude, Lon: o.ap.Longitude}
		weights[i] = 1 / (d * d)
	}

	center, err := geo.WeightedCentroid(points, weights)
	if err != nil {
		return nil, "degenerate distance weights"
	}

	meanDist := sumDist / float64(len(obs))
	pos := &domain.Position{
		Latitude:   center.Lat,
		Longitude:  center.Lon,
		Accuracy:   clampF(0.4*meanDist, 5, 35),
		Confidence: clampF(a.baseConfidence*pathLossSignalFactor(meanRSSI(obs)), 0.3, 0.8),
	}
	if alt, ok := inverseDistanceAltitude(obs, dists); ok {
		pos.Altitude = alt
	}
	return finishPosition(pos)
}

func pathLossSignalFactor(mean float64) float64 {
	switch {
	case mean >= -65:
		return 1.1
	case mean >= -85:
		return 0.95
	default:
		return 0.8
	}
}
