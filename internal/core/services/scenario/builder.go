// Package scenario derives the per-request SelectionContext from the
// filtered scans and their matching AP records. The context is built
// once and read-only afterwards.
package scenario

import (
	"math"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/domain"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/geo"
)

// Signal quality thresholds (mean RSSI, dBm).
const (
	strongThreshold = -70.0
	mediumThreshold = -85.0
	weakThreshold   = -95.0
	uniformStdDev   = 3.0
	outlierStdDev   = 10.0
	excellentGDOP   = 2.0
	goodGDOP        = 4.0
	fairGDOP        = 6.0
)

// Build characterises the request. The scans must already be filtered
// to entries with an ACTIVE database record; aps maps canonical MAC to
// its record.
func Build(scans []domain.WifiScanResult, aps map[string]domain.WifiAccessPoint) domain.SelectionContext {
	return domain.SelectionContext{
		APCountFactor:      countFactor(scans),
		SignalQuality:      signalQuality(scans),
		SignalDistribution: signalDistribution(scans),
		GeometricQuality:   geometricQuality(scans, aps),
	}
}

func countFactor(scans []domain.WifiScanResult) domain.APCountFactor {
	distinct := make(map[string]struct{}, len(scans))
	for _, s := range scans {
		distinct[s.MACAddress] = struct{}{}
	}
	switch len(distinct) {
	case 0, 1:
		return domain.CountSingle
	case 2:
		return domain.CountTwo
	case 3:
		return domain.CountThree
	default:
		return domain.CountFourPlus
	}
}

func signalQuality(scans []domain.WifiScanResult) domain.SignalQuality {
	mean := domain.MeanSignal(scans)
	switch {
	case mean > strongThreshold:
		return domain.SignalStrong
	case mean >= mediumThreshold:
		return domain.SignalMedium
	case mean >= weakThreshold:
		return domain.SignalWeak
	default:
		return domain.SignalVeryWeak
	}
}

func signalDistribution(scans []domain.WifiScanResult) domain.SignalDistribution {
	sigma := signalStdDev(scans)
	switch {
	case sigma < uniformStdDev:
		return domain.DistributionUniform
	case sigma < outlierStdDev:
		return domain.DistributionMixed
	default:
		return domain.DistributionOutliers
	}
}

func signalStdDev(scans []domain.WifiScanResult) float64 {
	if len(scans) < 2 {
		return 0
	}
	mean := domain.MeanSignal(scans)
	var sum float64
	for _, s := range scans {
		d := s.SignalStrength - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(scans)))
}

// geometricQuality checks collinearity first, then buckets the GDOP
// evaluated at the exponential-RSSI-weighted centroid of the APs.
func geometricQuality(scans []domain.WifiScanResult, aps map[string]domain.WifiAccessPoint) domain.GeometricQuality {
	points := make([]geo.Point, 0, len(scans))
	weights := make([]float64, 0, len(scans))
	for _, s := range scans {
		ap, ok := aps[s.MACAddress]
		if !ok {
			continue
		}
		points = append(points, geo.Point{Lat: ap.Latitude, Lon: ap.Longitude})
		weights = append(weights, math.Pow(10, s.SignalStrength/20))
	}

	if geo.IsCollinear(points) {
		return domain.GeometryCollinear
	}

	estimate, err := geo.WeightedCentroid(points, weights)
	if err != nil {
		return domain.GeometryPoor
	}

	g := geo.GDOP(points, estimate, false)
	switch {
	case g < excellentGDOP:
		return domain.GeometryExcellent
	case g < goodGDOP:
		return domain.GeometryGood
	case g < fairGDOP:
		return domain.GeometryFair
	default:
		return domain.GeometryPoor
	}
}
