package algorithm

import (
	"context"
	"math"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/domain"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/geo"
)

// weightNormalizationDB scales the RSSI delta of a pair into its
// interpolation weight. Deltas beyond 30 dB produce weights above 1;
// the accumulation normalises them away, so no clamp is applied.
const weightNormalizationDB = 30.0

// RSSIRatio interpolates between every unordered AP pair, pulling the
// estimate toward the AP heard more strongly, with pair weights
// proportional to the signal difference.
type RSSIRatio struct {
	meta
}

// NewRSSIRatio builds the pairwise ratio algorithm with its tables.
func NewRSSIRatio() *RSSIRatio {
	return &RSSIRatio{meta: meta{
		id:             domain.AlgorithmRSSIRatio,
		baseConfidence: 0.6,
		minAPs:         2,
		table: factorTable{
			baseWeight: map[domain.APCountFactor]float64{
				domain.CountTwo:      1.2,
				domain.CountThree:    1.0,
				domain.CountFourPlus: 0.8,
			},
			signal: map[domain.SignalQuality]float64{
				domain.SignalStrong: 1.1,
				domain.SignalMedium: 1.0,
				domain.SignalWeak:   0.6,
			},
			geometry: map[domain.GeometricQuality]float64{
				domain.GeometryExcellent: 1.1,
				domain.GeometryGood:      1.0,
				domain.GeometryFair:      0.9,
				domain.GeometryPoor:      0.8,
				domain.GeometryCollinear: 0.8,
			},
			distribution: map[domain.SignalDistribution]float64{
				domain.DistributionUniform:  1.1,
				domain.DistributionMixed:    1.0,
				domain.DistributionOutliers: 0.7,
			},
		},
	}}
}

func (a *RSSIRatio) ComputePosition(ctx context.Context, scans []domain.WifiScanResult, aps map[string]domain.WifiAccessPoint) (*domain.Position, string) {
	obs := usableObservations(scans, aps)
	if len(obs) < a.minAPs {
		return nil, "fewer than two usable access points"
	}

	var sumW, sumLat, sumLon float64
	var sumWAlt, sumAlt float64
	var sumPairDist float64
	pairs := 0

	for i := 0; i < len(obs); i++ {
		for j := i + 1; j < len(obs); j++ {
			ri, rj := obs[i].scan.SignalStrength, obs[j].scan.SignalStrength
			ratio := math.Pow(10, (ri-rj)/20)
			w := math.Abs(ri-rj) / weightNormalizationDB

			lat := (obs[i].ap.Latitude + ratio*obs[j].ap.Latitude) / (1 + ratio)
			lon := (obs[i].ap.Longitude + ratio*obs[j].ap.Longitude) / (1 + ratio)
			sumW += w
			sumLat += w * lat
			sumLon += w * lon

			if obs[i].ap.HasAltitude() && obs[j].ap.HasAltitude() {
				alt := (*obs[i].ap.Altitude + ratio**obs[j].ap.Altitude) / (1 + ratio)
				sumWAlt += w
				sumAlt += w * alt
			}

			sumPairDist += geo.HaversineMeters(
				obs[i].ap.Latitude, obs[i].ap.Longitude,
				obs[j].ap.Latitude, obs[j].ap.Longitude)
			pairs++
		}
	}

	if sumW == 0 {
		return nil, "all pairs report identical signal strength"
	}

	meanPair := sumPairDist / float64(pairs)
	conf := a.baseConfidence * ratioSignalFactor(meanRSSI(obs))

	pos := &domain.Position{
		Latitude:   sumLat / sumW,
		Longitude:  sumLon / sumW,
		Accuracy:   clampF(0.5*meanPair, 5, 30),
		Confidence: clampF(conf, 0.3, 0.85),
	}
	if sumWAlt > 0 {
		pos.Altitude = sumAlt / sumWAlt
	}
	return finishPosition(pos)
}

func ratioSignalFactor(mean float64) float64 {
	switch {
	case mean >= -65:
		return 1.15
	case mean >= -80:
		return 1.0
	default:
		return 0.8
	}
}
