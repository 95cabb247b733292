// Package algorithm implements the six positioning algorithms. Each
// one conforms to ports.Algorithm: it validates its inputs, computes a
// candidate position from the same scan/AP pair, and reports failure
// as a nil position with a reason instead of an error. The selector
// multiplier tables live next to each implementation.
package algorithm

import (
	"math"
	"sort"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/domain"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/ports"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/geo"
)

// factorTable holds the four fixed selector multiplier tables for one
// algorithm. A missing key reads as zero, which disqualifies via the
// prune threshold.
type factorTable struct {
	baseWeight   map[domain.APCountFactor]float64
	signal       map[domain.SignalQuality]float64
	geometry     map[domain.GeometricQuality]float64
	distribution map[domain.SignalDistribution]float64
}

// meta carries the static capability data shared by every algorithm;
// implementations embed it and add ComputePosition.
type meta struct {
	id             domain.AlgorithmID
	baseConfidence float64
	minAPs         int
	table          factorTable
}

func (m meta) ID() domain.AlgorithmID  { return m.id }
func (m meta) BaseConfidence() float64 { return m.baseConfidence }
func (m meta) MinimumAPs() int         { return m.minAPs }

func (m meta) BaseWeight(f domain.APCountFactor) float64 {
	return m.table.baseWeight[f]
}

func (m meta) SignalQualityMultiplier(q domain.SignalQuality) float64 {
	return m.table.signal[q]
}

func (m meta) GeometricQualityMultiplier(g domain.GeometricQuality) float64 {
	return m.table.geometry[g]
}

func (m meta) SignalDistributionMultiplier(d domain.SignalDistribution) float64 {
	return m.table.distribution[d]
}

// All returns one instance of every algorithm in stable order.
func All() []ports.Algorithm {
	return []ports.Algorithm{
		NewProximity(),
		NewRSSIRatio(),
		NewWeightedCentroid(),
		NewLogDistance(),
		NewTrilateration(),
		NewMaxLikelihood(),
	}
}

// observation pairs one usable scan with its database record.
type observation struct {
	scan domain.WifiScanResult
	ap   domain.WifiAccessPoint
}

// usableObservations filters to scans with an ACTIVE record,
// deduplicated by MAC keeping the strongest reading, sorted by
// descending RSSI. Deterministic order keeps results reproducible.
func usableObservations(scans []domain.WifiScanResult, aps map[string]domain.WifiAccessPoint) []observation {
	best := make(map[string]domain.WifiScanResult)
	for _, s := range scans {
		ap, ok := aps[s.MACAddress]
		if !ok || !ap.Usable() {
			continue
		}
		if prev, seen := best[s.MACAddress]; !seen || s.SignalStrength > prev.SignalStrength {
			best[s.MACAddress] = s
		}
	}

	obs := make([]observation, 0, len(best))
	for mac, s := range best {
		ap := aps[mac]
		obs = append(obs, observation{scan: s, ap: ap})
	}
	sort.Slice(obs, func(i, j int) bool {
		if obs[i].scan.SignalStrength != obs[j].scan.SignalStrength {
			return obs[i].scan.SignalStrength > obs[j].scan.SignalStrength
		}
		return obs[i].scan.MACAddress < obs[j].scan.MACAddress
	})
	return obs
}

func meanRSSI(obs []observation) float64 {
	if len(obs) == 0 {
		return 0
	}
	sum := 0.0
	for _, o := range obs {
		sum += o.scan.SignalStrength
	}
	return sum / float64(len(obs))
}

// finishPosition clamps a candidate into valid ranges and rejects
// non-finite coordinates.
func finishPosition(p *domain.Position) (*domain.Position, string) {
	if p == nil {
		return nil, "no candidate produced"
	}
	if math.IsNaN(p.Latitude) || math.IsInf(p.Latitude, 0) ||
		math.IsNaN(p.Longitude) || math.IsInf(p.Longitude, 0) ||
		math.IsNaN(p.Accuracy) || math.IsInf(p.Accuracy, 0) ||
		math.IsNaN(p.Confidence) || math.IsInf(p.Confidence, 0) {
		return nil, "non-finite result"
	}
	if math.IsNaN(p.Altitude) || math.IsInf(p.Altitude, 0) {
		p.Altitude = 0
	}
	p.Clamp()
	return p, ""
}

// inverseDistanceAltitude returns the inverse-distance-weighted mean of
// the AP altitudes, skipping records without one. ok is false when no
// AP carries an altitude.
func inverseDistanceAltitude(obs []observation, dists []float64) (float64, bool) {
	var sumW, sumAlt float64
	for i, o := range obs {
		if !o.ap.HasAltitude() {
			continue
		}
		d := dists[i]
		if d < 1 {
			d = 1
		}
		w := 1 / d
		sumW += w
		sumAlt += w * (*o.ap.Altitude)
	}
	if sumW == 0 {
		return 0, false
	}
	return sumAlt / sumW, true
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func rssiDistances(obs []observation) []float64 {
	dists := make([]float64, len(obs))
	for i, o := range obs {
		rssi := o.scan.SignalStrength
		dists[i] = geo.DistanceFromRSSI(rssi, o.scan.Frequency, geo.PathLossExponent(rssi))
	}
	return dists
}
