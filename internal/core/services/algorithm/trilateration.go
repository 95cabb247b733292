package algorithm

import (
	"context"
	"math"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/domain"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/geo"
)

const (
	// triStrongGDOPAlpha damps the GDOP accuracy multiplier when
	// signals are strong: mult = 1 + (gdop-1)*alpha.
	triStrongGDOPAlpha = 0.3

	// triGDOPConfidenceWeight scales the confidence penalty
	// (1 - w*(1 - 1/gdop)).
	triGDOPConfidenceWeight = 0.3
)

// Trilateration linearises the range equations around the
// strongest-signal reference AP and solves the resulting least-squares
// system by QR decomposition. Needs at least three non-collinear APs.
type Trilateration struct {
	meta
}

// NewTrilateration builds the least-squares trilateration algorithm.
func NewTrilateration() *Trilateration {
	return &Trilateration{meta: meta{
		id:             domain.AlgorithmTrilateration,
		baseConfidence: 0.7,
		minAPs:         3,
		table: factorTable{
			baseWeight: map[domain.APCountFactor]float64{
				domain.CountThree:    1.0,
				domain.CountFourPlus: 0.8,
			},
			signal: map[domain.SignalQuality]float64{
				domain.SignalStrong: 1.1,
				domain.SignalMedium: 0.8,
				domain.SignalWeak:   0.3,
			},
			geometry: map[domain.GeometricQuality]float64{
				domain.GeometryExcellent: 1.3,
				domain.GeometryGood:      1.1,
				domain.GeometryFair:      0.8,
				domain.GeometryPoor:      0.5,
			},
			distribution: map[domain.SignalDistribution]float64{
				domain.DistributionUniform:  1.1,
				domain.DistributionMixed:    1.0,
				domain.DistributionOutliers: 0.6,
			},
		},
	}}
}

func (a *Trilateration) ComputePosition(ctx context.Context, scans []domain.WifiScanResult, aps map[string]domain.WifiAccessPoint) (*domain.Position, string) {
	obs := usableObservations(scans, aps)
	if len(obs) < a.minAPs {
		return nil, "fewer than three usable access points"
	}

	// Strongest AP anchors the local metric plane.
	ref := obs[0]
	plane := geo.NewLocalPlane(ref.ap.Latitude, ref.ap.Longitude)
	dists := rssiDistances(obs)

	// Linearised system relative to the reference: the reference sits
	// at the origin, so A[i] = [2xi, 2yi] and
	// b[i] = xi^2 + yi^2 + d0^2 - di^2.
	n := len(obs) - 1
	rowsA := make([][2]float64, 0, n)
	rowsB := make([]float64, 0, n)
	for i := 1; i < len(obs); i++ {
		x, y := plane.ToMeters(obs[i].ap.Latitude, obs[i].ap.Longitude)
		rowsA = append(rowsA, [2]float64{2 * x, 2 * y})
		rowsB = append(rowsB, x*x+y*y+dists[0]*dists[0]-dists[i]*dists[i])
	}

	x, y, ok := solveQR(rowsA, rowsB)
	var lat, lon float64
	if ok && !math.IsNaN(x) && !math.IsInf(x, 0) && !math.IsNaN(y) && !math.IsInf(y, 0) {
		lat, lon = plane.FromMeters(x, y)
	} else {
		// Rank-deficient geometry; fall back to the exponential
		// RSSI-weighted centroid.
		points := make([]geo.Point, len(obs))
		weights := make([]float64, len(obs))
		for i, o := range obs {
			points[i] = geo.Point{Lat: o.ap.Latitude, Lon: o.ap.Longitude}
			weights[i] = math.Pow(10, o.scan.SignalStrength/20)
		}
		center, err := geo.WeightedCentroid(points, weights)
		if err != nil {
			return nil, "singular system and degenerate fallback weights"
		}
		lat, lon = center.Lat, center.Lon
	}

	estimate := geo.Point{Lat: lat, Lon: lon}
	apPoints := make([]geo.Point, len(obs))
	for i, o := range obs {
		apPoints[i] = geo.Point{Lat: o.ap.Latitude, Lon: o.ap.Longitude}
	}
	gdop := geo.GDOP(apPoints, estimate, false)

	mean := meanRSSI(obs)
	strong := mean >= -65

	var meanDist float64
	for _, d := range dists {
		meanDist += d
	}
	meanDist /= float64(len(dists))

	pos := &domain.Position{
		Latitude:   lat,
		Longitude:  lon,
		Accuracy:   a.accuracy(strong, meanDist, gdop),
		Confidence: a.confidence(mean, len(obs), gdop),
	}
	if alt, haveAlt := inverseDistanceAltitude(obs, dists); haveAlt {
		pos.Altitude = alt
	}
	return finishPosition(pos)
}

func (a *Trilateration) accuracy(strong bool, meanDist, gdop float64) float64 {
	base := math.Min(0.3*meanDist, 50)
	mult := geo.GDOPFactor(gdop)
	lo, hi := 1.0, 50.0
	if strong {
		base = 3.0
		if !math.IsInf(gdop, 1) {
			mult = 1 + (gdop-1)*triStrongGDOPAlpha
		}
		hi = 5.0
	}
	return clampF(base*mult, lo, hi)
}

// confidence mixes a signal-quality factor (70%) with an AP-count
// factor (30%), remaps into [0.55,0.85], then applies the GDOP
// penalty. The strong-signal floor applies after the penalty; the weak
// cap last.
func (a *Trilateration) confidence(mean float64, apCount int, gdop float64) float64 {
	sig := 0.25
	switch {
	case mean >= -65:
		sig = 1.0
	case mean >= -85:
		sig = 0.75
	case mean >= -95:
		sig = 0.5
	}

	count := 1.0
	switch apCount {
	case 3:
		count = 0.6
	case 4:
		count = 0.8
	}

	raw := 0.7*sig + 0.3*count
	conf := 0.55 + raw*(0.85-0.55)

	inv := 0.0
	if !math.IsInf(gdop, 1) && gdop > 0 {
		inv = 1 / gdop
	}
	conf *= 1 - triGDOPConfidenceWeight*(1-inv)

	if mean >= -65 && conf < 0.8 {
		conf = 0.8
	}
	if mean < -85 && conf > 0.58 {
		conf = 0.58
	}
	return clampF(conf, 0, 0.85)
}

// solveQR solves the overdetermined system A x = b for an m x 2 matrix
// via Gram-Schmidt QR. ok is false when A is rank deficient.
func solveQR(a [][2]float64, b []float64) (x, y float64, ok bool) {
	m := len(a)
	if m < 2 {
		return 0, 0, false
	}

	// First orthonormal column.
	var n1 float64
	for i := 0; i < m; i++ {
		n1 += a[i][0] * a[i][0]
	}
	n1 = math.Sqrt(n1)
	if n1 < 1e-9 {
		return 0, 0, false
	}
	q1 := make([]float64, m)
	for i := 0; i < m; i++ {
		q1[i] = a[i][0] / n1
	}

	// Project the second column off q1.
	var r12 float64
	for i := 0; i < m; i++ {
		r12 += q1[i] * a[i][1]
	}
	q2 := make([]float64, m)
	var n2 float64
	for i := 0; i < m; i++ {
		q2[i] = a[i][1] - r12*q1[i]
		n2 += q2[i] * q2[i]
	}
	n2 = math.Sqrt(n2)
	if n2 < 1e-9 {
		return 0, 0, false
	}
	for i := 0; i < m; i++ {
		q2[i] /= n2
	}

	// Back substitution on R x = Q^T b.
	var qb1, qb2 float64
	for i := 0; i < m; i++ {
		qb1 += q1[i] * b[i]
		qb2 += q2[i] * b[i]
	}
	y = qb2 / n2
	x = (qb1 - r12*y) / n1
	return x, y, true
}
