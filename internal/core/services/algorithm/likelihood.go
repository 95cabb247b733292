package algorithm

import (
	"context"
	"math"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/domain"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/geo"
)

const (
	mlInitialStepM = 10.0
	mlMinStepM     = 0.1
	mlMaxIters     = 100
)

// MaxLikelihood refines the exponential-RSSI-weighted centroid by
// gradient ascent on a Gaussian RSSI log-likelihood. The noise model
// widens as signals weaken, so weak measurements pull less hard.
type MaxLikelihood struct {
	meta
}

// NewMaxLikelihood builds the gradient-ascent estimator.
func NewMaxLikelihood() *MaxLikelihood {
	return &MaxLikelihood{meta: meta{
		id:             domain.AlgorithmMaxLikelihood,
		baseConfidence: 0.75,
		minAPs:         4,
		table: factorTable{
			baseWeight: map[domain.APCountFactor]float64{
				domain.CountFourPlus: 1.3,
			},
			signal: map[domain.SignalQuality]float64{
				domain.SignalStrong: 1.2,
				domain.SignalMedium: 0.9,
				domain.SignalWeak:   0.4,
			},
			geometry: map[domain.GeometricQuality]float64{
				domain.GeometryExcellent: 1.3,
				domain.GeometryGood:      1.1,
				domain.GeometryFair:      0.9,
				domain.GeometryPoor:      0.6,
				domain.GeometryCollinear: 0.5,
			},
			distribution: map[domain.SignalDistribution]float64{
				domain.DistributionUniform:  1.1,
				domain.DistributionMixed:    1.0,
				domain.DistributionOutliers: 0.9,
			},
		},
	}}
}

// rssiSigma returns the per-measurement noise deviation in dB.
func rssiSigma(rssi float64) float64 {
	switch {
	case rssi >= -65:
		return 2.5
	case rssi >= -85:
		return 4.0
	default:
		return 6.0
	}
}

func (a *MaxLikelihood) ComputePosition(ctx context.Context, scans []domain.WifiScanResult, aps map[string]domain.WifiAccessPoint) (*domain.Position, string) {
	obs := usableObservations(scans, aps)
	if len(obs) < a.minAPs {
		return nil, "fewer than four usable access points"
	}

	points := make([]geo.Point, len(obs))
	weights := make([]float64, len(obs))
	for i, o := range obs {
		points[i] = geo.Point{Lat: o.ap.Latitude, Lon: o.ap.Longitude}
		weights[i] = math.Pow(10, o.scan.SignalStrength/20)
	}
	start, err := geo.WeightedCentroid(points, weights)
	if err != nil {
		return nil, "degenerate starting weights"
	}

	plane := geo.NewLocalPlane(start.Lat, start.Lon)
	apXY := make([][2]float64, len(obs))
	for i, o := range obs {
		x, y := plane.ToMeters(o.ap.Latitude, o.ap.Longitude)
		apXY[i] = [2]float64{x, y}
	}

	px, py := plane.ToMeters(start.Lat, start.Lon)
	best := a.logLikelihood(obs, apXY, px, py)
	eta := mlInitialStepM

	for iter := 0; iter < mlMaxIters && eta >= mlMinStepM; iter++ {
		gx, gy := a.gradient(obs, apXY, px, py)
		norm := math.Hypot(gx, gy)
		if norm < 1e-12 {
			break
		}

		nx, ny := px+eta*gx/norm, py+eta*gy/norm
		if ll := a.logLikelihood(obs, apXY, nx, ny); ll > best {
			px, py, best = nx, ny, ll
		} else {
			eta /= 2
		}
	}

	lat, lon := plane.FromMeters(px, py)
	estimate := geo.Point{Lat: lat, Lon: lon}
	gdop := geo.GDOP(points, estimate, false)

	dists := rssiDistances(obs)
	var meanDist float64
	for _, d := range dists {
		meanDist += d
	}
	meanDist /= float64(len(dists))

	mean := meanRSSI(obs)
	strong := mean >= -65

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

// logLikelihood scores a candidate position: Gaussian residual between
// the measured RSSI and the expected RSSI at the candidate's distance
// from each AP, weighted by the AP record's confidence.
func (a *MaxLikelihood) logLikelihood(obs []observation, apXY [][2]float64, px, py float64) float64 {
	var ll float64
	for i, o := range obs {
		d := math.Hypot(px-apXY[i][0], py-apXY[i][1])
		if d < geo.MinPathDistanceM {
			d = geo.MinPathDistanceM
		}
		mu := geo.ExpectedRSSI(d, o.scan.Frequency, geo.PathLossExponent(o.scan.SignalStrength))
		sigma := rssiSigma(o.scan.SignalStrength)
		res := o.scan.SignalStrength - mu
		ll -= res * res / (2 * sigma * sigma) * o.ap.Confidence
	}
	return ll
}

// gradient is the analytic gradient of logLikelihood in plane meters.
// d(mu)/dd = -10n/(d ln 10), d(d)/dp = (p - ap)/d.
func (a *MaxLikelihood) gradient(obs []observation, apXY [][2]float64, px, py float64) (gx, gy float64) {
	for i, o := range obs {
		dx, dy := px-apXY[i][0], py-apXY[i][1]
		d := math.Hypot(dx, dy)
		if d < geo.MinPathDistanceM {
			continue
		}
		n := geo.PathLossExponent(o.scan.SignalStrength)
		mu := geo.ExpectedRSSI(d, o.scan.Frequency, n)
		sigma := rssiSigma(o.scan.SignalStrength)
		res := o.scan.SignalStrength - mu
		dMu := -10 * n / (d * math.Ln10)
		scale := res / (sigma * sigma) * o.ap.Confidence * dMu / d
		gx += scale * dx
		gy += scale * dy
	}
	return gx, gy
}

func (a *MaxLikelihood) accuracy(strong bool, meanDist, gdop float64) float64 {
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

// confidence follows the trilateration shape with wider bounds.
func (a *MaxLikelihood) confidence(mean float64, apCount int, gdop float64) float64 {
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
	if apCount == 4 {
		count = 0.8
	}

	raw := 0.7*sig + 0.3*count
	conf := 0.6 + raw*(0.95-0.6)

	inv := 0.0
	if !math.IsInf(gdop, 1) && gdop > 0 {
		inv = 1 / gdop
	}
	conf *= 1 - triGDOPConfidenceWeight*(1-inv)

	if mean >= -65 && conf < 0.85 {
		conf = 0.85
	}
	return clampF(conf, 0.6, 0.95)
}
