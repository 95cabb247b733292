// Package fusion merges the candidate positions produced by the
// finalist algorithms into one answer. Weighted averaging handles the
// central estimate; accuracy comes from a robust aggregate of the input
// accuracies, widened when the candidates disagree geometrically.
package fusion

import (
	"math"
	"sort"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/domain"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/geo"
)

const (
	// conditionEpsilon marks the covariance as singular.
	conditionEpsilon = 1e-9

	// conditionNorm is the condition number at which geometric spread
	// between candidates starts inflating the fused accuracy.
	conditionNorm = 4.0

	// collinearConfidenceCap bounds fused confidence when the
	// candidates line up.
	collinearConfidenceCap = 0.69

	collinearConfidenceMultiplier = 1.2

	// maxGeometryFactor caps accuracy inflation even for singular
	// covariance.
	maxGeometryFactor = 4.0

	// disagreementSpreadM is the candidate scatter, in meters along the
	// major axis, below which non-collinear candidates count as
	// agreeing.
	disagreementSpreadM = 10.0
)

// Candidate is one algorithm's position with its selector weight.
type Candidate struct {
	Position domain.Position
	Weight   float64
}

// Combine fuses one or more candidates. A single candidate passes
// through unchanged.
func Combine(candidates []Candidate) (domain.Position, error) {
	if len(candidates) == 0 {
		return domain.Position{}, domain.ErrNoPosition
	}
	if len(candidates) == 1 {
		return candidates[0].Position, nil
	}

	weights := normalise(candidates)

	var lat, lon, alt, conf float64
	for i, c := range candidates {
		lat += weights[i] * c.Position.Latitude
		lon += weights[i] * c.Position.Longitude
		alt += weights[i] * c.Position.Altitude
		conf += weights[i] * c.Position.Confidence
	}

	points := make([]geo.Point, len(candidates))
	for i, c := range candidates {
		points[i] = geo.Point{Lat: c.Position.Latitude, Lon: c.Position.Longitude}
	}

	kappa, spread := conditionNumber(points, weights, lat, lon)
	// Candidates sitting on one point agree; only a stretched-out line
	// of distinct candidates counts as collinear disagreement. The
	// condition number alone is scale-free, so the penalty also needs
	// the absolute scatter to be meaningful.
	collinear := spread > 1 && geo.IsCollinear(points)
	gqf := 1.0
	if collinear {
		gqf = geometryFactor(kappa, true)
	} else if spread > disagreementSpreadM {
		gqf = geometryFactor(kappa, false)
	}

	robust := robustAccuracy(candidates)

	var accuracy float64
	if collinear {
		mult := gqf
		if k := math.Sqrt(kappa / conditionNorm); k > mult {
			mult = k
		}
		if mult > maxGeometryFactor || math.IsInf(mult, 1) || math.IsNaN(mult) {
			mult = maxGeometryFactor
		}
		accuracy = math.Max(6, robust*mult)
		conf = math.Min(collinearConfidenceCap, conf/(gqf*collinearConfidenceMultiplier))
	} else {
		accuracy = math.Max(robust, robust*gqf)
		conf = conf / math.Sqrt(gqf)
	}

	fused := domain.Position{
		Latitude:   lat,
		Longitude:  lon,
		Altitude:   alt,
		Accuracy:   accuracy,
		Confidence: conf,
	}
	fused.Clamp()
	return fused, nil
}

// normalise returns weights summing to one, falling back to equal
// weights when every input weight is zero.
func normalise(candidates []Candidate) []float64 {
	weights := make([]float64, len(candidates))
	var sum float64
	for _, c := range candidates {
		if c.Weight > 0 {
			sum += c.Weight
		}
	}
	if sum == 0 {
		for i := range weights {
			weights[i] = 1 / float64(len(candidates))
		}
		return weights
	}
	for i, c := range candidates {
		if c.Weight > 0 {
			weights[i] = c.Weight / sum
		}
	}
	return weights
}

// conditionNumber computes the ratio of the covariance eigenvalues of
// the candidate coordinates, in local plane meters around the weighted
// mean, plus the RMS spread along the major axis. Kappa is +Inf when
// the smaller eigenvalue vanishes.
func conditionNumber(points []geo.Point, weights []float64, meanLat, meanLon float64) (kappa, spread float64) {
	plane := geo.NewLocalPlane(meanLat, meanLon)

	var sxx, syy, sxy float64
	for i, p := range points {
		x, y := plane.ToMeters(p.Lat, p.Lon)
		w := weights[i]
		sxx += w * x * x
		syy += w * y * y
		sxy += w * x * y
	}

	// Eigenvalues of [[sxx, sxy], [sxy, syy]].
	tr := sxx + syy
	disc := math.Sqrt((sxx-syy)*(sxx-syy) + 4*sxy*sxy)
	lMax := (tr + disc) / 2
	lMin := (tr - disc) / 2

	spread = math.Sqrt(math.Max(lMax, 0))

	// Coincident candidates agree perfectly; no spread to penalise.
	if lMax <= conditionEpsilon {
		return 1, spread
	}
	if lMin <= conditionEpsilon {
		return math.Inf(1), spread
	}
	return lMax / lMin, spread
}

// geometryFactor maps the condition number to an accuracy/confidence
// spread factor, rising past conditionNorm and floored at 1.
func geometryFactor(kappa float64, collinear bool) float64 {
	gqf := 1.0
	if math.IsInf(kappa, 1) {
		gqf = maxGeometryFactor
	} else if kappa > conditionNorm {
		gqf = math.Min(math.Sqrt(kappa/conditionNorm), maxGeometryFactor)
	}
	if collinear && gqf < 2 {
		gqf = 2
	}
	return gqf
}

// robustAccuracy aggregates the input accuracies with a median/trimmed
// mean blend, widened when outliers are present.
func robustAccuracy(candidates []Candidate) float64 {
	accs := make([]float64, len(candidates))
	for i, c := range candidates {
		accs[i] = c.Position.Accuracy
	}
	sort.Float64s(accs)

	med := median(accs)
	tmean := trimmedMean(accs)

	robust := med
	if len(accs) > 3 {
		robust = 0.7*med + 0.3*tmean
	}

	// MAD-based outlier widening.
	devs := make([]float64, len(accs))
	for i, a := range accs {
		devs[i] = math.Abs(a - med)
	}
	sort.Float64s(devs)
	mad := median(devs)

	outliers := 0
	for _, a := range accs {
		if a > med+2*mad {
			outliers++
		}
	}
	if outliers > 0 {
		robust *= 1 + 0.5*float64(outliers)/float64(len(accs))
	}
	return robust
}

// median of a sorted slice.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// trimmedMean drops 25% from each end of a sorted slice; small inputs
// fall back to the median.
func trimmedMean(sorted []float64) float64 {
	n := len(sorted)
	if n <= 2 {
		return median(sorted)
	}
	trim := n / 4
	kept := sorted[trim : n-trim]
	var sum float64
	for _, a := range kept {
		sum += a
	}
	return sum / float64(len(kept))
}
