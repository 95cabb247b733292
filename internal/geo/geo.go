// Package geo exposes the pure geometry used by the positioning
// algorithms: great-circle distance, the close-in path-loss model,
// dilution-of-precision and degenerate-geometry checks. Functions here
// hold no state and never panic on degenerate input.
package geo

import (
	"errors"
	"math"
)

const (
	// EarthRadiusM is the mean Earth radius used by Haversine.
	EarthRadiusM = 6371000.0

	// SpeedOfLight in m/s, for free-space path loss.
	SpeedOfLight = 299792458.0

	// ReferenceDistanceM is d0 of the close-in model.
	ReferenceDistanceM = 1.0

	// MinPathDistanceM / MaxPathDistanceM clamp RSSI-derived distances.
	MinPathDistanceM = 1.0
	MaxPathDistanceM = 100.0

	// StrongSignalThresholdDBm splits the path-loss exponent choice:
	// strong signals are dominated by line-of-sight (n=2.5), weaker
	// ones by obstructed paths (n=3.0).
	StrongSignalThresholdDBm = -65.0

	PathLossExponentStrong = 2.5
	PathLossExponentWeak   = 3.0

	// LatDegreeM approximates metres per degree of latitude. The
	// longitude scale shrinks with cos(lat) in LocalPlane.
	LatDegreeM = 111000.0

	// collinearityEpsilon is the max perpendicular offset, relative to
	// the constellation span, below which points count as collinear.
	collinearityEpsilon = 0.05
)

// Point is a geographic coordinate. Alt is metres and may be zero when
// unknown; callers that care about missing altitude track presence
// themselves.
type Point struct {
	Lat float64
	Lon float64
	Alt float64
}

// ErrZeroWeight is returned by WeightedCentroid when the weights sum
// to zero.
var ErrZeroWeight = errors.New("geo: weights sum to zero")

// HaversineMeters returns the great-circle distance between two
// coordinates in metres.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * EarthRadiusM * math.Asin(math.Min(1, math.Sqrt(a)))
}

// FreeSpacePathLossDB returns 20*log10(4*pi*d*f/c) for a frequency in
// Hz and a distance in metres.
func FreeSpacePathLossDB(freqHz, distanceM float64) float64 {
	if freqHz <= 0 || distanceM <= 0 {
		return 0
	}
	return 20 * math.Log10(4*math.Pi*distanceM*freqHz/SpeedOfLight)
}

// PathLossExponent picks the close-in model exponent for an observed
// RSSI.
func PathLossExponent(rssi float64) float64 {
	if rssi >= StrongSignalThresholdDBm {
		return PathLossExponentStrong
	}
	return PathLossExponentWeak
}

// DistanceFromRSSI inverts the close-in model: the received RSSI at
// distance d is -FSPL(f,1m) - 10*n*log10(d), so
// d = d0 * 10^((-rssi - FSPL(f,1m)) / (10*n)). The result is clamped
// to [1,100] metres.
func DistanceFromRSSI(rssi float64, freqMHz int, n float64) float64 {
	fspl1 := FreeSpacePathLossDB(float64(freqMHz)*1e6, ReferenceDistanceM)
	exponent := (-rssi - fspl1) / (10 * n)
	d := ReferenceDistanceM * math.Pow(10, exponent)
	if math.IsNaN(d) || d < MinPathDistanceM {
		return MinPathDistanceM
	}
	if d > MaxPathDistanceM {
		return MaxPathDistanceM
	}
	return d
}

// ExpectedRSSI is the forward close-in model: the RSSI expected at
// distance d for the given frequency and exponent.
func ExpectedRSSI(distanceM float64, freqMHz int, n float64) float64 {
	fspl1 := FreeSpacePathLossDB(float64(freqMHz)*1e6, ReferenceDistanceM)
	if distanceM < MinPathDistanceM {
		distanceM = MinPathDistanceM
	}
	return -fspl1 - 10*n*math.Log10(distanceM)
}

// LocalPlane converts lat/lon to a metric tangent plane anchored at a
// reference coordinate. Good enough at WiFi scale (hundreds of metres).
type LocalPlane struct {
	refLat float64
	refLon float64
	lonM   float64
}

// NewLocalPlane anchors a plane at the given reference coordinate.
func NewLocalPlane(refLat, refLon float64) LocalPlane {
	return LocalPlane{
		refLat: refLat,
		refLon: refLon,
		lonM:   LatDegreeM * math.Cos(refLat*math.Pi/180),
	}
}

// ToMeters projects a coordinate into the plane.
func (p LocalPlane) ToMeters(lat, lon float64) (x, y float64) {
	return (lon - p.refLon) * p.lonM, (lat - p.refLat) * LatDegreeM
}

// FromMeters projects plane coordinates back to lat/lon.
func (p LocalPlane) FromMeters(x, y float64) (lat, lon float64) {
	if p.lonM == 0 {
		return p.refLat + y/LatDegreeM, p.refLon
	}
	return p.refLat + y/LatDegreeM, p.refLon + x/p.lonM
}

// GDOP computes the geometric dilution of precision for an estimated
// position against a set of AP coordinates: sqrt(trace((H^T H)^-1))
// where H's rows are unit vectors from the estimate to each AP. With a
// singular H^T H (fewer than 3 APs, or a degenerate constellation) it
// returns +Inf. When is3D is set the unit vectors carry the altitude
// component and the 3x3 system is solved instead.
func GDOP(aps []Point, estimate Point, is3D bool) float64 {
	plane := NewLocalPlane(estimate.Lat, estimate.Lon)

	rows := make([][3]float64, 0, len(aps))
	for _, ap := range aps {
		x, y := plane.ToMeters(ap.Lat, ap.Lon)
		z := 0.0
		if is3D {
			z = ap.Alt - estimate.Alt
		}
		norm := math.Sqrt(x*x + y*y + z*z)
		if norm == 0 {
			continue
		}
		rows = append(rows, [3]float64{x / norm, y / norm, z / norm})
	}

	if is3D {
		return gdop3(rows)
	}
	return gdop2(rows)
}

func gdop2(rows [][3]float64) float64 {
	var a, b, d float64 // H^T H = [[a b][b d]]
	for _, r := range rows {
		a += r[0] * r[0]
		b += r[0] * r[1]
		d += r[1] * r[1]
	}
	det := a*d - b*b
	if math.Abs(det) < 1e-12 {
		return math.Inf(1)
	}
	trace := (d + a) / det
	if trace <= 0 {
		return math.Inf(1)
	}
	return math.Sqrt(trace)
}

func gdop3(rows [][3]float64) float64 {
	var m [3][3]float64
	for _, r := range rows {
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				m[i][j] += r[i] * r[j]
			}
		}
	}
	det := m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
	if math.Abs(det) < 1e-12 {
		return math.Inf(1)
	}
	// Trace of the inverse via cofactors of the diagonal.
	c00 := m[1][1]*m[2][2] - m[1][2]*m[2][1]
	c11 := m[0][0]*m[2][2] - m[0][2]*m[2][0]
	c22 := m[0][0]*m[1][1] - m[0][1]*m[1][0]
	trace := (c00 + c11 + c22) / det
	if trace <= 0 {
		return math.Inf(1)
	}
	return math.Sqrt(trace)
}

// GDOPFactor buckets a GDOP value into an accuracy multiplier.
func GDOPFactor(gdop float64) float64 {
	switch {
	case math.IsInf(gdop, 1):
		return 3.0
	case gdop < 2:
		return 1.0
	case gdop < 4:
		return 1.2
	case gdop < 6:
		return 1.6
	default:
		return 2.0
	}
}

// IsCollinear reports whether the points lie approximately on one
// line. For fewer than three points it returns false. The test is the
// maximum perpendicular offset of any point from the line through the
// first and last point, relative to the constellation span.
func IsCollinear(points []Point) bool {
	if len(points) < 3 {
		return false
	}

	plane := NewLocalPlane(points[0].Lat, points[0].Lon)
	x0, y0 := plane.ToMeters(points[0].Lat, points[0].Lon)
	x1, y1 := plane.ToMeters(points[len(points)-1].Lat, points[len(points)-1].Lon)

	dx, dy := x1-x0, y1-y0
	span := math.Sqrt(dx*dx + dy*dy)
	if span == 0 {
		// First and last coincide; treat a collapsed constellation as
		// collinear only when every point sits within a metre.
		maxDist := 0.0
		for _, p := range points[1:] {
			x, y := plane.ToMeters(p.Lat, p.Lon)
			if d := math.Hypot(x-x0, y-y0); d > maxDist {
				maxDist = d
			}
		}
		return maxDist < 1.0
	}

	maxPerp := 0.0
	for _, p := range points[1 : len(points)-1] {
		x, y := plane.ToMeters(p.Lat, p.Lon)
		perp := math.Abs(dx*(y-y0)-dy*(x-x0)) / span
		if perp > maxPerp {
			maxPerp = perp
		}
	}
	return maxPerp < collinearityEpsilon*span
}

// WeightedCentroid returns sum(w_i * p_i) / sum(w_i) over latitude,
// longitude and altitude. The weights must sum to a positive value.
func WeightedCentroid(points []Point, weights []float64) (Point, error) {
	if len(points) == 0 || len(points) != len(weights) {
		return Point{}, ErrZeroWeight
	}
	var sumW, lat, lon, alt float64
	for i, p := range points {
		w := weights[i]
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			continue
		}
		sumW += w
		lat += w * p.Lat
		lon += w * p.Lon
		alt += w * p.Alt
	}
	if sumW <= 0 {
		return Point{}, ErrZeroWeight
	}
	return Point{Lat: lat / sumW, Lon: lon / sumW, Alt: alt / sumW}, nil
}
