package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversineMeters(t *testing.T) {
	// One degree of latitude is ~111.2 km on the mean sphere.
	d := HaversineMeters(37.0, -122.0, 38.0, -122.0)
	assert.InDelta(t, 111195, d, 100)

	// Zero distance
	assert.Equal(t, 0.0, HaversineMeters(37.7749, -122.4194, 37.7749, -122.4194))
}

func TestFreeSpacePathLossDB(t *testing.T) {
	// 2437 MHz at 1 m is ~40.2 dB.
	fspl := FreeSpacePathLossDB(2437e6, 1.0)
	assert.InDelta(t, 40.2, fspl, 0.1)

	// Degenerate inputs must not blow up.
	assert.Equal(t, 0.0, FreeSpacePathLossDB(0, 1))
	assert.Equal(t, 0.0, FreeSpacePathLossDB(2437e6, 0))
}

func TestDistanceFromRSSIRoundTrip(t *testing.T) {
	cases := []struct {
		rssi float64
		freq int
	}{
		{-65, 2437},
		{-70, 2437},
		{-80, 5180},
		{-88, 2412},
	}
	for _, tc := range cases {
		n := PathLossExponent(tc.rssi)
		d := DistanceFromRSSI(tc.rssi, tc.freq, n)
		require.GreaterOrEqual(t, d, MinPathDistanceM)
		require.LessOrEqual(t, d, MaxPathDistanceM)

		back := ExpectedRSSI(d, tc.freq, n)
		assert.InDelta(t, tc.rssi, back, 0.01, "rssi=%v freq=%v", tc.rssi, tc.freq)
	}
}

func TestDistanceFromRSSIClamps(t *testing.T) {
	// A very strong signal maps below the 1 m floor.
	assert.Equal(t, MinPathDistanceM, DistanceFromRSSI(-20, 2437, 2.5))
	// A very weak one is capped at 100 m.
	assert.Equal(t, MaxPathDistanceM, DistanceFromRSSI(-120, 2437, 3.0))
}

func TestPathLossExponent(t *testing.T) {
	assert.Equal(t, PathLossExponentStrong, PathLossExponent(-65))
	assert.Equal(t, PathLossExponentStrong, PathLossExponent(-50))
	assert.Equal(t, PathLossExponentWeak, PathLossExponent(-65.1))
}

// squareCorners builds a 50 m square around the given center.
func squareCorners(lat, lon float64) []Point {
	dLat := 25.0 / LatDegreeM
	dLon := 25.0 / (LatDegreeM * math.Cos(lat*math.Pi/180))
	return []Point{
		{Lat: lat - dLat, Lon: lon - dLon},
		{Lat: lat - dLat, Lon: lon + dLon},
		{Lat: lat + dLat, Lon: lon + dLon},
		{Lat: lat + dLat, Lon: lon - dLon},
	}
}

func TestGDOPSquareIsExcellent(t *testing.T) {
	center := Point{Lat: 37.7749, Lon: -122.4194}
	g := GDOP(squareCorners(center.Lat, center.Lon), center, false)
	require.False(t, math.IsInf(g, 1))
	assert.Less(t, g, 2.0)
}

func TestGDOPSingularGeometry(t *testing.T) {
	// Two APs cannot constrain a 2D fix.
	aps := []Point{
		{Lat: 37.7750, Lon: -122.4195},
		{Lat: 37.7751, Lon: -122.4196},
	}
	g := GDOP(aps, Point{Lat: 37.77505, Lon: -122.41955}, false)
	assert.True(t, math.IsInf(g, 1))
}

func TestGDOPCollinearIsDegraded(t *testing.T) {
	aps := []Point{
		{Lat: 37.7754, Lon: -122.4194},
		{Lat: 37.7759, Lon: -122.4194},
		{Lat: 37.7764, Lon: -122.4194},
	}
	// An estimate on the line sees every AP in the same direction, so
	// the normal matrix is rank deficient.
	g := GDOP(aps, Point{Lat: 37.77565, Lon: -122.4194}, false)
	assert.True(t, math.IsInf(g, 1))
}

func TestGDOPFactorBuckets(t *testing.T) {
	assert.Equal(t, 1.0, GDOPFactor(1.5))
	assert.Equal(t, 1.2, GDOPFactor(2.0))
	assert.Equal(t, 1.2, GDOPFactor(3.9))
	assert.Equal(t, 1.6, GDOPFactor(4.0))
	assert.Equal(t, 2.0, GDOPFactor(6.0))
	assert.Equal(t, 2.0, GDOPFactor(25.0))
	assert.Equal(t, 3.0, GDOPFactor(math.Inf(1)))
}

func TestIsCollinear(t *testing.T) {
	line := []Point{
		{Lat: 37.7754, Lon: -122.4194},
		{Lat: 37.7759, Lon: -122.4194},
		{Lat: 37.7764, Lon: -122.4194},
	}
	assert.True(t, IsCollinear(line))

	triangle := []Point{
		{Lat: 37.7754, Lon: -122.4194},
		{Lat: 37.7759, Lon: -122.4180},
		{Lat: 37.7764, Lon: -122.4194},
	}
	assert.False(t, IsCollinear(triangle))

	// Fewer than three points are never collinear.
	assert.False(t, IsCollinear(line[:2]))
	assert.False(t, IsCollinear(nil))
}

func TestWeightedCentroid(t *testing.T) {
	points := []Point{
		{Lat: 10, Lon: 20, Alt: 100},
		{Lat: 20, Lon: 40, Alt: 200},
	}

	c, err := WeightedCentroid(points, []float64{1, 1})
	require.NoError(t, err)
	assert.InDelta(t, 15.0, c.Lat, 1e-9)
	assert.InDelta(t, 30.0, c.Lon, 1e-9)
	assert.InDelta(t, 150.0, c.Alt, 1e-9)

	// Weight dominance pulls toward the heavier point.
	c, err = WeightedCentroid(points, []float64{3, 1})
	require.NoError(t, err)
	assert.InDelta(t, 12.5, c.Lat, 1e-9)

	// Zero total weight is an error.
	_, err = WeightedCentroid(points, []float64{0, 0})
	assert.ErrorIs(t, err, ErrZeroWeight)
}
