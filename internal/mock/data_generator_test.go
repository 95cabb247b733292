package mock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/domain"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/geo"
)

func TestGenerateAccessPoints(t *testing.T) {
	g := NewGenerator(42)
	aps := g.GenerateAccessPoints(37.7749, -122.4194, 200, 50)
	require.Len(t, aps, 50)

	active := 0
	for _, ap := range aps {
		assert.True(t, domain.IsValidMAC(ap.MACAddress), ap.MACAddress)
		assert.Equal(t, ap.MACAddress, domain.NormalizeMAC(ap.MACAddress))
		d := geo.HaversineMeters(37.7749, -122.4194, ap.Latitude, ap.Longitude)
		assert.LessOrEqual(t, d, 201.0)
		assert.NotEmpty(t, ap.Vendor)
		if ap.Usable() {
			active++
		}
	}
	// Around two thirds should be usable.
	assert.Greater(t, active, 20)
	assert.Less(t, active, 50)
}

func TestGenerateAccessPointsDeterministic(t *testing.T) {
	a := NewGenerator(7).GenerateAccessPoints(37.7749, -122.4194, 100, 10)
	b := NewGenerator(7).GenerateAccessPoints(37.7749, -122.4194, 100, 10)
	assert.Equal(t, a, b)
}

func TestGenerateScan(t *testing.T) {
	g := NewGenerator(1)
	aps := g.GenerateAccessPoints(37.7749, -122.4194, 100, 30)

	scans := g.GenerateScan(37.7749, -122.4194, aps, 80, 0)
	require.NotEmpty(t, scans)

	seen := make(map[string]bool)
	for _, s := range scans {
		assert.True(t, domain.IsValidMAC(s.MACAddress))
		assert.Less(t, s.SignalStrength, 0.0)
		assert.GreaterOrEqual(t, s.SignalStrength, -100.0)
		assert.False(t, seen[s.MACAddress], "duplicate scan for %s", s.MACAddress)
		seen[s.MACAddress] = true
	}
}

func TestGenerateScanRangeCutoff(t *testing.T) {
	g := NewGenerator(3)
	aps := g.GenerateAccessPoints(37.7749, -122.4194, 500, 40)

	// An observer far outside the deployment sees nothing.
	scans := g.GenerateScan(38.5, -120.0, aps, 100, 0)
	assert.Empty(t, scans)
}
