package scenario

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/domain"
)

func scan(mac string, rssi float64) domain.WifiScanResult {
	return domain.WifiScanResult{MACAddress: mac, SignalStrength: rssi, Frequency: 2437}
}

func ap(mac string, lat, lon float64) domain.WifiAccessPoint {
	return domain.WifiAccessPoint{
		MACAddress: mac,
		Latitude:   lat,
		Longitude:  lon,
		Status:     domain.StatusActive,
		Confidence: 0.8,
	}
}

func TestCountFactor(t *testing.T) {
	cases := []struct {
		n    int
		want domain.APCountFactor
	}{
		{1, domain.CountSingle},
		{2, domain.CountTwo},
		{3, domain.CountThree},
		{4, domain.CountFourPlus},
		{7, domain.CountFourPlus},
	}
	for _, tc := range cases {
		var scans []domain.WifiScanResult
		for i := 0; i < tc.n; i++ {
			scans = append(scans, scan(fmt.Sprintf("aa:bb:cc:dd:ee:%02x", i), -70))
		}
		ctx := Build(scans, nil)
		assert.Equal(t, tc.want, ctx.APCountFactor, "n=%d", tc.n)
	}
}

func TestCountFactorDeduplicatesMACs(t *testing.T) {
	scans := []domain.WifiScanResult{
		scan("aa:bb:cc:dd:ee:01", -60),
		scan("aa:bb:cc:dd:ee:01", -62),
	}
	assert.Equal(t, domain.CountSingle, Build(scans, nil).APCountFactor)
}

func TestSignalQualityBuckets(t *testing.T) {
	cases := []struct {
		rssi float64
		want domain.SignalQuality
	}{
		{-65, domain.SignalStrong},
		{-69.9, domain.SignalStrong},
		{-70, domain.SignalMedium},
		{-85, domain.SignalMedium},
		{-85.1, domain.SignalWeak},
		{-95, domain.SignalWeak},
		{-95.1, domain.SignalVeryWeak},
	}
	for _, tc := range cases {
		ctx := Build([]domain.WifiScanResult{scan("aa:bb:cc:dd:ee:01", tc.rssi)}, nil)
		assert.Equal(t, tc.want, ctx.SignalQuality, "rssi=%v", tc.rssi)
	}
}

func TestSignalDistributionBuckets(t *testing.T) {
	uniform := []domain.WifiScanResult{
		scan("aa:bb:cc:dd:ee:01", -60),
		scan("aa:bb:cc:dd:ee:02", -61),
		scan("aa:bb:cc:dd:ee:03", -62),
	}
	assert.Equal(t, domain.DistributionUniform, Build(uniform, nil).SignalDistribution)

	mixed := []domain.WifiScanResult{
		scan("aa:bb:cc:dd:ee:01", -60),
		scan("aa:bb:cc:dd:ee:02", -70),
		scan("aa:bb:cc:dd:ee:03", -68),
	}
	assert.Equal(t, domain.DistributionMixed, Build(mixed, nil).SignalDistribution)

	outliers := []domain.WifiScanResult{
		scan("aa:bb:cc:dd:ee:01", -50),
		scan("aa:bb:cc:dd:ee:02", -90),
		scan("aa:bb:cc:dd:ee:03", -55),
	}
	assert.Equal(t, domain.DistributionOutliers, Build(outliers, nil).SignalDistribution)
}

func TestGeometricQualityCollinearWinsOverGDOP(t *testing.T) {
	scans := []domain.WifiScanResult{
		scan("aa:bb:cc:dd:ee:01", -75),
		scan("aa:bb:cc:dd:ee:02", -60),
		scan("aa:bb:cc:dd:ee:03", -80),
	}
	aps := map[string]domain.WifiAccessPoint{
		"aa:bb:cc:dd:ee:01": ap("aa:bb:cc:dd:ee:01", 37.7754, -122.4194),
		"aa:bb:cc:dd:ee:02": ap("aa:bb:cc:dd:ee:02", 37.7759, -122.4194),
		"aa:bb:cc:dd:ee:03": ap("aa:bb:cc:dd:ee:03", 37.7764, -122.4194),
	}
	assert.Equal(t, domain.GeometryCollinear, Build(scans, aps).GeometricQuality)
}

func TestGeometricQualitySquareIsExcellent(t *testing.T) {
	scans := []domain.WifiScanResult{
		scan("aa:bb:cc:dd:ee:01", -55),
		scan("aa:bb:cc:dd:ee:02", -60),
		scan("aa:bb:cc:dd:ee:03", -58),
		scan("aa:bb:cc:dd:ee:04", -62),
	}
	// Corners of a ~50m square.
	aps := map[string]domain.WifiAccessPoint{
		"aa:bb:cc:dd:ee:01": ap("aa:bb:cc:dd:ee:01", 37.77468, -122.41968),
		"aa:bb:cc:dd:ee:02": ap("aa:bb:cc:dd:ee:02", 37.77468, -122.41912),
		"aa:bb:cc:dd:ee:03": ap("aa:bb:cc:dd:ee:03", 37.77512, -122.41912),
		"aa:bb:cc:dd:ee:04": ap("aa:bb:cc:dd:ee:04", 37.77512, -122.41968),
	}
	assert.Equal(t, domain.GeometryExcellent, Build(scans, aps).GeometricQuality)
}

func TestGeometricQualityTwoAPsIsPoor(t *testing.T) {
	scans := []domain.WifiScanResult{
		scan("aa:bb:cc:dd:ee:01", -68),
		scan("aa:bb:cc:dd:ee:02", -70),
	}
	aps := map[string]domain.WifiAccessPoint{
		"aa:bb:cc:dd:ee:01": ap("aa:bb:cc:dd:ee:01", 37.7750, -122.4195),
		"aa:bb:cc:dd:ee:02": ap("aa:bb:cc:dd:ee:02", 37.7751, -122.4196),
	}
	assert.Equal(t, domain.GeometryPoor, Build(scans, aps).GeometricQuality)
}
