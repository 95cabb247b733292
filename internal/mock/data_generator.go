// Package mock generates synthetic access point datasets and scan
// reports for local development and load testing without a populated
// reference database.
package mock

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/domain"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/geo"
)

// Common SSIDs for realistic mock data
var commonSSIDs = []string{
	"HomeNetwork", "NETGEAR-5G", "Starbucks WiFi", "TP-Link_2.4GHz",
	"Linksys", "ATT-WiFi", "Xfinity", "Google Fiber",
	"Office-Network", "Guest-WiFi", "MyWiFi", "Home-2.4G",
	"CoffeeShop_Free", "Airport_WiFi", "Hotel-Guest", "Apartment_5G",
}

// Vendor OUI prefixes (first 3 bytes of MAC). A slice keeps picks
// deterministic for a fixed seed.
var vendorPrefixes = []struct {
	Vendor string
	OUI    string
}{
	{"Apple", "00:17:f2"},
	{"Samsung", "00:12:fb"},
	{"Cisco", "00:1e:bd"},
	{"TP-Link", "50:c7:bf"},
	{"Netgear", "a0:63:91"},
	{"Linksys", "00:14:bf"},
	{"Google", "f4:f5:d8"},
	{"Asus", "00:1f:c6"},
	{"D-Link", "00:17:9a"},
}

var channels24GHz = []int{2412, 2417, 2422, 2427, 2432, 2437, 2442, 2447, 2452, 2457, 2462}
var channels5GHz = []int{5180, 5200, 5220, 5240, 5260, 5280, 5500, 5745, 5765, 5785}

var statuses = []domain.APStatus{
	domain.StatusActive, domain.StatusActive, domain.StatusActive,
	domain.StatusActive, domain.StatusWarning, domain.StatusExpired,
}

// Generator produces deterministic synthetic datasets from a seed.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator. The same seed always yields the
// same dataset.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// GenerateAccessPoints scatters count APs uniformly inside a disc of
// radiusM metres around the centre. Roughly two thirds come out
// ACTIVE; the rest carry non-usable statuses so filtering paths get
// exercised.
func (g *Generator) GenerateAccessPoints(centerLat, centerLon float64, radiusM float64, count int) []domain.WifiAccessPoint {
	plane := geo.NewLocalPlane(centerLat, centerLon)
	aps := make([]domain.WifiAccessPoint, 0, count)

	for i := 0; i < count; i++ {
		// Uniform over the disc, not its bounding square.
		r := radiusM * math.Sqrt(g.rng.Float64())
		theta := g.rng.Float64() * 2 * math.Pi
		lat, lon := plane.FromMeters(r*math.Cos(theta), r*math.Sin(theta))

		vendor := vendorPrefixes[g.rng.Intn(len(vendorPrefixes))]
		alt := 2.0 + g.rng.Float64()*30
		aps = append(aps, domain.WifiAccessPoint{
			MACAddress:         g.randomMAC(vendor.OUI),
			Latitude:           lat,
			Longitude:          lon,
			Altitude:           &alt,
			HorizontalAccuracy: 3 + g.rng.Float64()*12,
			Confidence:         0.5 + g.rng.Float64()*0.5,
			Frequency:          g.pickFrequency(),
			Vendor:             vendor.Vendor,
			Status:             statuses[g.rng.Intn(len(statuses))],
		})
	}
	return aps
}

// GenerateScan builds a scan report as seen from the observer
// position: each AP within rangeM contributes one result whose RSSI
// follows the log-distance model plus gaussian noise.
func (g *Generator) GenerateScan(observerLat, observerLon float64, aps []domain.WifiAccessPoint, rangeM, noiseDB float64) []domain.WifiScanResult {
	var scans []domain.WifiScanResult
	for _, ap := range aps {
		d := geo.HaversineMeters(observerLat, observerLon, ap.Latitude, ap.Longitude)
		if d > rangeM {
			continue
		}
		if d < 1 {
			d = 1
		}
		freq := ap.Frequency
		if freq == 0 {
			freq = 2437
		}
		rssi := geo.ExpectedRSSI(d, freq, 3.0) + g.rng.NormFloat64()*noiseDB
		if rssi < -100 {
			continue
		}
		scans = append(scans, domain.WifiScanResult{
			MACAddress:     ap.MACAddress,
			SignalStrength: rssi,
			Frequency:      freq,
			SSID:           commonSSIDs[g.rng.Intn(len(commonSSIDs))],
		})
	}
	return scans
}

func (g *Generator) randomMAC(prefix string) string {
	return fmt.Sprintf("%s:%02x:%02x:%02x", prefix,
		g.rng.Intn(256), g.rng.Intn(256), g.rng.Intn(256))
}

func (g *Generator) pickFrequency() int {
	if g.rng.Intn(2) == 0 {
		return channels24GHz[g.rng.Intn(len(channels24GHz))]
	}
	return channels5GHz[g.rng.Intn(len(channels5GHz))]
}
