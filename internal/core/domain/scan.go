package domain

import (
	"regexp"
	"strings"
)

// WifiScanResult is a single observed access point in a scan report.
type WifiScanResult struct {
	MACAddress     string  `json:"macAddress"`
	SignalStrength float64 `json:"signalStrength"` // dBm, typically [-100,-30]
	Frequency      int     `json:"frequency"`      // MHz
	SSID           string  `json:"ssid,omitempty"`
}

var macRegex = regexp.MustCompile(`^([0-9A-Fa-f]{2}[:-]){5}([0-9A-Fa-f]{2})$`)

// IsValidMAC checks if the string is a valid MAC address.
func IsValidMAC(mac string) bool {
	return macRegex.MatchString(mac)
}

// NormalizeMAC canonicalises a MAC address to lowercase hex with colon
// separators. Returns the empty string when the input is not a MAC.
func NormalizeMAC(mac string) string {
	if !IsValidMAC(mac) {
		return ""
	}
	return strings.ToLower(strings.ReplaceAll(mac, "-", ":"))
}

// MeanSignal returns the mean RSSI over the scans. Zero scans yield 0.
func MeanSignal(scans []WifiScanResult) float64 {
	if len(scans) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range scans {
		sum += s.SignalStrength
	}
	return sum / float64(len(scans))
}

// StrongestScan returns the scan with the highest (least negative) RSSI.
func StrongestScan(scans []WifiScanResult) (WifiScanResult, bool) {
	if len(scans) == 0 {
		return WifiScanResult{}, false
	}
	best := scans[0]
	for _, s := range scans[1:] {
		if s.SignalStrength > best.SignalStrength {
			best = s
		}
	}
	return best, true
}
