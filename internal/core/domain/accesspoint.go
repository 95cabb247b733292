package domain

// APStatus is the lifecycle state of a known access point.
// Only ACTIVE records participate in positioning.
type APStatus string

const (
	StatusActive  APStatus = "ACTIVE"
	StatusWarning APStatus = "WARNING"
	StatusExpired APStatus = "EXPIRED"
	StatusRemoved APStatus = "REMOVED"
	StatusUnknown APStatus = "UNKNOWN"
)

// WifiAccessPoint is a known AP record from the reference database.
// The positioning core treats these as read-only.
type WifiAccessPoint struct {
	MACAddress         string   `json:"macAddress"`
	Latitude           float64  `json:"latitude"`
	Longitude          float64  `json:"longitude"`
	Altitude           *float64 `json:"altitude,omitempty"`
	HorizontalAccuracy float64  `json:"horizontalAccuracy"` // metres
	VerticalAccuracy   *float64 `json:"verticalAccuracy,omitempty"`
	Confidence         float64  `json:"confidence"` // [0,1]
	Frequency          int      `json:"frequency,omitempty"`
	Vendor             string   `json:"vendor,omitempty"`
	Status             APStatus `json:"status"`
}

// Usable reports whether the record may feed a position calculation.
func (ap *WifiAccessPoint) Usable() bool {
	return ap.Status == StatusActive
}

// HasAltitude reports whether the record carries a vertical component.
func (ap *WifiAccessPoint) HasAltitude() bool {
	return ap.Altitude != nil
}
