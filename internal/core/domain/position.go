package domain

import "math"

// Position is the output of a positioning calculation.
type Position struct {
	Latitude   float64 `json:"latitude"`   // degrees, [-90,90]
	Longitude  float64 `json:"longitude"`  // degrees, [-180,180]
	Altitude   float64 `json:"altitude"`   // metres; 0 when unknown
	Accuracy   float64 `json:"accuracy"`   // metres, >= 1
	Confidence float64 `json:"confidence"` // [0,1]
}

// Valid checks the geographic and numeric invariants of a position.
func (p *Position) Valid() bool {
	if math.IsNaN(p.Latitude) || math.IsInf(p.Latitude, 0) ||
		math.IsNaN(p.Longitude) || math.IsInf(p.Longitude, 0) ||
		math.IsNaN(p.Altitude) || math.IsInf(p.Altitude, 0) ||
		math.IsNaN(p.Accuracy) || math.IsInf(p.Accuracy, 0) ||
		math.IsNaN(p.Confidence) || math.IsInf(p.Confidence, 0) {
		return false
	}
	if p.Latitude < -90 || p.Latitude > 90 {
		return false
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return false
	}
	if p.Accuracy < 0 {
		return false
	}
	return p.Confidence >= 0 && p.Confidence <= 1
}

// Clamp forces the position into valid geographic and confidence ranges.
func (p *Position) Clamp() {
	p.Latitude = clamp(p.Latitude, -90, 90)
	p.Longitude = clamp(p.Longitude, -180, 180)
	if p.Accuracy < 1 {
		p.Accuracy = 1
	}
	p.Confidence = clamp(p.Confidence, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
