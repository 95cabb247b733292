package storage

import (
	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/domain"
)

// toDomain converts a database model to a domain entity.
func toDomain(m AccessPointModel) domain.WifiAccessPoint {
	return domain.WifiAccessPoint{
		MACAddress:         m.MAC,
		Latitude:           m.Latitude,
		Longitude:          m.Longitude,
		Altitude:           m.Altitude,
		HorizontalAccuracy: m.HorizontalAccuracy,
		VerticalAccuracy:   m.VerticalAccuracy,
		Confidence:         m.Confidence,
		Frequency:          m.Frequency,
		Vendor:             m.Vendor,
		Status:             domain.APStatus(m.Status),
	}
}

// toModel converts a domain entity to a database model.
func toModel(ap domain.WifiAccessPoint) AccessPointModel {
	return AccessPointModel{
		MAC:                domain.NormalizeMAC(ap.MACAddress),
		Latitude:           ap.Latitude,
		Longitude:          ap.Longitude,
		Altitude:           ap.Altitude,
		HorizontalAccuracy: ap.HorizontalAccuracy,
		VerticalAccuracy:   ap.VerticalAccuracy,
		Confidence:         ap.Confidence,
		Frequency:          ap.Frequency,
		Vendor:             ap.Vendor,
		Status:             string(ap.Status),
	}
}
