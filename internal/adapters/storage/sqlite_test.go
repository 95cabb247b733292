package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/domain"
)

// setupInMemoryDB creates a new SQLiteAdapter used for testing
func setupInMemoryDB(t *testing.T) *SQLiteAdapter {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&AccessPointModel{})
	require.NoError(t, err)

	return &SQLiteAdapter{db: db}
}

func floatPtr(v float64) *float64 { return &v }

func TestSaveAndFindByMAC(t *testing.T) {
	adapter := setupInMemoryDB(t)

	ap := domain.WifiAccessPoint{
		MACAddress:         "AA:BB:CC:DD:EE:01",
		Latitude:           37.7749,
		Longitude:          -122.4194,
		Altitude:           floatPtr(10.5),
		HorizontalAccuracy: 10,
		Confidence:         0.85,
		Frequency:          2437,
		Vendor:             "cisco",
		Status:             domain.StatusActive,
	}
	require.NoError(t, adapter.SaveAccessPoint(ap))

	// Lookup is canonicalised, so mixed case resolves.
	stored, err := adapter.FindByMAC(context.Background(), "aa:bb:cc:dd:ee:01")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "aa:bb:cc:dd:ee:01", stored.MACAddress)
	assert.Equal(t, ap.Latitude, stored.Latitude)
	require.NotNil(t, stored.Altitude)
	assert.Equal(t, 10.5, *stored.Altitude)
	assert.Equal(t, domain.StatusActive, stored.Status)
}

func TestFindByMACAbsentIsNotError(t *testing.T) {
	adapter := setupInMemoryDB(t)

	stored, err := adapter.FindByMAC(context.Background(), "aa:bb:cc:dd:ee:99")
	assert.NoError(t, err)
	assert.Nil(t, stored)
}

func TestFindByMACs(t *testing.T) {
	adapter := setupInMemoryDB(t)

	require.NoError(t, adapter.SaveAccessPoints([]domain.WifiAccessPoint{
		{MACAddress: "aa:bb:cc:dd:ee:01", Latitude: 1, Longitude: 1, Status: domain.StatusActive},
		{MACAddress: "aa:bb:cc:dd:ee:02", Latitude: 2, Longitude: 2, Status: domain.StatusWarning},
	}))

	out, err := adapter.FindByMACs(context.Background(), []string{
		"AA:BB:CC:DD:EE:01", "aa:bb:cc:dd:ee:02", "aa:bb:cc:dd:ee:03",
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Contains(t, out, "aa:bb:cc:dd:ee:01")
	assert.Contains(t, out, "aa:bb:cc:dd:ee:02")
	assert.NotContains(t, out, "aa:bb:cc:dd:ee:03")
}

func TestSaveAccessPointUpsert(t *testing.T) {
	adapter := setupInMemoryDB(t)

	ap := domain.WifiAccessPoint{
		MACAddress: "aa:bb:cc:dd:ee:01",
		Latitude:   1, Longitude: 1,
		Confidence: 0.5,
		Status:     domain.StatusActive,
	}
	require.NoError(t, adapter.SaveAccessPoint(ap))

	ap.Confidence = 0.9
	ap.Status = domain.StatusWarning
	require.NoError(t, adapter.SaveAccessPoint(ap))

	stored, err := adapter.FindByMAC(context.Background(), ap.MACAddress)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 0.9, stored.Confidence)
	assert.Equal(t, domain.StatusWarning, stored.Status)
}

func TestCountByStatus(t *testing.T) {
	adapter := setupInMemoryDB(t)

	require.NoError(t, adapter.SaveAccessPoints([]domain.WifiAccessPoint{
		{MACAddress: "aa:bb:cc:dd:ee:01", Status: domain.StatusActive},
		{MACAddress: "aa:bb:cc:dd:ee:02", Status: domain.StatusActive},
		{MACAddress: "aa:bb:cc:dd:ee:03", Status: domain.StatusExpired},
	}))

	counts, err := adapter.CountByStatus()
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[domain.StatusActive])
	assert.Equal(t, int64(1), counts[domain.StatusExpired])
}

func TestConverterRoundTrip(t *testing.T) {
	ap := domain.WifiAccessPoint{
		MACAddress:         "AA:BB:CC:DD:EE:01",
		Latitude:           37.7,
		Longitude:          -122.4,
		HorizontalAccuracy: 12,
		VerticalAccuracy:   floatPtr(4),
		Confidence:         0.7,
		Frequency:          5180,
		Vendor:             "aruba",
		Status:             domain.StatusWarning,
	}

	restored := toDomain(toModel(ap))
	assert.Equal(t, "aa:bb:cc:dd:ee:01", restored.MACAddress)
	assert.Equal(t, ap.Latitude, restored.Latitude)
	assert.Equal(t, ap.Confidence, restored.Confidence)
	assert.Equal(t, ap.Status, restored.Status)
	require.NotNil(t, restored.VerticalAccuracy)
	assert.Equal(t, 4.0, *restored.VerticalAccuracy)
	assert.Nil(t, restored.Altitude)
}
