package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/adapters/web/server"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/adapters/web/websocket"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/domain"
)

type fakePositionService struct {
	pos  *domain.Position
	info *domain.CalculationInfo
	err  error

	gotScans []domain.WifiScanResult
}

func (f *fakePositionService) Locate(ctx context.Context, scans []domain.WifiScanResult) (*domain.Position, *domain.CalculationInfo, error) {
	f.gotScans = scans
	return f.pos, f.info, f.err
}

type fakeStore struct {
	aps    map[string]domain.WifiAccessPoint
	saved  []domain.WifiAccessPoint
	counts map[domain.APStatus]int64
}

func (f *fakeStore) FindByMAC(ctx context.Context, mac string) (*domain.WifiAccessPoint, error) {
	if ap, ok := f.aps[mac]; ok {
		return &ap, nil
	}
	return nil, nil
}

func (f *fakeStore) SaveAccessPoints(aps []domain.WifiAccessPoint) error {
	f.saved = append(f.saved, aps...)
	return nil
}

func (f *fakeStore) CountByStatus() (map[domain.APStatus]int64, error) {
	return f.counts, nil
}

func setupServer(svc *fakePositionService, store *fakeStore) http.Handler {
	srv := server.NewServer(":0", svc, store, websocket.NewWSManager())
	return server.SetupRoutes(srv)
}

func TestPositionEndpointSuccess(t *testing.T) {
	svc := &fakePositionService{
		pos:  &domain.Position{Latitude: 37.7749, Longitude: -122.4194, Accuracy: 8, Confidence: 0.7},
		info: &domain.CalculationInfo{RequestID: "req-1"},
	}
	handler := setupServer(svc, &fakeStore{})

	body, _ := json.Marshal(map[string]interface{}{
		"wifiScanResults": []domain.WifiScanResult{
			{MACAddress: "aa:bb:cc:dd:ee:ff", SignalStrength: -60, Frequency: 2437},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/position", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	pos := resp["position"].(map[string]interface{})
	assert.InDelta(t, 37.7749, pos["latitude"], 1e-9)
	assert.Equal(t, "req-1", resp["calculationInfo"].(map[string]interface{})["requestId"])
	require.Len(t, svc.gotScans, 1)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", svc.gotScans[0].MACAddress)
}

func TestPositionEndpointErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid input", domain.ErrInvalidInput, http.StatusBadRequest, "INVALID_REQUEST"},
		{"no matching aps", domain.ErrNoMatchingAPs, http.StatusNotFound, "NO_MATCHING_APS"},
		{"no position", domain.ErrNoPosition, http.StatusNotFound, "NO_POSITION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := setupServer(&fakePositionService{err: tt.err}, &fakeStore{})

			body, _ := json.Marshal(map[string]interface{}{"wifiScanResults": []domain.WifiScanResult{}})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/position", bytes.NewReader(body))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)

			var resp map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp["code"])
		})
	}
}

func TestPositionEndpointBadJSON(t *testing.T) {
	handler := setupServer(&fakePositionService{}, &fakeStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/position", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAccessPointLookup(t *testing.T) {
	store := &fakeStore{aps: map[string]domain.WifiAccessPoint{
		"aa:bb:cc:dd:ee:ff": {
			MACAddress: "aa:bb:cc:dd:ee:ff",
			Latitude:   37.7749, Longitude: -122.4194,
			Status: domain.StatusActive,
		},
	}}
	handler := setupServer(&fakePositionService{}, store)

	// Upper-case path parameter resolves to the canonical record.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/accesspoints/AA:BB:CC:DD:EE:FF", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var ap domain.WifiAccessPoint
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ap))
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", ap.MACAddress)

	// Unknown MAC is a 404.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/accesspoints/11:22:33:44:55:66", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAccessPointUpsert(t *testing.T) {
	store := &fakeStore{}
	handler := setupServer(&fakePositionService{}, store)

	body, _ := json.Marshal([]domain.WifiAccessPoint{
		{MACAddress: "AA-BB-CC-DD-EE-01", Latitude: 1, Longitude: 2, Status: domain.StatusActive},
		{MACAddress: "aa:bb:cc:dd:ee:02", Latitude: 3, Longitude: 4, Status: domain.StatusWarning},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accesspoints", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, store.saved, 2)
	assert.Equal(t, "aa:bb:cc:dd:ee:01", store.saved[0].MACAddress)
}

func TestAccessPointStats(t *testing.T) {
	store := &fakeStore{counts: map[domain.APStatus]int64{
		domain.StatusActive:  12,
		domain.StatusExpired: 3,
	}}
	handler := setupServer(&fakePositionService{}, store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accesspoints/stats", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Total    int64            `json:"total"`
		ByStatus map[string]int64 `json:"byStatus"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(15), resp.Total)
	assert.Equal(t, int64(12), resp.ByStatus["ACTIVE"])
}

func TestHealthz(t *testing.T) {
	handler := setupServer(&fakePositionService{}, &fakeStore{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
