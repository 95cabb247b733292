package positioning

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/domain"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/services/algorithm"
)

type fakeDB struct {
	aps map[string]domain.WifiAccessPoint
	err error
}

func (f *fakeDB) FindByMAC(ctx context.Context, mac string) (*domain.WifiAccessPoint, error) {
	if f.err != nil {
		return nil, f.err
	}
	if ap, ok := f.aps[mac]; ok {
		return &ap, nil
	}
	return nil, nil
}

func (f *fakeDB) FindByMACs(ctx context.Context, macs []string) (map[string]domain.WifiAccessPoint, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]domain.WifiAccessPoint)
	for _, mac := range macs {
		if ap, ok := f.aps[mac]; ok {
			out[mac] = ap
		}
	}
	return out, nil
}

type capturedCalc struct {
	info domain.CalculationInfo
	pos  *domain.Position
}

type fakeNotifier struct {
	calls []capturedCalc
}

func (f *fakeNotifier) NotifyCalculation(info domain.CalculationInfo, pos *domain.Position) {
	f.calls = append(f.calls, capturedCalc{info: info, pos: pos})
}

func floatPtr(v float64) *float64 { return &v }

func newService(aps map[string]domain.WifiAccessPoint) *Service {
	return NewService(&fakeDB{aps: aps}, algorithm.All())
}

func activeAP(mac string, lat, lon float64) domain.WifiAccessPoint {
	return domain.WifiAccessPoint{
		MACAddress:         mac,
		Latitude:           lat,
		Longitude:          lon,
		HorizontalAccuracy: 10,
		Confidence:         0.85,
		Status:             domain.StatusActive,
	}
}

func selectedAlgorithms(info *domain.CalculationInfo) []domain.AlgorithmID {
	var ids []domain.AlgorithmID
	for _, ev := range info.AlgorithmSelection {
		if ev.Selected {
			ids = append(ids, ev.Algorithm)
		}
	}
	return ids
}

func TestLocateEmptyScans(t *testing.T) {
	svc := newService(nil)
	_, _, err := svc.Locate(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLocateMalformedMAC(t *testing.T) {
	svc := newService(nil)
	_, _, err := svc.Locate(context.Background(), []domain.WifiScanResult{
		{MACAddress: "not-a-mac", SignalStrength: -70, Frequency: 2437},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLocateNoMatchingAPs(t *testing.T) {
	svc := newService(map[string]domain.WifiAccessPoint{})
	_, info, err := svc.Locate(context.Background(), []domain.WifiScanResult{
		{MACAddress: "AA:BB:CC:DD:EE:01", SignalStrength: -70, Frequency: 2437},
	})
	assert.ErrorIs(t, err, domain.ErrNoMatchingAPs)
	require.NotNil(t, info)
	assert.Equal(t, 1, info.AccessPointSummary.Total)
	assert.Equal(t, 0, info.AccessPointSummary.Used)
}

func TestLocateSingleStrongAP(t *testing.T) {
	ap := activeAP("aa:bb:cc:dd:ee:01", 37.7749, -122.4194)
	ap.Altitude = floatPtr(10.5)
	svc := newService(map[string]domain.WifiAccessPoint{ap.MACAddress: ap})

	pos, info, err := svc.Locate(context.Background(), []domain.WifiScanResult{
		{MACAddress: "AA:BB:CC:DD:EE:01", SignalStrength: -65, Frequency: 2437},
	})
	require.NoError(t, err)
	require.NotNil(t, pos)

	assert.Equal(t, ap.Latitude, pos.Latitude)
	assert.Equal(t, ap.Longitude, pos.Longitude)
	assert.Equal(t, 10.5, pos.Altitude)
	assert.GreaterOrEqual(t, pos.Accuracy, 10.0)
	assert.GreaterOrEqual(t, pos.Confidence, 0.5)

	require.Equal(t, []domain.AlgorithmID{domain.AlgorithmProximity}, selectedAlgorithms(info))
	assert.NotEmpty(t, info.RequestID)
}

func TestLocateTwoAPsMediumUniform(t *testing.T) {
	ap1 := activeAP("aa:bb:cc:dd:ee:02", 37.7750, -122.4195)
	ap2 := activeAP("aa:bb:cc:dd:ee:03", 37.7751, -122.4196)
	svc := newService(map[string]domain.WifiAccessPoint{
		ap1.MACAddress: ap1, ap2.MACAddress: ap2,
	})

	pos, info, err := svc.Locate(context.Background(), []domain.WifiScanResult{
		{MACAddress: ap1.MACAddress, SignalStrength: -68.5, Frequency: 5180},
		{MACAddress: ap2.MACAddress, SignalStrength: -70.0, Frequency: 5180},
	})
	require.NoError(t, err)
	require.NotNil(t, pos)

	assert.Greater(t, pos.Latitude, ap1.Latitude)
	assert.Less(t, pos.Latitude, ap2.Latitude)
	assert.Less(t, pos.Longitude, ap1.Longitude)
	assert.Greater(t, pos.Longitude, ap2.Longitude)

	var best domain.AlgorithmWeight
	for _, ev := range info.AlgorithmSelection {
		if ev.Selected && ev.Weight > best.Weight {
			best = ev
		}
		if ev.Algorithm == domain.AlgorithmTrilateration || ev.Algorithm == domain.AlgorithmMaxLikelihood {
			assert.False(t, ev.Selected, "never selected with two APs")
		}
	}
	assert.Equal(t, domain.AlgorithmRSSIRatio, best.Algorithm)
}

func TestLocateThreeCollinearAPs(t *testing.T) {
	coords := [][2]float64{
		{37.7754, -122.4194},
		{37.7759, -122.4194},
		{37.7764, -122.4194},
	}
	signals := []float64{-75, -60, -80}
	macs := []string{"aa:bb:cc:dd:ee:01", "aa:bb:cc:dd:ee:02", "aa:bb:cc:dd:ee:03"}

	aps := make(map[string]domain.WifiAccessPoint)
	scans := make([]domain.WifiScanResult, 0, 3)
	for i, mac := range macs {
		aps[mac] = activeAP(mac, coords[i][0], coords[i][1])
		scans = append(scans, domain.WifiScanResult{
			MACAddress: mac, SignalStrength: signals[i], Frequency: 2437,
		})
	}

	pos, info, err := newService(aps).Locate(context.Background(), scans)
	require.NoError(t, err)
	require.NotNil(t, pos)

	assert.Equal(t, domain.GeometryCollinear, info.SelectionContext.GeometricQuality)
	assert.NotContains(t, selectedAlgorithms(info), domain.AlgorithmTrilateration)
	assert.LessOrEqual(t, pos.Confidence, 0.69)
}

func TestLocateFourAPsStrongSquare(t *testing.T) {
	coords := [][2]float64{
		{37.77468, -122.41968},
		{37.77468, -122.41912},
		{37.77512, -122.41968},
		{37.77512, -122.41912},
	}
	signals := []float64{-55, -60, -58, -62}
	macs := []string{
		"aa:bb:cc:dd:ee:01", "aa:bb:cc:dd:ee:02",
		"aa:bb:cc:dd:ee:03", "aa:bb:cc:dd:ee:04",
	}

	aps := make(map[string]domain.WifiAccessPoint)
	scans := make([]domain.WifiScanResult, 0, 4)
	for i, mac := range macs {
		aps[mac] = activeAP(mac, coords[i][0], coords[i][1])
		scans = append(scans, domain.WifiScanResult{
			MACAddress: mac, SignalStrength: signals[i], Frequency: 2437,
		})
	}

	pos, info, err := newService(aps).Locate(context.Background(), scans)
	require.NoError(t, err)
	require.NotNil(t, pos)

	var best domain.AlgorithmWeight
	for _, ev := range info.AlgorithmSelection {
		if ev.Selected && ev.Weight > best.Weight {
			best = ev
		}
	}
	assert.Equal(t, domain.AlgorithmMaxLikelihood, best.Algorithm)
	assert.GreaterOrEqual(t, best.Weight, 1.2)

	assert.LessOrEqual(t, pos.Accuracy, 5.0)
	assert.GreaterOrEqual(t, pos.Confidence, 0.8)
}

func TestLocateVeryWeakSignalsForceProximity(t *testing.T) {
	coords := [][2]float64{
		{37.7750, -122.4190},
		{37.7755, -122.4200},
		{37.7760, -122.4185},
	}
	signals := []float64{-96, -98, -99}
	macs := []string{"aa:bb:cc:dd:ee:01", "aa:bb:cc:dd:ee:02", "aa:bb:cc:dd:ee:03"}

	aps := make(map[string]domain.WifiAccessPoint)
	scans := make([]domain.WifiScanResult, 0, 3)
	for i, mac := range macs {
		aps[mac] = activeAP(mac, coords[i][0], coords[i][1])
		scans = append(scans, domain.WifiScanResult{
			MACAddress: mac, SignalStrength: signals[i], Frequency: 2437,
		})
	}

	pos, info, err := newService(aps).Locate(context.Background(), scans)
	require.NoError(t, err)
	require.NotNil(t, pos)

	selected := selectedAlgorithms(info)
	require.Equal(t, []domain.AlgorithmID{domain.AlgorithmProximity}, selected)

	for _, ev := range info.AlgorithmSelection {
		if ev.Algorithm == domain.AlgorithmProximity {
			require.NotEmpty(t, ev.Reasons)
			assert.Contains(t, ev.Reasons[0], "weak")
		}
	}

	// Proximity pins the result to the strongest AP.
	assert.Equal(t, coords[0][0], pos.Latitude)
	assert.Equal(t, coords[0][1], pos.Longitude)
}

func TestLocateNotifiesObserver(t *testing.T) {
	ap := activeAP("aa:bb:cc:dd:ee:01", 37.7749, -122.4194)
	notifier := &fakeNotifier{}
	svc := NewService(&fakeDB{aps: map[string]domain.WifiAccessPoint{ap.MACAddress: ap}},
		algorithm.All(), WithNotifier(notifier))

	pos, _, err := svc.Locate(context.Background(), []domain.WifiScanResult{
		{MACAddress: ap.MACAddress, SignalStrength: -60, Frequency: 2437},
	})
	require.NoError(t, err)
	require.Len(t, notifier.calls, 1)
	assert.Equal(t, pos, notifier.calls[0].pos)
	assert.NotEmpty(t, notifier.calls[0].info.RequestID)
}

func TestLocateFiltersInactiveAPs(t *testing.T) {
	active := activeAP("aa:bb:cc:dd:ee:01", 37.7749, -122.4194)
	expired := activeAP("aa:bb:cc:dd:ee:02", 37.7755, -122.4200)
	expired.Status = domain.StatusExpired

	svc := newService(map[string]domain.WifiAccessPoint{
		active.MACAddress: active, expired.MACAddress: expired,
	})

	pos, info, err := svc.Locate(context.Background(), []domain.WifiScanResult{
		{MACAddress: active.MACAddress, SignalStrength: -60, Frequency: 2437},
		{MACAddress: expired.MACAddress, SignalStrength: -62, Frequency: 2437},
	})
	require.NoError(t, err)
	require.NotNil(t, pos)

	assert.Equal(t, 2, info.AccessPointSummary.Total)
	assert.Equal(t, 1, info.AccessPointSummary.Used)
	// Only the active AP remains, so the result is its position.
	assert.Equal(t, active.Latitude, pos.Latitude)
}
