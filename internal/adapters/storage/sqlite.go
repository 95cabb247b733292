package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/domain"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub002/internal/core/ports"
)

// SQLiteAdapter implements ports.APDatabase using GORM and SQLite.
type SQLiteAdapter struct {
	db *gorm.DB
}

var _ ports.APDatabase = (*SQLiteAdapter)(nil)

// AccessPointModel is the GORM model for reference access points.
type AccessPointModel struct {
	MAC                string `gorm:"primaryKey"`
	Latitude           float64
	Longitude          float64
	Altitude           *float64
	HorizontalAccuracy float64
	VerticalAccuracy   *float64
	Confidence         float64
	Frequency          int
	Vendor             string
	Status             string `gorm:"index"`
	UpdatedAt          time.Time
}

// NewSQLiteAdapter initializes the database and migrates schema.
func NewSQLiteAdapter(path string) (*SQLiteAdapter, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&AccessPointModel{}); err != nil {
		return nil, err
	}

	// Lookup is always by canonical MAC; keep a covering index on the
	// vendor for the inventory endpoint.
	db.Exec("CREATE INDEX IF NOT EXISTS idx_access_points_vendor ON access_point_models(vendor)")

	return &SQLiteAdapter{db: db}, nil
}

// FindByMAC looks up one AP record. Absence is not an error.
func (a *SQLiteAdapter) FindByMAC(ctx context.Context, mac string) (*domain.WifiAccessPoint, error) {
	var model AccessPointModel
	err := a.db.WithContext(ctx).First(&model, "mac = ?", domain.NormalizeMAC(mac)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ap := toDomain(model)
	return &ap, nil
}

// FindByMACs resolves a set of MACs in one query; missing entries are
// simply absent from the result map.
func (a *SQLiteAdapter) FindByMACs(ctx context.Context, macs []string) (map[string]domain.WifiAccessPoint, error) {
	out := make(map[string]domain.WifiAccessPoint, len(macs))
	if len(macs) == 0 {
		return out, nil
	}

	canonical := make([]string, 0, len(macs))
	for _, m := range macs {
		canonical = append(canonical, domain.NormalizeMAC(m))
	}

	var models []AccessPointModel
	if err := a.db.WithContext(ctx).Where("mac IN ?", canonical).Find(&models).Error; err != nil {
		return nil, err
	}
	for _, m := range models {
		out[m.MAC] = toDomain(m)
	}
	return out, nil
}

// SaveAccessPoint upserts one record by MAC.
func (a *SQLiteAdapter) SaveAccessPoint(ap domain.WifiAccessPoint) error {
	model := toModel(ap)
	return a.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "mac"}},
		UpdateAll: true,
	}).Create(&model).Error
}

// SaveAccessPoints bulk-upserts a reference dataset.
func (a *SQLiteAdapter) SaveAccessPoints(aps []domain.WifiAccessPoint) error {
	if len(aps) == 0 {
		return nil
	}
	models := make([]AccessPointModel, len(aps))
	for i, ap := range aps {
		models[i] = toModel(ap)
	}
	return a.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "mac"}},
		UpdateAll: true,
	}).CreateInBatches(&models, 200).Error
}

// Close releases the underlying database handle.
func (a *SQLiteAdapter) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// CountByStatus aggregates the inventory for the stats endpoint.
func (a *SQLiteAdapter) CountByStatus() (map[domain.APStatus]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := a.db.Model(&AccessPointModel{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[domain.APStatus]int64, len(rows))
	for _, r := range rows {
		out[domain.APStatus(r.Status)] = r.Count
	}
	return out, nil
}
