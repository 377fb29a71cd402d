package config

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/addisfuel/fuelwatch/models"
)

func Migrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "20250301_create_core_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.User{}, &models.Station{}, &models.FuelStatus{},
					&models.FuelStatusHistory{}, &models.Tanker{}, &models.Trip{}, &models.Delivery{})
			},
		},
		{
			ID: "20250308_create_reporting_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.UserReport{}, &models.PendingApproval{},
					&models.Notification{}, &models.Subscription{})
			},
		},
		{
			ID: "20250315_create_ops_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.SystemLog{}, &models.AuditLog{}, &models.AnalyticsReport{})
			},
		},
		{
			ID: "20250412_create_proximity_alerts",
			Migrate: func(tx *gorm.DB) error {
				// The unique (trip_id, station_id) index on this table is the
				// concurrency guard for the tanker-approaching fan-out; it must
				// exist before the first ETA poll.
				return tx.AutoMigrate(&models.ProximityAlert{})
			},
		},
		{
			ID: "20250420_backfill_fuel_status_source",
			Migrate: func(tx *gorm.DB) error {
				return tx.Exec("UPDATE fuel_statuses SET source_type = 'SYSTEM' WHERE source_type IS NULL OR source_type = ''").Error
			},
		},
	})

	return m.Migrate()
}
