package database

import (
	"gorm.io/gorm"

	"github.com/ridepool/ridepool-backend/internal/models"
)

func RunMigrations(db *gorm.DB) error {
	// Create tables if they don't exist
	err := db.AutoMigrate(
		&models.User{},
		&models.Ride{},
		&models.Booking{},
	)
	if err != nil {
		return err
	}

	// Seat invariants enforced at the database as a last line of defense;
	// the composite unique index comes from the Booking model tags.
	if db.Migrator().HasTable(&models.Ride{}) {
		db.Exec(`ALTER TABLE rides DROP CONSTRAINT IF EXISTS rides_seats_total_check`)
		if err := db.Exec(`ALTER TABLE rides ADD CONSTRAINT rides_seats_total_check CHECK (seats_total >= 1)`).Error; err != nil {
			return err
		}
		db.Exec(`ALTER TABLE rides DROP CONSTRAINT IF EXISTS rides_seats_available_check`)
		if err := db.Exec(`ALTER TABLE rides ADD CONSTRAINT rides_seats_available_check CHECK (seats_available >= 0 AND seats_available <= seats_total)`).Error; err != nil {
			return err
		}
	}

	if db.Migrator().HasTable(&models.Booking{}) {
		db.Exec(`ALTER TABLE bookings DROP CONSTRAINT IF EXISTS bookings_seats_check`)
		if err := db.Exec(`ALTER TABLE bookings ADD CONSTRAINT bookings_seats_check CHECK (seats >= 1)`).Error; err != nil {
			return err
		}
	}

	return nil
}
