package models

import (
	"time"

	"gorm.io/gorm"
)

// Ride is a driver-offered trip with fixed seat capacity.
// SeatsAvailable is only ever reduced by booking acceptance; edits by the
// driver go through the ride update handler.
type Ride struct {
	gorm.Model
	DriverID       uint       `json:"driverId" gorm:"not null;index"`
	Driver         *User      `json:"driver,omitempty" gorm:"foreignKey:DriverID"`
	SeatsTotal     int        `json:"seatsTotal" gorm:"not null"`
	SeatsAvailable int        `json:"seatsAvailable" gorm:"not null"`
	Pickup         GeoPoint   `json:"pickup" gorm:"embedded;embeddedPrefix:pickup_"`
	Dropoff        GeoPoint   `json:"dropoff" gorm:"embedded;embeddedPrefix:dropoff_"`
	DepartAt       time.Time  `json:"departAt" gorm:"not null;index"`
	ReturnAt       *time.Time `json:"returnAt,omitempty"`
	Price          float64    `json:"price" gorm:"not null;default:0"`
	Notes          string     `json:"notes"`

	// PickupDistance is filled by radius searches (meters from the query
	// anchor); never persisted.
	PickupDistance float64 `json:"pickupDistance,omitempty" gorm:"-"`
}

// TableName specifies the table name
func (Ride) TableName() string {
	return "rides"
}
