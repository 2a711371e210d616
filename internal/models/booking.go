package models

import (
	"gorm.io/gorm"
)

// BookingStatus is the lifecycle state of a seat claim.
type BookingStatus string

const (
	BookingStatusPending  BookingStatus = "pending"
	BookingStatusAccepted BookingStatus = "accepted"
	BookingStatusRejected BookingStatus = "rejected"
	BookingStatusCancelled BookingStatus = "cancelled" // reserved; no transition yet
)

// Booking is a passenger's claim on seats of one ride. A pending booking
// reserves nothing; seats are only deducted when the driver accepts.
// At most one booking may exist per (ride, passenger) pair, enforced by a
// composite unique index.
type Booking struct {
	gorm.Model
	RideID      uint          `json:"rideId" gorm:"not null;uniqueIndex:idx_bookings_ride_passenger"`
	Ride        *Ride         `json:"ride,omitempty" gorm:"foreignKey:RideID"`
	PassengerID uint          `json:"passengerId" gorm:"not null;uniqueIndex:idx_bookings_ride_passenger"`
	Passenger   *User         `json:"passenger,omitempty" gorm:"foreignKey:PassengerID"`
	Seats       int           `json:"seats" gorm:"not null;default:1"`
	Status      BookingStatus `json:"status" gorm:"not null;default:'pending'"`
	Message     string        `json:"message"`
}

// TableName specifies the table name
func (Booking) TableName() string {
	return "bookings"
}
