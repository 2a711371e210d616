// Package store abstracts the geospatial record store behind interfaces so
// the matching and booking services can run against Postgres in production
// and an in-memory index in tests or local setups without a database.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/ridepool/ridepool-backend/internal/models"
)

var (
	// ErrNotFound is returned when a referenced ride or booking does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when an insert violates a uniqueness
	// constraint, such as a second booking for the same (ride, passenger).
	ErrDuplicate = errors.New("duplicate record")
)

// Anchor selects which ride location field drives the radius query.
type Anchor int

const (
	AnchorNone Anchor = iota
	AnchorPickup
	AnchorDropoff
)

// RideQuery is a fully-resolved search descriptor. The matcher validates
// raw request input and produces one of these; stores only execute it.
type RideQuery struct {
	Anchor       Anchor
	Center       models.GeoPoint // anchor center; meaningful when Anchor != AnchorNone
	RadiusMeters float64

	// DropoffNear, when set, requires the ride's dropoff point to lie
	// within RadiusMeters of this point (spherical-cap containment).
	DropoffNear *models.GeoPoint

	MinSeats   int
	DepartFrom time.Time
	DepartTo   *time.Time // nil means open-ended
}

// RideStore is the ride half of the record store. Search returns candidates
// matching every predicate of the query, nearest-first when anchored, with
// PickupDistance populated from the anchor; final ordering belongs to the
// matcher.
type RideStore interface {
	Create(ctx context.Context, ride *models.Ride) error
	Save(ctx context.Context, ride *models.Ride) error
	FindByID(ctx context.Context, id uint) (*models.Ride, error)
	Delete(ctx context.Context, id uint) error
	ByDriver(ctx context.Context, driverID uint) ([]models.Ride, error)
	Search(ctx context.Context, q RideQuery) ([]models.Ride, error)
}

// BookingStore is the booking half. Create must reject a duplicate
// (ride, passenger) pair atomically with ErrDuplicate. Resolve persists the
// status transition and, on acceptance, decrements the ride's available
// seats clamped at zero; the two mutations commit or fail together.
type BookingStore interface {
	Create(ctx context.Context, booking *models.Booking) error
	FindByID(ctx context.Context, id uint) (*models.Booking, error)
	ByPassenger(ctx context.Context, passengerID uint) ([]models.Booking, error)
	ByRideDriver(ctx context.Context, driverID uint) ([]models.Booking, error)
	Resolve(ctx context.Context, booking *models.Booking, status models.BookingStatus) error
}
