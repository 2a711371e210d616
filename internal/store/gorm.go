package store

import (
	"context"
	"errors"
	"sort"

	"gorm.io/gorm"

	"github.com/ridepool/ridepool-backend/internal/models"
	"github.com/ridepool/ridepool-backend/pkg/utils"
)

// GormStore executes queries against Postgres. Radius predicates are split
// in two: an index-friendly bounding-box prefilter in SQL, then the exact
// Haversine check in Go, since plain Postgres has no spherical operators
// without PostGIS.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (g *GormStore) Rides() RideStore       { return &gormRides{g.db} }
func (g *GormStore) Bookings() BookingStore { return &gormBookings{g.db} }

type gormRides struct{ db *gorm.DB }

func (s *gormRides) Create(ctx context.Context, ride *models.Ride) error {
	return s.db.WithContext(ctx).Create(ride).Error
}

func (s *gormRides) Save(ctx context.Context, ride *models.Ride) error {
	return s.db.WithContext(ctx).Save(ride).Error
}

func (s *gormRides) FindByID(ctx context.Context, id uint) (*models.Ride, error) {
	var ride models.Ride
	if err := s.db.WithContext(ctx).First(&ride, id).Error; err != nil {
		return nil, translate(err)
	}
	return &ride, nil
}

func (s *gormRides) Delete(ctx context.Context, id uint) error {
	// Hard delete: a removed ride should not linger behind the soft-delete
	// scope and keep blocking re-bookings through the unique index.
	res := s.db.WithContext(ctx).Unscoped().Delete(&models.Ride{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormRides) ByDriver(ctx context.Context, driverID uint) ([]models.Ride, error) {
	var rides []models.Ride
	err := s.db.WithContext(ctx).
		Where("driver_id = ?", driverID).
		Order("created_at DESC").
		Find(&rides).Error
	return rides, err
}

func (s *gormRides) Search(ctx context.Context, q RideQuery) ([]models.Ride, error) {
	query := s.db.WithContext(ctx).Model(&models.Ride{}).
		Where("seats_available >= ?", q.MinSeats).
		Where("depart_at >= ?", q.DepartFrom)
	if q.DepartTo != nil {
		query = query.Where("depart_at <= ?", *q.DepartTo)
	}

	switch q.Anchor {
	case AnchorPickup:
		bbox := utils.GetBoundingBox(q.Center.Lat, q.Center.Lng, q.RadiusMeters)
		query = query.
			Where("pickup_lat BETWEEN ? AND ?", bbox.SouthWest.Lat, bbox.NorthEast.Lat).
			Where("pickup_lng BETWEEN ? AND ?", bbox.SouthWest.Lng, bbox.NorthEast.Lng)
	case AnchorDropoff:
		bbox := utils.GetBoundingBox(q.Center.Lat, q.Center.Lng, q.RadiusMeters)
		query = query.
			Where("dropoff_lat BETWEEN ? AND ?", bbox.SouthWest.Lat, bbox.NorthEast.Lat).
			Where("dropoff_lng BETWEEN ? AND ?", bbox.SouthWest.Lng, bbox.NorthEast.Lng)
	}

	var candidates []models.Ride
	if err := query.Find(&candidates).Error; err != nil {
		return nil, err
	}

	// The bounding box over-selects at the corners; apply the exact
	// great-circle predicates here.
	out := candidates[:0]
	for _, r := range candidates {
		switch q.Anchor {
		case AnchorPickup:
			d := utils.HaversineDistance(q.Center.Lat, q.Center.Lng, r.Pickup.Lat, r.Pickup.Lng)
			if d > q.RadiusMeters {
				continue
			}
			r.PickupDistance = d
		case AnchorDropoff:
			d := utils.HaversineDistance(q.Center.Lat, q.Center.Lng, r.Dropoff.Lat, r.Dropoff.Lng)
			if d > q.RadiusMeters {
				continue
			}
			r.PickupDistance = d
		}
		if q.DropoffNear != nil &&
			!utils.IsWithinRadius(q.DropoffNear.Lat, q.DropoffNear.Lng, r.Dropoff.Lat, r.Dropoff.Lng, q.RadiusMeters) {
			continue
		}
		out = append(out, r)
	}

	if q.Anchor != AnchorNone {
		sort.Slice(out, func(i, j int) bool { return out[i].PickupDistance < out[j].PickupDistance })
	}
	return out, nil
}

type gormBookings struct{ db *gorm.DB }

func (s *gormBookings) Create(ctx context.Context, booking *models.Booking) error {
	if err := s.db.WithContext(ctx).Create(booking).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (s *gormBookings) FindByID(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.WithContext(ctx).Preload("Ride").First(&booking, id).Error; err != nil {
		return nil, translate(err)
	}
	return &booking, nil
}

func (s *gormBookings) ByPassenger(ctx context.Context, passengerID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.WithContext(ctx).
		Where("passenger_id = ?", passengerID).
		Preload("Ride").
		Preload("Ride.Driver").
		Find(&bookings).Error
	return bookings, err
}

func (s *gormBookings) ByRideDriver(ctx context.Context, driverID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.WithContext(ctx).
		Joins("JOIN rides ON rides.id = bookings.ride_id").
		Where("rides.driver_id = ?", driverID).
		Preload("Ride").
		Preload("Passenger").
		Find(&bookings).Error
	return bookings, err
}

// Resolve commits the status change and the seat decrement in one
// transaction. The decrement is a single SQL expression relative to the
// persisted value, so concurrent accepts on the same ride serialize on the
// row instead of racing a read-modify-write.
func (s *gormBookings) Resolve(ctx context.Context, booking *models.Booking, status models.BookingStatus) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Booking{}).
			Where("id = ?", booking.ID).
			Update("status", status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if status == models.BookingStatusAccepted {
			if err := tx.Model(&models.Ride{}).
				Where("id = ?", booking.RideID).
				UpdateColumn("seats_available", gorm.Expr("GREATEST(seats_available - ?, 0)", booking.Seats)).
				Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return translate(err)
	}
	booking.Status = status
	return nil
}

// translate maps gorm errors onto the store sentinels so callers never
// import gorm.
func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
