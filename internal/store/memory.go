package store

import (
	"context"
	"sort"
	"sync"

	"github.com/ridepool/ridepool-backend/internal/models"
	"github.com/ridepool/ridepool-backend/pkg/utils"
)

// MemoryStore keeps rides and bookings in mutex-guarded maps with a naive
// Haversine scan for radius queries. It backs tests and DB-less local runs;
// production uses GormStore. Rides() and Bookings() expose the two store
// interfaces over the same shared state so booking resolution can mutate
// seat counts under one lock.
type MemoryStore struct {
	mu            sync.RWMutex
	rides         map[uint]models.Ride
	bookings      map[uint]models.Booking
	nextRideID    uint
	nextBookingID uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rides:    make(map[uint]models.Ride),
		bookings: make(map[uint]models.Booking),
	}
}

func (m *MemoryStore) Rides() RideStore       { return &memoryRides{m} }
func (m *MemoryStore) Bookings() BookingStore { return &memoryBookings{m} }

type memoryRides struct{ m *MemoryStore }

func (s *memoryRides) Create(ctx context.Context, ride *models.Ride) error {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextRideID++
	ride.ID = m.nextRideID
	m.rides[ride.ID] = *ride
	return nil
}

func (s *memoryRides) Save(ctx context.Context, ride *models.Ride) error {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rides[ride.ID]; !ok {
		return ErrNotFound
	}
	m.rides[ride.ID] = *ride
	return nil
}

func (s *memoryRides) FindByID(ctx context.Context, id uint) (*models.Ride, error) {
	m := s.m
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &ride, nil
}

func (s *memoryRides) Delete(ctx context.Context, id uint) error {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rides[id]; !ok {
		return ErrNotFound
	}
	delete(m.rides, id)
	return nil
}

func (s *memoryRides) ByDriver(ctx context.Context, driverID uint) ([]models.Ride, error) {
	m := s.m
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Ride
	for _, r := range m.rides {
		if r.DriverID == driverID {
			out = append(out, r)
		}
	}
	// newest first, matching the driver's "my rides" listing
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memoryRides) Search(ctx context.Context, q RideQuery) ([]models.Ride, error) {
	m := s.m
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Ride
	for _, r := range m.rides {
		if r.SeatsAvailable < q.MinSeats {
			continue
		}
		if r.DepartAt.Before(q.DepartFrom) {
			continue
		}
		if q.DepartTo != nil && r.DepartAt.After(*q.DepartTo) {
			continue
		}
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

type memoryBookings struct{ m *MemoryStore }

func (s *memoryBookings) Create(ctx context.Context, booking *models.Booking) error {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.RideID == booking.RideID && b.PassengerID == booking.PassengerID {
			return ErrDuplicate
		}
	}
	m.nextBookingID++
	booking.ID = m.nextBookingID
	m.bookings[booking.ID] = *booking
	return nil
}

func (s *memoryBookings) FindByID(ctx context.Context, id uint) (*models.Booking, error) {
	m := s.m
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	if ride, ok := m.rides[b.RideID]; ok {
		b.Ride = &ride
	}
	return &b, nil
}

func (s *memoryBookings) ByPassenger(ctx context.Context, passengerID uint) ([]models.Booking, error) {
	m := s.m
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Booking
	for _, b := range m.bookings {
		if b.PassengerID == passengerID {
			if ride, ok := m.rides[b.RideID]; ok {
				b.Ride = &ride
			}
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memoryBookings) ByRideDriver(ctx context.Context, driverID uint) ([]models.Booking, error) {
	m := s.m
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Booking
	for _, b := range m.bookings {
		ride, ok := m.rides[b.RideID]
		if !ok || ride.DriverID != driverID {
			continue
		}
		b.Ride = &ride
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Resolve applies the status under the store lock so two concurrent accepts
// never decrement from the same stale seat count.
func (s *memoryBookings) Resolve(ctx context.Context, booking *models.Booking, status models.BookingStatus) error {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bookings[booking.ID]
	if !ok {
		return ErrNotFound
	}
	b.Status = status
	if status == models.BookingStatusAccepted {
		ride, ok := m.rides[b.RideID]
		if !ok {
			return ErrNotFound
		}
		ride.SeatsAvailable -= b.Seats
		if ride.SeatsAvailable < 0 {
			ride.SeatsAvailable = 0
		}
		m.rides[ride.ID] = ride
	}
	m.bookings[b.ID] = b
	booking.Status = status
	return nil
}
