package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ridepool/ridepool-backend/internal/models"
)

func seedRide(t *testing.T, m *MemoryStore, driverID uint, seats int) *models.Ride {
	t.Helper()
	ride := &models.Ride{
		DriverID:       driverID,
		SeatsTotal:     seats,
		SeatsAvailable: seats,
		Pickup:         models.GeoPoint{Lng: 0, Lat: 0},
		Dropoff:        models.GeoPoint{Lng: 1, Lat: 1},
		DepartAt:       time.Now().Add(time.Hour),
	}
	if err := m.Rides().Create(context.Background(), ride); err != nil {
		t.Fatalf("create ride: %v", err)
	}
	return ride
}

func TestRideLifecycle(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	ride := seedRide(t, m, 1, 4)

	got, err := m.Rides().FindByID(ctx, ride.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.SeatsTotal != 4 {
		t.Fatalf("expected 4 seats, got %d", got.SeatsTotal)
	}

	got.Notes = "edited"
	if err := m.Rides().Save(ctx, got); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := m.Rides().Delete(ctx, ride.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := m.Rides().FindByID(ctx, ride.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestBookingUniqueness(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	ride := seedRide(t, m, 1, 4)

	first := &models.Booking{RideID: ride.ID, PassengerID: 2, Seats: 1, Status: models.BookingStatusPending}
	if err := m.Bookings().Create(ctx, first); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	second := &models.Booking{RideID: ride.ID, PassengerID: 2, Seats: 2, Status: models.BookingStatusPending}
	if err := m.Bookings().Create(ctx, second); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestConcurrentDoubleSubmitOneWins(t *testing.T) {
	m := NewMemoryStore()
	ride := seedRide(t, m, 1, 4)

	const attempts = 2
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b := &models.Booking{RideID: ride.ID, PassengerID: 7, Seats: 1, Status: models.BookingStatusPending}
			errs <- m.Bookings().Create(context.Background(), b)
		}()
	}
	wg.Wait()
	close(errs)

	var ok, dup int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrDuplicate):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || dup != 1 {
		t.Fatalf("expected exactly one success and one duplicate, got %d/%d", ok, dup)
	}
}

func TestResolveAcceptDecrementsWithFloor(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	ride := seedRide(t, m, 1, 4)

	b1 := &models.Booking{RideID: ride.ID, PassengerID: 2, Seats: 2, Status: models.BookingStatusPending}
	b2 := &models.Booking{RideID: ride.ID, PassengerID: 3, Seats: 3, Status: models.BookingStatusPending}
	for _, b := range []*models.Booking{b1, b2} {
		if err := m.Bookings().Create(ctx, b); err != nil {
			t.Fatalf("create booking: %v", err)
		}
	}

	if err := m.Bookings().Resolve(ctx, b1, models.BookingStatusAccepted); err != nil {
		t.Fatalf("resolve b1: %v", err)
	}
	got, _ := m.Rides().FindByID(ctx, ride.ID)
	if got.SeatsAvailable != 2 {
		t.Fatalf("expected 2 seats left, got %d", got.SeatsAvailable)
	}

	// 3 requested, 2 remaining: the floor clamps at zero, never negative.
	if err := m.Bookings().Resolve(ctx, b2, models.BookingStatusAccepted); err != nil {
		t.Fatalf("resolve b2: %v", err)
	}
	got, _ = m.Rides().FindByID(ctx, ride.ID)
	if got.SeatsAvailable != 0 {
		t.Fatalf("expected 0 seats left, got %d", got.SeatsAvailable)
	}
}

func TestResolveRejectLeavesSeats(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	ride := seedRide(t, m, 1, 4)

	b := &models.Booking{RideID: ride.ID, PassengerID: 2, Seats: 2, Status: models.BookingStatusPending}
	if err := m.Bookings().Create(ctx, b); err != nil {
		t.Fatalf("create booking: %v", err)
	}
	if err := m.Bookings().Resolve(ctx, b, models.BookingStatusRejected); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if b.Status != models.BookingStatusRejected {
		t.Fatalf("expected rejected, got %s", b.Status)
	}
	got, _ := m.Rides().FindByID(ctx, ride.ID)
	if got.SeatsAvailable != 4 {
		t.Fatalf("expected seats untouched, got %d", got.SeatsAvailable)
	}
}

func TestConcurrentAcceptsNoLostUpdate(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	ride := seedRide(t, m, 1, 4)

	b1 := &models.Booking{RideID: ride.ID, PassengerID: 2, Seats: 2, Status: models.BookingStatusPending}
	b2 := &models.Booking{RideID: ride.ID, PassengerID: 3, Seats: 2, Status: models.BookingStatusPending}
	for _, b := range []*models.Booking{b1, b2} {
		if err := m.Bookings().Create(ctx, b); err != nil {
			t.Fatalf("create booking: %v", err)
		}
	}

	var wg sync.WaitGroup
	for _, b := range []*models.Booking{b1, b2} {
		wg.Add(1)
		go func(b *models.Booking) {
			defer wg.Done()
			if err := m.Bookings().Resolve(context.Background(), b, models.BookingStatusAccepted); err != nil {
				t.Errorf("resolve: %v", err)
			}
		}(b)
	}
	wg.Wait()

	got, _ := m.Rides().FindByID(ctx, ride.ID)
	if got.SeatsAvailable != 0 {
		t.Fatalf("lost update: expected 0 seats, got %d", got.SeatsAvailable)
	}
}
