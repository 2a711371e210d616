package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ridepool/ridepool-backend/internal/models"
	"github.com/ridepool/ridepool-backend/internal/store"
)

// recordingNotifier captures published topics in order.
type recordingNotifier struct {
	mu     sync.Mutex
	topics []string
}

func (n *recordingNotifier) Publish(topic string, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.topics = append(n.topics, topic)
}

func (n *recordingNotifier) published() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.topics...)
}

func newBookingFixture(t *testing.T) (*BookingService, *store.MemoryStore, *recordingNotifier) {
	t.Helper()
	m := store.NewMemoryStore()
	n := &recordingNotifier{}
	svc := NewBookingService(m.Rides(), m.Bookings(), n, testLogger())
	return svc, m, n
}

func TestRequestUnknownRide(t *testing.T) {
	svc, _, _ := newBookingFixture(t)
	if _, err := svc.Request(context.Background(), 42, 2, 1, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRequestRejectsZeroSeats(t *testing.T) {
	svc, _, _ := newBookingFixture(t)
	if _, err := svc.Request(context.Background(), 1, 2, 0, ""); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestRequestOwnRide(t *testing.T) {
	svc, m, n := newBookingFixture(t)
	ride := addRide(t, m, models.Ride{DriverID: 1})

	if _, err := svc.Request(context.Background(), ride.ID, 1, 1, ""); !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("expected ErrInvalidOperation, got %v", err)
	}
	if len(n.published()) != 0 {
		t.Fatal("no event should fire on a rejected request")
	}
}

func TestRequestDuplicateIsConflict(t *testing.T) {
	svc, m, _ := newBookingFixture(t)
	ride := addRide(t, m, models.Ride{DriverID: 1})

	if _, err := svc.Request(context.Background(), ride.ID, 2, 1, "morning commute"); err != nil {
		t.Fatalf("first request: %v", err)
	}
	if _, err := svc.Request(context.Background(), ride.ID, 2, 1, ""); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestRequestPublishesPendingEvent(t *testing.T) {
	svc, m, n := newBookingFixture(t)
	ride := addRide(t, m, models.Ride{DriverID: 1})

	b, err := svc.Request(context.Background(), ride.ID, 2, 1, "")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if b.Status != models.BookingStatusPending {
		t.Fatalf("expected pending, got %s", b.Status)
	}
	// Pending bookings never touch seat counts.
	got, _ := m.Rides().FindByID(context.Background(), ride.ID)
	if got.SeatsAvailable != 4 {
		t.Fatalf("pending booking changed seats: %d", got.SeatsAvailable)
	}
	if topics := n.published(); len(topics) != 1 || topics[0] != TopicBookingPending {
		t.Fatalf("expected one %s event, got %v", TopicBookingPending, topics)
	}
}

func TestDecideValidation(t *testing.T) {
	svc, m, _ := newBookingFixture(t)
	ride := addRide(t, m, models.Ride{DriverID: 1})
	b, err := svc.Request(context.Background(), ride.ID, 2, 1, "")
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	if _, err := svc.Decide(context.Background(), b.ID, 1, models.BookingStatusPending); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("pending is not a decision: got %v", err)
	}
	if _, err := svc.Decide(context.Background(), 999, 1, models.BookingStatusAccepted); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	// Only the ride's driver may decide.
	if _, err := svc.Decide(context.Background(), b.ID, 5, models.BookingStatusAccepted); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestDecideAcceptDeductsSeats(t *testing.T) {
	svc, m, n := newBookingFixture(t)
	ride := addRide(t, m, models.Ride{DriverID: 1})

	b, err := svc.Request(context.Background(), ride.ID, 2, 2, "")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	decided, err := svc.Decide(context.Background(), b.ID, 1, models.BookingStatusAccepted)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if decided.Status != models.BookingStatusAccepted {
		t.Fatalf("expected accepted, got %s", decided.Status)
	}

	got, _ := m.Rides().FindByID(context.Background(), ride.ID)
	if got.SeatsAvailable != 2 {
		t.Fatalf("expected 2 seats left, got %d", got.SeatsAvailable)
	}
	topics := n.published()
	if len(topics) != 2 || topics[0] != TopicBookingPending || topics[1] != TopicBookingResolved {
		t.Fatalf("unexpected event sequence: %v", topics)
	}
}

func TestDecideRejectLeavesSeats(t *testing.T) {
	svc, m, _ := newBookingFixture(t)
	ride := addRide(t, m, models.Ride{DriverID: 1})

	b, err := svc.Request(context.Background(), ride.ID, 2, 2, "")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := svc.Decide(context.Background(), b.ID, 1, models.BookingStatusRejected); err != nil {
		t.Fatalf("decide: %v", err)
	}
	got, _ := m.Rides().FindByID(context.Background(), ride.ID)
	if got.SeatsAvailable != 4 {
		t.Fatalf("rejection changed seats: %d", got.SeatsAvailable)
	}
}

func TestDecideAcceptFloorsAtZero(t *testing.T) {
	svc, m, _ := newBookingFixture(t)
	ride := addRide(t, m, models.Ride{DriverID: 1})

	b1, err := svc.Request(context.Background(), ride.ID, 2, 2, "")
	if err != nil {
		t.Fatalf("request b1: %v", err)
	}
	b2, err := svc.Request(context.Background(), ride.ID, 3, 3, "")
	if err != nil {
		t.Fatalf("request b2: %v", err)
	}

	if _, err := svc.Decide(context.Background(), b1.ID, 1, models.BookingStatusAccepted); err != nil {
		t.Fatalf("decide b1: %v", err)
	}
	// 3 requested against 2 remaining: availability floors at zero.
	if _, err := svc.Decide(context.Background(), b2.ID, 1, models.BookingStatusAccepted); err != nil {
		t.Fatalf("decide b2: %v", err)
	}
	got, _ := m.Rides().FindByID(context.Background(), ride.ID)
	if got.SeatsAvailable != 0 {
		t.Fatalf("expected 0 seats, got %d", got.SeatsAvailable)
	}
}

func TestConcurrentDecidesKeepSeatsConsistent(t *testing.T) {
	svc, m, _ := newBookingFixture(t)
	ride := addRide(t, m, models.Ride{DriverID: 1})

	b1, err := svc.Request(context.Background(), ride.ID, 2, 2, "")
	if err != nil {
		t.Fatalf("request b1: %v", err)
	}
	b2, err := svc.Request(context.Background(), ride.ID, 3, 2, "")
	if err != nil {
		t.Fatalf("request b2: %v", err)
	}

	var wg sync.WaitGroup
	for _, b := range []*models.Booking{b1, b2} {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			if _, err := svc.Decide(context.Background(), id, 1, models.BookingStatusAccepted); err != nil {
				t.Errorf("decide %d: %v", id, err)
			}
		}(b.ID)
	}
	wg.Wait()

	got, _ := m.Rides().FindByID(context.Background(), ride.ID)
	if got.SeatsAvailable != 0 {
		t.Fatalf("lost update: expected 0 seats, got %d", got.SeatsAvailable)
	}
}

func TestListingsScopedToCaller(t *testing.T) {
	svc, m, _ := newBookingFixture(t)
	r1 := addRide(t, m, models.Ride{DriverID: 1})
	r2 := addRide(t, m, models.Ride{DriverID: 2})

	if _, err := svc.Request(context.Background(), r1.ID, 3, 1, ""); err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := svc.Request(context.Background(), r2.ID, 3, 1, ""); err != nil {
		t.Fatalf("request: %v", err)
	}

	mine, err := svc.ForPassenger(context.Background(), 3)
	if err != nil {
		t.Fatalf("for passenger: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 bookings for passenger, got %d", len(mine))
	}

	driver1, err := svc.ForDriver(context.Background(), 1)
	if err != nil {
		t.Fatalf("for driver: %v", err)
	}
	if len(driver1) != 1 || driver1[0].RideID != r1.ID {
		t.Fatalf("driver listing not scoped: %+v", driver1)
	}
}
