package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ridepool/ridepool-backend/internal/models"
	"github.com/ridepool/ridepool-backend/internal/store"
)

// BookingService governs the booking lifecycle: creation by a passenger,
// then a single accept/reject decision by the ride's driver. Acceptance is
// the only mutation of a ride's available seats, and it is atomic with the
// status transition.
type BookingService struct {
	rides    store.RideStore
	bookings store.BookingStore
	notifier Notifier
	log      *slog.Logger
}

func NewBookingService(rides store.RideStore, bookings store.BookingStore, notifier Notifier, log *slog.Logger) *BookingService {
	return &BookingService{rides: rides, bookings: bookings, notifier: notifier, log: log}
}

// Request creates a pending booking for the passenger. Pending bookings do
// not reserve seats; only acceptance deducts them. A passenger gets at most
// one booking per ride: the insert is constraint-checked, so a concurrent
// double-submit yields exactly one success and one ErrConflict.
func (s *BookingService) Request(ctx context.Context, rideID, passengerID uint, seats int, message string) (*models.Booking, error) {
	if seats < 1 {
		return nil, fmt.Errorf("%w: seats must be at least 1", ErrInvalidArgument)
	}

	ride, err := s.rides.FindByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: ride %d", ErrNotFound, rideID)
		}
		return nil, fmt.Errorf("find ride: %w", err)
	}

	if ride.DriverID == passengerID {
		return nil, fmt.Errorf("%w: cannot book your own ride", ErrInvalidOperation)
	}

	booking := &models.Booking{
		RideID:      rideID,
		PassengerID: passengerID,
		Seats:       seats,
		Status:      models.BookingStatusPending,
		Message:     message,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("%w: booking already exists for this ride", ErrConflict)
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.notifier.Publish(TopicBookingPending, RideEvent{RideID: ride.ID})
	return booking, nil
}

// Decide applies the driver's accept/reject decision. On acceptance the
// ride's available seats drop by the booked amount, floored at zero, in the
// same transaction as the status change. The event fires only after the
// mutation committed.
func (s *BookingService) Decide(ctx context.Context, bookingID, driverID uint, decision models.BookingStatus) (*models.Booking, error) {
	if decision != models.BookingStatusAccepted && decision != models.BookingStatusRejected {
		return nil, fmt.Errorf("%w: decision must be accepted or rejected", ErrInvalidArgument)
	}

	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: booking %d", ErrNotFound, bookingID)
		}
		return nil, fmt.Errorf("find booking: %w", err)
	}
	if booking.Ride == nil {
		return nil, fmt.Errorf("%w: ride %d", ErrNotFound, booking.RideID)
	}

	if booking.Ride.DriverID != driverID {
		return nil, fmt.Errorf("%w: not your ride", ErrForbidden)
	}

	if err := s.bookings.Resolve(ctx, booking, decision); err != nil {
		return nil, fmt.Errorf("resolve booking: %w", err)
	}

	s.notifier.Publish(TopicBookingResolved, RideEvent{RideID: booking.RideID})
	return booking, nil
}

// ForPassenger lists the passenger's bookings with their rides.
func (s *BookingService) ForPassenger(ctx context.Context, passengerID uint) ([]models.Booking, error) {
	return s.bookings.ByPassenger(ctx, passengerID)
}

// ForDriver lists bookings placed against the driver's rides.
func (s *BookingService) ForDriver(ctx context.Context, driverID uint) ([]models.Booking, error) {
	return s.bookings.ByRideDriver(ctx, driverID)
}
