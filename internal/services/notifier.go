package services

import "log/slog"

// Lifecycle event topics. Payloads carry the ride id so clients watching a
// ride can refresh without resolving the booking themselves.
const (
	TopicRideNew         = "ride:new"
	TopicRideUpdate      = "ride:update"
	TopicBookingPending  = "booking:pending"
	TopicBookingResolved = "booking:resolved"
)

// Notifier is a fire-and-forget sink for lifecycle events. Implementations
// must not block the caller on delivery and must swallow delivery failures;
// the engine only guarantees that Publish is called after the state
// mutation it describes.
type Notifier interface {
	Publish(topic string, payload any)
}

// RideEvent is the payload for booking lifecycle topics.
type RideEvent struct {
	RideID uint `json:"rideId"`
}

// NopNotifier discards every event.
type NopNotifier struct{}

func (NopNotifier) Publish(string, any) {}

// FanoutNotifier forwards each event to every configured sink.
type FanoutNotifier []Notifier

func (f FanoutNotifier) Publish(topic string, payload any) {
	for _, n := range f {
		n.Publish(topic, payload)
	}
}

// LogNotifier records events to the logger; useful as a local fallback when
// neither the hub nor Redis is wired.
type LogNotifier struct {
	Log *slog.Logger
}

func (l LogNotifier) Publish(topic string, payload any) {
	l.Log.Info("event", "topic", topic, "payload", payload)
}
