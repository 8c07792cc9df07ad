package notifier

import (
	"log"
	"time"

	"github.com/NelsonCereno/Tingeso-2/internal/models"
)

const (
	RoutingKeyConfirmed = "reservation.confirmed"
	RoutingKeyCancelled = "reservation.cancelled"
	RoutingKeyCompleted = "reservation.completed"
)

// EventPublisher is satisfied by rabbitmq.Publisher.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

// Event is the message emitted on reservation state changes.
type Event struct {
	ReservationID   uint      `json:"reservation_id"`
	Status          string    `json:"status"`
	HolderClientID  uint      `json:"holder_client_id"`
	PartySize       int       `json:"party_size"`
	StartTime       time.Time `json:"start_time"`
	DurationMinutes int       `json:"duration_minutes"`
	TotalFare       float64   `json:"total_fare"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// Notifier publishes reservation lifecycle events. Delivery is best effort:
// a broker outage never fails the business operation, it only leaves the
// reservation's notification flag unset.
type Notifier struct {
	publisher EventPublisher
}

// NewNotifier accepts a nil publisher, in which case every notification is
// skipped and reported as unsent.
func NewNotifier(publisher EventPublisher) *Notifier {
	return &Notifier{publisher: publisher}
}

func (n *Notifier) ReservationConfirmed(res *models.Reservation) bool {
	return n.publish(RoutingKeyConfirmed, res)
}

func (n *Notifier) ReservationCancelled(res *models.Reservation) bool {
	return n.publish(RoutingKeyCancelled, res)
}

func (n *Notifier) ReservationCompleted(res *models.Reservation) bool {
	return n.publish(RoutingKeyCompleted, res)
}

func (n *Notifier) publish(routingKey string, res *models.Reservation) bool {
	if n.publisher == nil {
		log.Printf("[Notifier] broker disabled, skipping %s for reservation %d", routingKey, res.ID)
		return false
	}

	event := Event{
		ReservationID:   res.ID,
		Status:          string(res.Status),
		HolderClientID:  res.HolderClientID,
		PartySize:       res.PartySize,
		StartTime:       res.StartTime,
		DurationMinutes: res.DurationMinutes,
		TotalFare:       res.TotalFare,
		OccurredAt:      time.Now(),
	}
	if err := n.publisher.Publish(routingKey, event); err != nil {
		log.Printf("[Notifier] publish %s for reservation %d failed: %v", routingKey, res.ID, err)
		return false
	}
	return true
}
