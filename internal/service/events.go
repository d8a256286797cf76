package service

import (
	"context"
	"log/slog"

	"github.com/Eursukkul/table-booking/internal/models"
)

// EventPublisher is satisfied by *rabbitmq.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// ReservationEvent is published after every committed mutation. Index is -1
// for an import, which replaces the whole sequence.
type ReservationEvent struct {
	Action      string             `json:"action"`
	Index       int                `json:"index"`
	Reservation models.Reservation `json:"reservation"`
	SeatsLeft   int                `json:"seatsLeft"`
}

var eventActions = map[string]string{
	OpAdd:      "created",
	OpUpdate:   "updated",
	OpCheckOut: "checked_out",
	OpRemove:   "removed",
	OpImport:   "imported",
}

// eventAction names the committed change for the given operation.
func eventAction(op string) string {
	if action, ok := eventActions[op]; ok {
		return action
	}
	return op
}

func (e ReservationEvent) RoutingKey() string {
	return "reservation." + e.Action
}

// publish is best effort: the mutation is already committed.
func (s *ledgerService) publish(ctx context.Context, event ReservationEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event.RoutingKey(), event); err != nil {
		slog.Warn("Failed to publish reservation event", "routing_key", event.RoutingKey(), "error", err)
	}
}
