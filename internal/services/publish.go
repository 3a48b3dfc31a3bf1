package services

import (
	"context"

	log "github.com/sirupsen/logrus"

	"tournament-arena/internal/events"
)

// publish emits an event after commit. Failures are logged, never returned.
func publish(ctx context.Context, publisher events.Publisher, event events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		log.WithError(err).WithField("event", event.Type).Warn("Failed to publish event")
	}
}
