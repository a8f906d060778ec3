// Package notification subscribes to domain events and fans them out to the
// agency owner and agents over email and WhatsApp. Domain modules publish
// events; they never know about delivery channels.
package notification

import (
	"context"

	"thavon_backend/internal/email"
	"thavon_backend/internal/events"
	"thavon_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module wires the notification dispatcher to the event bus. It registers no
// routes.
type Module struct {
	dispatcher *Dispatcher
}

// NewModule creates the notification module and subscribes it to the events
// it cares about.
func NewModule(pool *pgxpool.Pool, sender email.Sender, wa WhatsAppSender, eventBus events.Bus, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	dispatcher := NewDispatcher(repo, sender, wa, log)

	eventBus.Subscribe(events.CallCompleted{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.CallCompleted)
		if !ok {
			return nil
		}
		dispatcher.NotifyCallCompleted(ctx, e)
		return nil
	}))

	eventBus.Subscribe(events.AppointmentBooked{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.AppointmentBooked)
		if !ok {
			return nil
		}
		dispatcher.NotifyAppointmentBooked(ctx, e)
		return nil
	}))

	return &Module{dispatcher: dispatcher}
}
