package scheduler

import (
	"context"

	"thavon_backend/internal/events"
	"thavon_backend/platform/logger"
)

// SubscribeRetryScheduling bridges the event bus to the task queue: every
// CallRetryScheduled event becomes a delayed asynq task that fires at the
// retry's scheduled time. Without a configured scheduler the retry rows
// still exist but nothing executes them.
func SubscribeRetryScheduling(bus events.Bus, client RetryScheduler, log *logger.Logger) {
	bus.Subscribe(events.CallRetryScheduled{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.CallRetryScheduled)
		if !ok {
			return nil
		}

		payload := CallRetryDuePayload{
			RetryID:  e.RetryID.String(),
			AgencyID: e.AgencyID.String(),
		}

		if err := client.ScheduleCallRetry(ctx, payload, e.ScheduledAt); err != nil {
			log.Error("failed to enqueue call retry task",
				"error", err,
				"retry_id", e.RetryID.String(),
			)
			return err
		}

		log.Info("call retry enqueued",
			"retry_id", e.RetryID.String(),
			"retry_count", e.RetryCount,
			"run_at", e.ScheduledAt,
		)
		return nil
	}))
}
