package scheduler

import (
	"context"
	"fmt"

	"thavon_backend/internal/leads"
	"thavon_backend/internal/voice"
	"thavon_backend/platform/config"
	"thavon_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Worker consumes due retry tasks and places the re-dial. It runs in its own
// process so a flood of retries never competes with webhook handling.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	calls  *voice.Repository
	leads  *leads.Repository
	vapi   *voice.VapiClient
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, vapiCfg config.VapiConfig, pool *pgxpool.Pool, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		calls:  voice.NewRepository(pool),
		leads:  leads.NewRepository(pool),
		vapi:   voice.NewVapiClient(vapiCfg),
		log:    log,
	}

	mux.HandleFunc(TaskCallRetryDue, w.handleCallRetryDue)

	return w, nil
}

// handleCallRetryDue places the re-dial for one due retry. Returning an
// error makes asynq redeliver the task, so conditions a redelivery cannot
// fix (retry row gone, lead gone, already executed) return nil after
// marking the row skipped.
func (w *Worker) handleCallRetryDue(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseCallRetryDuePayload(task)
	if err != nil {
		return err
	}

	retryID, err := uuid.Parse(payload.RetryID)
	if err != nil {
		return err
	}

	agencyID, err := uuid.Parse(payload.AgencyID)
	if err != nil {
		return err
	}

	retry, err := w.calls.GetRetryByID(ctx, retryID, agencyID)
	if err != nil {
		w.log.Error("retry row not found, dropping task", "retry_id", payload.RetryID)
		return nil
	}
	if retry.Status != voice.RetryPending {
		return nil
	}

	lead, err := w.leads.GetByID(ctx, retry.LeadID, agencyID)
	if err != nil {
		w.log.Error("lead gone, skipping retry", "retry_id", payload.RetryID)
		return w.calls.UpdateRetryStatus(ctx, retryID, agencyID, voice.RetrySkipped)
	}

	if w.vapi == nil {
		w.log.Error("vapi not configured, skipping retry", "retry_id", payload.RetryID)
		return w.calls.UpdateRetryStatus(ctx, retryID, agencyID, voice.RetrySkipped)
	}

	systemPrompt, firstMessage := voice.InboundCallScript(lead.Name, lead.Address)
	leadID := lead.ID

	if err := w.vapi.CreateCall(ctx, voice.CallRequest{
		AgencyID:     agencyID,
		LeadID:       &leadID,
		Phone:        lead.Phone,
		Name:         lead.Name,
		SystemPrompt: systemPrompt,
		FirstMessage: firstMessage,
	}); err != nil {
		// Transient provider failure; let asynq retry the task.
		return fmt.Errorf("re-dial failed: %w", err)
	}

	if err := w.calls.UpdateRetryStatus(ctx, retryID, agencyID, voice.RetryCompleted); err != nil {
		w.log.Error("failed to mark retry completed", "error", err, "retry_id", payload.RetryID)
	}

	w.log.Info("call retry dispatched",
		"retry_id", payload.RetryID,
		"retry_count", retry.RetryCount,
		"agency_id", payload.AgencyID,
	)
	return nil
}

// Run starts the worker and blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
