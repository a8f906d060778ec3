package voice

import (
	"context"
	"time"

	"thavon_backend/platform/logger"

	"github.com/google/uuid"
)

// CallRequest is everything needed to place one outbound AI call.
type CallRequest struct {
	AgencyID     uuid.UUID
	LeadID       *uuid.UUID
	AgentID      *uuid.UUID
	Phone        string
	Name         string
	SystemPrompt string
	FirstMessage string
}

// correlationMetadata is the opaque bag echoed back by the provider on every
// webhook for this call. It is the only way outcome events are tied back to
// a tenant, so agency_id must always be present.
func (r CallRequest) correlationMetadata() map[string]string {
	meta := map[string]string{
		"agency_id": r.AgencyID.String(),
	}
	if r.LeadID != nil {
		meta["lead_id"] = r.LeadID.String()
	}
	if r.AgentID != nil {
		meta["agent_id"] = r.AgentID.String()
	}
	return meta
}

// Dispatcher is the seam between "request accepted" and "call dispatched".
// Handlers enqueue and return immediately; the actual provider call happens
// on a background worker whose only error channel is the log.
type Dispatcher interface {
	Enqueue(req CallRequest) bool
}

// CallCreator places a call at the voice provider.
type CallCreator interface {
	CreateCall(ctx context.Context, req CallRequest) error
}

// QueueDispatcher is the production Dispatcher: a buffered channel drained
// by Run. Enqueue never blocks; a full queue drops the request and reports
// false so the caller can log it.
type QueueDispatcher struct {
	queue   chan CallRequest
	client  CallCreator
	timeout time.Duration
	log     *logger.Logger
}

const dispatchQueueSize = 256

// NewQueueDispatcher creates the background call dispatcher.
func NewQueueDispatcher(client CallCreator, timeout time.Duration, log *logger.Logger) *QueueDispatcher {
	return &QueueDispatcher{
		queue:   make(chan CallRequest, dispatchQueueSize),
		client:  client,
		timeout: timeout,
		log:     log,
	}
}

// Enqueue queues a call request for background dispatch.
func (d *QueueDispatcher) Enqueue(req CallRequest) bool {
	select {
	case d.queue <- req:
		return true
	default:
		d.log.Error("dispatch queue full, dropping call request",
			"agency_id", req.AgencyID.String(),
			"phone", req.Phone,
		)
		return false
	}
}

// Run drains the queue until ctx is cancelled. Provider failures are logged
// and swallowed: the call result has its own asynchronous reporting channel,
// so nothing upstream waits on this.
func (d *QueueDispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-d.queue:
			d.dispatch(ctx, req)
		}
	}
}

func (d *QueueDispatcher) dispatch(ctx context.Context, req CallRequest) {
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()

	if err := d.client.CreateCall(callCtx, req); err != nil {
		d.log.DispatchError("vapi", err)
		return
	}

	d.log.Info("outbound call dispatched",
		"agency_id", req.AgencyID.String(),
		"lead", req.Name,
	)
}
