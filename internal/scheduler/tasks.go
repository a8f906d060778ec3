// Package scheduler provides delayed task execution via asynq: call retries
// scheduled by the voice module are enqueued with their backoff delay and
// executed by a separate worker process.
package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskCallRetryDue = "voice.call_retry.due"

type CallRetryDuePayload struct {
	RetryID  string `json:"retryId"`
	AgencyID string `json:"agencyId"`
}

func NewCallRetryDueTask(payload CallRetryDuePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCallRetryDue, data), nil
}

func ParseCallRetryDuePayload(task *asynq.Task) (CallRetryDuePayload, error) {
	var payload CallRetryDuePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return CallRetryDuePayload{}, err
	}
	return payload, nil
}
