// Package scheduler runs the funnel's due-timer sweep on asynq: a periodic
// enqueuer emits sweep tasks at a fixed interval and a worker processes
// them, advancing every lead whose wait window has elapsed.
package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskFunnelSweep advances all leads whose due timers have elapsed.
const TaskFunnelSweep = "funnel.sweep"

// FunnelSweepPayload parameterizes one sweep tick.
type FunnelSweepPayload struct {
	BatchSize int `json:"batchSize"`
}

// NewFunnelSweepTask builds a sweep task.
func NewFunnelSweepTask(payload FunnelSweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFunnelSweep, data), nil
}

// ParseFunnelSweepPayload decodes a sweep task's payload.
func ParseFunnelSweepPayload(task *asynq.Task) (FunnelSweepPayload, error) {
	var payload FunnelSweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return FunnelSweepPayload{}, err
	}
	return payload, nil
}
