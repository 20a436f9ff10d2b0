package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskCallLogDedupSweep = "calllogs.dedup.sweep"

type DedupSweepPayload struct {
	// Lookback is a Go duration string bounding how far back the sweep
	// scans for duplicate call logs.
	Lookback string `json:"lookback"`
}

func NewDedupSweepTask(payload DedupSweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCallLogDedupSweep, data), nil
}

func ParseDedupSweepPayload(task *asynq.Task) (DedupSweepPayload, error) {
	var payload DedupSweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return DedupSweepPayload{}, err
	}
	return payload, nil
}
