package jobs

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskBalancesWarmup pre-builds the frequent trial balance reports so
	// the first request of the day hits a warm cache.
	TaskBalancesWarmup = "balances:warmup"
)

// BalancesWarmupPayload selects which reports the warmup run pre-builds.
type BalancesWarmupPayload struct {
	RunID            string    `json:"runId"`
	AccountsChartUID string    `json:"accountsChartUID"`
	ReportTypes      []string  `json:"reportTypes"`
	FromDate         time.Time `json:"fromDate"`
	ToDate           time.Time `json:"toDate"`
}

// NewBalancesWarmupTask constructs an Asynq task with a fresh run ID.
func NewBalancesWarmupTask(payload BalancesWarmupPayload) (*asynq.Task, error) {
	if payload.RunID == "" {
		payload.RunID = uuid.NewString()
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBalancesWarmup, data), nil
}
